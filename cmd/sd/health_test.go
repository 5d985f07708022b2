package main

import (
	"context"
	"net"
	"testing"

	"github.com/alfredjeanlab/shipdesk/internal/server"
)

func TestGRPCHealth(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv, hs := server.NewGRPCServer("", nil)
	go srv.Serve(lis)
	defer srv.Stop()

	got, err := grpcHealth(context.Background(), lis.Addr().String())
	if err != nil {
		t.Fatalf("grpcHealth: %v", err)
	}
	if got != "SERVING" {
		t.Errorf("got %q, want SERVING", got)
	}

	hs.Shutdown()
	if got, _ := grpcHealth(context.Background(), lis.Addr().String()); got != "NOT_SERVING" {
		t.Errorf("after shutdown got %q, want NOT_SERVING", got)
	}
}

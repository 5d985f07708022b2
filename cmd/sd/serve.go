package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/shipdesk/internal/config"
	"github.com/alfredjeanlab/shipdesk/internal/events"
	"github.com/alfredjeanlab/shipdesk/internal/server"
	"github.com/alfredjeanlab/shipdesk/internal/store/postgres"
	shipsync "github.com/alfredjeanlab/shipdesk/internal/sync"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the shipdesk server",
	Long:    "Serve the shipment request API over HTTP, the health service over gRPC, and change events over SSE (and NATS when SHIPDESK_NATS_URL is set).",
	GroupID: "system",
	// The server needs no API client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

// serve runs until ctx is cancelled or a listener fails, then shuts
// everything down in reverse start order.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeLogged(log, "store", store.Close)

	publisher, err := openPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closeLogged(log, "publisher", publisher.Close)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}
	grpcServer, health := server.NewGRPCServer(cfg.AuthToken, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewServer(store, publisher).WithLogger(log).NewHTTPHandler(cfg.AuthToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if scheduler := startSync(ctx, cfg, store, log); scheduler != nil {
		defer scheduler.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gRPC health server listening", "addr", cfg.GRPCAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "cause", context.Cause(gctx))
		health.Shutdown()
		grpcServer.GracefulStop()

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})
	err = g.Wait()
	log.Info("shutdown complete")
	return err
}

func openPublisher(cfg *config.Config, log *slog.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		log.Info("NATS change events disabled; SSE stream still served")
		return &events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Info("NATS change events enabled", "nats_url", cfg.NATSURL)
	return pub, nil
}

func closeLogged(log *slog.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		log.Error("close "+what, "err", err)
	}
}

// startSync starts the export scheduler when an interval and at least one
// destination are configured.
func startSync(ctx context.Context, cfg *config.Config, store *postgres.PostgresStore, log *slog.Logger) *shipsync.Scheduler {
	if cfg.SyncInterval <= 0 {
		return nil
	}
	var dests []shipsync.Destination
	if cfg.SyncS3Bucket != "" {
		d, err := shipsync.NewS3Destination(ctx, cfg.SyncS3Bucket, cfg.SyncS3Key, cfg.SyncS3Region, cfg.SyncS3Endpoint)
		if err != nil {
			log.Error("S3 sync destination disabled", "err", err)
		} else {
			dests = append(dests, d)
		}
	}
	if cfg.SyncGitRepo != "" {
		dests = append(dests, shipsync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch))
	}
	if len(dests) == 0 {
		return nil
	}
	for _, d := range dests {
		log.Info("sync destination enabled", "dest", d.Name())
	}
	s := shipsync.NewScheduler(store, dests, cfg.SyncInterval, log)
	s.Start()
	return s
}

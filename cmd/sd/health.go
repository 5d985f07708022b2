package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check that the shipdesk server is up",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		report := map[string]string{}

		status, err := apiClient.Health(ctx)
		if err != nil {
			return fmt.Errorf("http health: %w", err)
		}
		report["http"] = status

		if addr, _ := cmd.Flags().GetString("grpc"); addr != "" {
			s, err := grpcHealth(ctx, addr)
			if err != nil {
				return fmt.Errorf("grpc health %s: %w", addr, err)
			}
			report["grpc"] = s
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else {
			for _, k := range []string{"http", "grpc"} {
				if v, ok := report[k]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%-5s %s\n", k+":", v)
				}
			}
		}
		if report["http"] != "ok" || (report["grpc"] != "" && report["grpc"] != healthpb.HealthCheckResponse_SERVING.String()) {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

// grpcHealth queries the standard health service at addr.
func grpcHealth(ctx context.Context, addr string) (string, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return "", err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return "", err
	}
	return resp.GetStatus().String(), nil
}

func init() {
	healthCmd.Flags().String("grpc", "", "also check the gRPC health service at `host:port`")
}

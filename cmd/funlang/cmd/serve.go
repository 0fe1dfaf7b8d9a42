package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/internal/interpreter/handler"
	"github.com/msto63/funlang/internal/interpreter/server"
	"github.com/msto63/funlang/internal/interpreter/service"
	coreGrpc "github.com/msto63/funlang/pkg/core/grpc"
	"github.com/msto63/funlang/pkg/core/health"
	"github.com/msto63/funlang/pkg/core/version"
	"github.com/spf13/cobra"
)

var (
	serveNoGRPC      bool
	serveNoWebSocket bool
	serveNoHistory   bool
	serveOrigins     []string
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and WebSocket servers",
	Long: `Starts the evaluation servers until SIGINT or SIGTERM.

Endpoints (defaults):
  gRPC       funlang.v1.Interpreter/Run on 127.0.0.1:9400
  WebSocket  ws://127.0.0.1:9401/ws
  Health     http://127.0.0.1:9401/healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoGRPC, "no-grpc", false, "do not start the gRPC server")
	serveCmd.Flags().BoolVar(&serveNoWebSocket, "no-websocket", false, "do not start the WebSocket server")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "do not record runs")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "allowed browser origins for WebSocket clients")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveNoGRPC && serveNoWebSocket {
		return errors.New("nothing to serve")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := newService(io.Discard, serveNoHistory)
	if err != nil {
		return err
	}
	defer cleanup()

	pruneHistory(ctx, svc)

	registry := health.NewRegistry("funlang", version.ServiceVersion("interpreter"))
	registry.Register(svc.HealthChecks()...)

	errCh := make(chan error, 2)
	var grpcServer *server.Server
	var httpServer *http.Server

	if !serveNoGRPC {
		grpcServer, err = startGRPC(svc, errCh)
		if err != nil {
			return err
		}
		registry.Register(health.TCPCheck("grpc", appConfig.GRPCAddress(), time.Second))
		fmt.Fprintf(cmd.OutOrStdout(), "gRPC       %s\n", appConfig.GRPCAddress())
	}

	if !serveNoWebSocket {
		httpServer = startHTTP(svc, registry, errCh)
		fmt.Fprintf(cmd.OutOrStdout(), "WebSocket  ws://%s%s\n", appConfig.WebSocketAddress(), appConfig.WebSocket.Path)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errCh:
		logger.ErrorWithErr("Server failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}
	return err
}

func startGRPC(svc *service.Service, errCh chan<- error) (*server.Server, error) {
	cfg := coreGrpc.DefaultServerConfig()
	cfg.Host = appConfig.GRPC.Host
	cfg.Port = appConfig.GRPC.Port
	cfg.Logger = logger

	srv, err := server.New(cfg, svc)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	return srv, nil
}

func startHTTP(svc *service.Service, registry *health.Registry, errCh chan<- error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(appConfig.WebSocket.Path, handler.NewWebSocketHandler(svc, handler.Config{
		Logger:         logger,
		AllowedOrigins: serveOrigins,
	}))
	mux.Handle("/healthz", registry.Handler(5*time.Second))

	srv := &http.Server{
		Addr:              appConfig.WebSocketAddress(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("websocket: %w", err)
		}
	}()
	return srv
}

// pruneHistory drops runs older than the configured retention
func pruneHistory(ctx context.Context, svc *service.Service) {
	history := svc.History()
	if history == nil {
		return
	}
	deleted, err := history.Prune(ctx, appConfig.History.Retention.Duration)
	if err != nil {
		logger.WarnWithErr("History pruning failed", err)
		return
	}
	if deleted > 0 {
		logger.Info("History pruned", mdwlog.Fields{"deleted": deleted})
	}
}

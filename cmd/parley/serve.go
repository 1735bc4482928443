package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/adapters/file"
	"github.com/aretw0/parley/internal/adapters/httpapi"
	"github.com/aretw0/parley/internal/adapters/memory"
	redisadapter "github.com/aretw0/parley/internal/adapters/redis"
	"github.com/aretw0/parley/internal/cli"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/metrics"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"

	"log/slog"

	"github.com/aretw0/parley"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the engine in server mode, exposing a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	opts := runOptionsFromFlags(cmd, args)
	port, _ := cmd.Flags().GetString("port")
	storeKind, _ := cmd.Flags().GetString("store")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	redisTTL, _ := cmd.Flags().GetDuration("redis-ttl")
	maskPatterns, _ := cmd.Flags().GetStringSlice("mask-pii")

	logger := logging.New(slog.LevelInfo)
	if opts.Debug {
		logger = logging.New(slog.LevelDebug)
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := cli.BuildEngine(ctx, opts, logger, parley.WithMetrics(recorder))
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	if err := eng.Validate(); err != nil {
		return err
	}

	var store ports.SessionStore
	var mgrOpts []session.Option
	switch storeKind {
	case "memory":
		store = memory.NewStore()
	case "file":
		store = file.NewStore(opts.SessionDir)
	case "redis":
		client := backend.NewClient(&backend.Options{Addr: redisAddr})
		store = redisadapter.NewFromClient(client, redisadapter.WithTTL(redisTTL))
		mgrOpts = append(mgrOpts,
			session.WithLocker(redisadapter.NewLocker(client, "parley:")),
			session.WithLogger(logger),
		)
	default:
		return fmt.Errorf("unknown store %q (supported: memory, file, redis)", storeKind)
	}

	if len(maskPatterns) > 0 {
		store = middleware.NewPIIMiddleware(maskPatterns)(store)
	}

	sessions := session.NewManager(store, mgrOpts...)
	server := httpapi.NewServer(eng, sessions,
		httpapi.WithLogger(logger),
		httpapi.WithGatherer(reg),
	)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: server.Handler(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting Parley Server on %s\n", srv.Addr)
		fmt.Printf("Serving flow: %s\n", opts.FlowPath)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Println("\nShutdown signal received...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("Parley Server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Session store backend: memory, file or redis")
	serveCmd.Flags().String("session-dir", "", "Directory for the file store")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis store")
	serveCmd.Flags().Duration("redis-ttl", 0, "Session TTL in Redis (0 = no expiration)")
	serveCmd.Flags().StringSlice("mask-pii", nil, "Fact key patterns to mask before persisting")
	serveCmd.Flags().String("base-url", "", "OpenAI-compatible API base URL")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"flooded-island-server/internal/database"
	"flooded-island-server/internal/server"
	"flooded-island-server/internal/telemetry"
)

const serviceName = "flooded-island-server"

func gracefulShutdown(ctx context.Context, stop context.CancelFunc, cfg server.Config, roomServer *server.Server, httpServer *http.Server) error {
	<-ctx.Done()
	log.Println("Shutdown signal received, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Close sockets first so the HTTP server is not left waiting on them.
	if err := roomServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during room server shutdown: %v", err)
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server forced to shutdown: %w", err)
	}
	return nil
}

func run() error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.TracingEndpoint())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("Failed to flush traces: %v", err)
		}
	}()

	var archive database.Service
	if cfg.DatabaseURL != "" {
		archive, err = database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		log.Println("Match archive enabled")
	}

	roomServer := server.NewServer(cfg, archive)
	httpServer := roomServer.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		roomServer.RunCleanup(gctx)
		return nil
	})
	g.Go(func() error {
		return gracefulShutdown(gctx, stop, cfg, roomServer, httpServer)
	})

	return g.Wait()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
	log.Println("Graceful shutdown complete.")
}

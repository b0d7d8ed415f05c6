// Command server runs the biolink web application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biolink/internal/bootstrap"
	"biolink/internal/config"
	"biolink/internal/middleware"
	"biolink/internal/server"
)

const shutdownTimeout = 10 * time.Second

// lifecycle is the part of *server.Server that run drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := run(srv, rt.ShutdownTracing, signals, shutdownTimeout); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// run serves until a signal arrives and returns only after the server and the
// tracer have been shut down, so buffered spans are flushed.
func run(srv lifecycle, shutdownTracing func(context.Context) error, signals <-chan os.Signal, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-signals

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if shutdownTracing == nil {
			return
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		return err
	}
	<-done
	return nil
}

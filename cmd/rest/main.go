package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ecomm-product-bot/internal/bootstrap"
	"ecomm-product-bot/internal/config"
	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/server"
	"ecomm-product-bot/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

// run fails on missing configuration before anything dials out.
func run(ctx context.Context, cfg *config.Config) error {
	// 2. Validate before logger, tracer or container touch the network
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 3. Logger
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 4. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer shutdownTracer(context.Background())

	// 5. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg, sysLogger)
	defer container.Close()

	// 6. Start Background Services
	if err := container.Start(ctx); err != nil {
		return err
	}

	// 7. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		sysLogger.Info("main", "shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("main", "server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 8. Run Server
	return srv.Run()
}

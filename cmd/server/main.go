package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"sheetstack/internal/config"
	"sheetstack/ui"
)

func main() {
	// Load .env file if present (ignore errors for production environments)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	app, err := ui.NewApp(cfg)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Start(ctx)
	})
	g.Go(func() error {
		return app.Sessions().RunJanitor(ctx, cfg.Session.CleanupInterval)
	})

	log.Printf("Starting sheetstack on http://localhost:%s", cfg.Server.Port)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Println("Shutdown complete")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thereayou/party-rooms/internal/config"
	"github.com/thereayou/party-rooms/pkg/auth"
)

func main() {
	issueToken := flag.String("issue-admin-token", "", "print an admin JWT for the given subject and exit")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	if *issueToken != "" {
		if err := printAdminToken(cfg, *issueToken); err != nil {
			slog.Error("issue admin token", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func printAdminToken(cfg *config.Config, subject string) error {
	if cfg.AdminJWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is not set")
	}
	token, err := auth.NewJWTManager(cfg.AdminJWTSecret, cfg.AdminTokenTTL).Generate(subject)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// Package main is the entry point for the club registration server. It
// reads configuration, builds the logger, and hands off to internal/server;
// all actual logic lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ahh-git/DIU-CPC/internal/server"
)

func main() {
	// A .env file is optional; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
		port = p
	}

	// JWT_SECRET must be a long random string, e.g.:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is not set — refusing to start without a session secret")
		os.Exit(1)
	}

	adminKey := os.Getenv("ADMIN_KEY")
	if adminKey == "" {
		logger.Warn("ADMIN_KEY not set — the admin console is disabled")
	}

	cfg := server.Config{
		Port:        port,
		StoreDriver: envOr("STORE_DRIVER", "json"),
		StorePath:   envOr("STORE_PATH", "data/users.json"),
		EmailDomain: envOr("EMAIL_DOMAIN", "@diu.edu.bd"),
		AdminKey:    adminKey,
		BKashNumber: envOr("BKASH_NUMBER", "01346561010"),
		JWTSecret:   jwtSecret,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

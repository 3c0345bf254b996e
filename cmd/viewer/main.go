package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"viewer/infrastructure/audit"
	"viewer/infrastructure/cache"
	httpserver "viewer/infrastructure/http"
	"viewer/infrastructure/metrics"
	"viewer/infrastructure/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
	configureLogging(getenv("LOG_LEVEL", "info"))

	addr := getenv("APP_ADDR", ":8080")
	dbPath := getenv("SQLITE_PATH", "viewer.db")

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// An empty MIGRATIONS_DIR applies the migrations compiled into the binary.
	if err := sqlite.ApplyMigrations(context.Background(), db, getenv("MIGRATIONS_DIR", "")); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	statusCache := cache.NewStatusCache(30 * time.Second)
	auditSvc := audit.NewService()

	refresh, err := time.ParseDuration(getenv("METRICS_REFRESH", metrics.DefaultRefreshInterval.String()))
	if err != nil {
		log.Fatalf("parse METRICS_REFRESH: %v", err)
	}
	priceMetrics := metrics.NewPriceMetrics()
	priceMetrics.Title = getenv("METRICS_ITEM_TITLE", metrics.DefaultTitle)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go priceMetrics.Run(ctx, db, refresh)

	server := httpserver.NewServer(addr, db, statusCache, auditSvc, priceMetrics)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("viewer listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	stop()

	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func configureLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"setuptrack/catalog"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/cache"
	httpserver "setuptrack/infrastructure/http"
	"setuptrack/infrastructure/jsonstore"
	"setuptrack/infrastructure/rbac"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/setuplog"
	"setuptrack/userstore"
)

func main() {
	addr := getenv("APP_ADDR", ":8080")
	dataDir := getenv("DATA_DIR", "./data")
	dbPath := getenv("SQLITE_PATH", filepath.Join(dataDir, "setuptrack.db"))

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := jsonstore.EnsureDir(dataDir); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	catalogStore := catalog.NewStore(filepath.Join(dataDir, "qrcodes.json"))
	setups := setuplog.NewStore(dataDir)
	users := userstore.NewStore(filepath.Join(dataDir, "users.json"))

	if err := users.EnsureAdmin(); err != nil {
		log.Fatalf("ensure admin user: %v", err)
	}
	if migrated, err := catalogStore.MigrateLegacyFormat(); err != nil {
		log.Fatalf("migrate catalog: %v", err)
	} else if migrated > 0 {
		slog.Info("catalog entries migrated to structured format", slog.Int("count", migrated))
	}

	sessionCache := cache.NewSessionCache()
	userCache := cache.NewUserCache()
	rbacSvc := rbac.New()
	auditSvc := audit.NewService()

	server := httpserver.NewServer(addr, db, sessionCache, userCache, rbacSvc, auditSvc, catalogStore, setups, users)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("setuptrack listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

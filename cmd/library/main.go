// cmd/library/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"libracirc/internal/app"
	"libracirc/internal/borrow"
	"libracirc/internal/catalog"
	"libracirc/internal/directory"
	"libracirc/internal/logger"
	"libracirc/internal/reports"
	"libracirc/internal/snapshot"
	"libracirc/internal/telemetry"
)

func main() {
	godotenv.Load()

	log := logger.New()
	defer log.Sync()

	ctx := context.Background()

	if getEnv("TRACING_ENABLED", "") == "true" {
		shutdown, err := telemetry.Setup(ctx, "libracirc")
		if err != nil {
			log.Fatal("failed to set up tracing", zap.Error(err))
		}
		defer shutdown(ctx)
	}

	requestStore := borrow.NewRequestStore()
	recordStore := borrow.NewRecordStore()

	directorySvc := directory.NewService(log)
	catalogSvc := catalog.NewService(directorySvc, log)
	borrowSvc := borrow.NewService(requestStore, recordStore, catalogSvc, directorySvc, log)
	reportsSvc := reports.NewService(requestStore, recordStore, catalogSvc, directorySvc)

	stateFile := getEnv("LIBRARY_STATE_FILE", "")
	if stateFile != "" {
		if state, err := snapshot.Load(stateFile); err == nil {
			snapshot.Apply(ctx, state, catalogSvc, directorySvc, requestStore, recordStore)
			log.Info("state restored from snapshot", zap.String("path", stateFile), zap.Time("saved_at", state.SavedAt))
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to load state snapshot", zap.String("path", stateFile), zap.Error(err))
		}
	}

	router := app.NewRouter(log, app.Handlers{
		Catalog:   catalog.NewHandler(catalogSvc),
		Directory: directory.NewHandler(directorySvc),
		Borrow:    borrow.NewHandler(borrowSvc),
		Reports:   reports.NewHandler(reportsSvc),
	})

	port := getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("library service listening", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}

	if stateFile != "" {
		state := snapshot.Capture(ctx, catalogSvc, directorySvc, requestStore, recordStore)
		if err := snapshot.Save(stateFile, state); err != nil {
			log.Error("failed to save state snapshot", zap.String("path", stateFile), zap.Error(err))
		} else {
			log.Info("state snapshot saved", zap.String("path", stateFile))
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

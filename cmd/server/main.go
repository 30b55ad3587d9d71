package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cue-orchestrator/internal/engine"
	"cue-orchestrator/internal/platform/config"
	"cue-orchestrator/internal/platform/logger"
	"cue-orchestrator/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	mode := config.GetEnv("ENGINE_MODE", "ranked")
	windowSize := config.GetEnvInt("DEBOUNCE_WINDOW_SIZE", engine.DefaultWindowSize)
	agreementRatio := config.GetEnvFloat("AGREEMENT_RATIO", engine.DefaultAgreementRatio)
	samplingIntervalMs := config.GetEnvInt("SAMPLING_INTERVAL_MS", 200)
	catalogPath := config.GetEnv("CATALOG_PATH", "catalog.yaml")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	log := logger.New(logLevel, logFormat)

	catalog, err := engine.LoadCatalog(catalogPath)
	if err != nil {
		log.Error("catalog load failed", "path", catalogPath, "error", err)
		os.Exit(1)
	}

	eng := engine.New(catalog, log, engine.Options{
		Mode:           engine.ParseMode(mode),
		WindowSize:     windowSize,
		AgreementRatio: agreementRatio,
	})
	met := metrics.New()
	h := engine.NewHandler(eng, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			met.SetActiveMarkers(eng.ActiveMarkerCount())
			met.SetPlaying(eng.IsPlaying())
		}).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"engine_mode", string(eng.Mode()),
		"debounce_window_size", windowSize,
		"agreement_ratio", agreementRatio,
		"sampling_interval_ms", samplingIntervalMs,
		"catalog", catalogPath,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

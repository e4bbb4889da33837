// Package main serves the stock viewer UI and API over plain HTTP, without the
// desktop window.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-viewer/config"
	"stock-viewer/internal/api"
	"stock-viewer/internal/app"
	"stock-viewer/observability"
	"stock-viewer/services"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		observability.Fatal("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("failed to load configuration", "error", err)
	}

	observability.InitLoggerWithLevel(cfg.Log.Production, observability.ParseLevel(cfg.Log.Level))
	observability.InitMetrics()

	fetchTimeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	provider := services.NewAlphaVantageService(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL, fetchTimeout)

	application := app.New(cfg, provider)
	application.Startup(context.Background())

	handler := api.NewHandler(application, cfg, provider.Breakers())
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: fetchTimeout + 10*time.Second,
	}

	go func() {
		observability.Info("starting web server", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Cancel the in-flight fetch first so its handler can return
	application.Shutdown(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("web server stopped")
}

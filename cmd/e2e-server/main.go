// Package main provides a standalone HTTP server for browser E2E tests.
// It runs the same routes and handlers as the desktop app against an
// in-process fake of the Alpha Vantage API, so no API key or network is needed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-viewer/config"
	"stock-viewer/e2e/mocks"
	"stock-viewer/internal/api"
	"stock-viewer/internal/app"
	"stock-viewer/observability"
	"stock-viewer/services"
)

func main() {
	// Initialize logger in development mode for tests
	observability.InitLogger(false)
	observability.InitMetrics()

	port := os.Getenv("E2E_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	provider := mocks.NewMockServer()
	defer provider.Close()

	// Fixed failures so browser tests can exercise every error banner
	provider.SetFailure("INVALID", mocks.Failure{ErrorMessage: "Invalid API call. Please retry or visit the documentation (https://www.alphavantage.co/documentation/) for TIME_SERIES_DAILY."})
	provider.SetFailure("THROTTLED", mocks.Failure{Note: "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."})
	provider.SetFailure("BROKEN", mocks.Failure{Status: http.StatusInternalServerError})
	provider.SetSeries("EMPTY", []mocks.Bar{})

	if delay := os.Getenv("E2E_PROVIDER_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			observability.Fatal("invalid E2E_PROVIDER_DELAY", "value", delay, "error", err)
		}
		provider.SetDelay(d)
	}

	cfg := config.NewTestConfig()
	cfg.AlphaVantage.BaseURL = provider.URL()
	cfg.Fetch.TimeoutSeconds = 10

	svc := services.NewAlphaVantageService(
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.BaseURL,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
	)

	ctx := context.Background()
	application := app.New(cfg, svc)
	application.Startup(ctx)

	handler := api.NewHandler(application, cfg, svc.Breakers())
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		observability.Info("starting E2E test server", "port", port, "url", fmt.Sprintf("http://localhost:%s", port), "provider", provider.URL())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down E2E test server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application.Shutdown(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("E2E test server stopped")
}

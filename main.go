package main

import (
	"context"
	"embed"
	"time"

	"stock-viewer/config"
	"stock-viewer/internal/api"
	"stock-viewer/internal/app"
	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/services"
	"stock-viewer/templates"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

// bridge is the JS-facing surface of the app
type bridge struct {
	app *app.App
}

func (b *bridge) FetchStock(symbol, rangeLabel string) models.ViewState {
	return b.app.FetchStock(symbol, rangeLabel)
}

func (b *bridge) State() models.ViewState {
	return b.app.State()
}

func (b *bridge) TimeRanges() []models.TimeRange {
	return b.app.TimeRanges()
}

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

	provider := services.NewAlphaVantageService(
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.BaseURL,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
	)

	application := app.New(cfg, provider)
	handler := api.NewHandler(application, cfg, provider.Breakers())
	router := api.NewRouter(handler, cfg)

	err = wails.Run(&options.App{
		Title:  templates.AppTitle,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: router,
		},
		BackgroundColour: options.NewRGB(245, 247, 250),
		OnStartup: func(ctx context.Context) {
			application.Startup(ctx)
			// Pages rendered by the asset server refresh their panels on this event
			application.SetStateListener(func(s models.ViewState) {
				runtime.EventsEmit(ctx, templates.StateEvent, s)
			})
			observability.Info("stock viewer started", "provider", cfg.AlphaVantage.BaseURL)
		},
		OnShutdown: application.Shutdown,
		Bind: []interface{}{
			&bridge{app: application},
		},
	})

	if err != nil {
		observability.Fatal("wails run failed", "error", err)
	}
}

// Package app wires configuration, storage, upstream clients, services and
// the HTTP engine into one runnable bot.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"nearbot/internal/api"
	"nearbot/internal/api/handlers"
	"nearbot/internal/clients"
	"nearbot/internal/config"
	"nearbot/internal/geocode"
	"nearbot/internal/observability"
	"nearbot/internal/repository"
	"nearbot/internal/repository/badgerkv"
	"nearbot/internal/repository/memory"
	"nearbot/internal/repository/postgres"
	"nearbot/internal/services"
)

// StoreError represents a failure opening the key-value backend.
type StoreError struct {
	Driver string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error opening %q: %v", e.Driver, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// App holds the application-level dependencies.
type App struct {
	Router   *gin.Engine
	Importer *services.ImportService
	Metrics  *observability.Metrics

	kv     repository.KV
	logger *zap.Logger
}

// OpenStore returns the key-value backend selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (repository.KV, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.NewKV(), nil
	case "badger":
		kv, err := badgerkv.Open(cfg.BadgerDir)
		if err != nil {
			return nil, &StoreError{Driver: cfg.Driver, Err: err}
		}
		return kv, nil
	case "postgres":
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		kv, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, &StoreError{Driver: cfg.Driver, Err: err}
		}
		return kv, nil
	default:
		return nil, &StoreError{Driver: cfg.Driver, Err: fmt.Errorf("unknown driver")}
	}
}

// NewImporter builds the toilet registry import on top of store.
func NewImporter(cfg *config.Config, store repository.PartitionStore, logger *zap.Logger, metrics *observability.Metrics) *services.ImportService {
	registry := clients.NewToiletRegistryClient(cfg.Toilet.RegistryURL, cfg.Toilet.RegistryKey, cfg.Toilet.FetchTimeout)
	return services.NewImportService(registry, store, cfg.Toilet.Regions, logger, metrics)
}

// New opens the store, builds every feature and configures the HTTP engine.
// Features whose upstream is not configured stay disabled and answer with
// services.DisabledText.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	kv, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", zap.String("driver", cfg.Store.Driver))
	store := repository.NewStore(kv)

	// --- Upstream clients ---
	var geocoder geocode.Reverse
	if cfg.Geocode.GoogleMapsAPIKey != "" {
		g, err := geocode.NewGoogle(cfg.Geocode.GoogleMapsAPIKey, cfg.Geocode.Language, cfg.Geocode.Timeout)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("app: geocoder: %w", err)
		}
		geocoder = g
	}

	// --- Services ---
	replies := services.NewReplyService(cfg.Line.MaxMessages, logger)

	var garbage *services.GarbageService
	if cfg.Garbage.RealtimeURL != "" {
		feed := clients.NewRealtimeClient(cfg.Garbage.RealtimeURL, cfg.Garbage.FetchTimeout)
		garbage, err = services.NewGarbageService(feed, cfg.Home, cfg.Garbage, logger, metrics)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("app: garbage: %w", err)
		}
		replies.Garbage = garbage
	}

	toilets, err := services.NewToiletService(store, geocoder, cfg.Toilet, logger, metrics)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("app: toilets: %w", err)
	}
	replies.Toilets = toilets

	if cfg.Weather.APIKey != "" {
		forecasts := clients.NewWeatherClient(cfg.Weather.URL, cfg.Weather.APIKey, cfg.Weather.FetchTimeout)
		replies.Weather = services.NewWeatherService(forecasts, cfg.Weather, cfg.Home.County, logger, metrics)
	}
	if cfg.Covid.URL != "" {
		replies.Covid = services.NewCovidService(clients.NewCovidClient(cfg.Covid.URL, cfg.Covid.FetchTimeout), logger, metrics)
	}
	if cfg.Lottery.URL != "" {
		replies.Lottery = services.NewLotteryService(store, clients.NewLotteryClient(cfg.Lottery.URL, cfg.Lottery.FetchTimeout), logger, metrics)
	}

	importer := NewImporter(cfg, store, logger, metrics)

	// --- LINE ---
	bot, err := messaging_api.NewMessagingApiAPI(cfg.Line.ChannelAccessToken)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("app: messaging api: %w", err)
	}

	// --- HTTP engine ---
	router := api.NewRouter(
		handlers.NewWebhookHandler(cfg.Line.ChannelSecret, replies, bot, logger, metrics),
		handlers.NewLocationHandler(toilets, garbage),
		handlers.NewAdminHandler(importer),
		metrics,
		logger,
		cfg.Server.RequestTimeout,
		cfg.Server.AdminToken,
	)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Setup(engine)

	return &App{
		Router:   engine,
		Importer: importer,
		Metrics:  metrics,
		kv:       kv,
		logger:   logger,
	}, nil
}

// Shutdown closes the key-value backend.
func (a *App) Shutdown() {
	if err := a.kv.Close(); err != nil {
		a.logger.Error("failed to close store", zap.Error(err))
	}
}

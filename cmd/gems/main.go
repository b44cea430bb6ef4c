package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hidden-gems-service/internal/adapter/gemsapi"
	"github.com/couchcryptid/hidden-gems-service/internal/adapter/google"
	"github.com/couchcryptid/hidden-gems-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/hidden-gems-service/internal/adapter/kafka"
	"github.com/couchcryptid/hidden-gems-service/internal/adapter/mapbox"
	supabaseadapter "github.com/couchcryptid/hidden-gems-service/internal/adapter/supabase"
	"github.com/couchcryptid/hidden-gems-service/internal/auth"
	"github.com/couchcryptid/hidden-gems-service/internal/config"
	"github.com/couchcryptid/hidden-gems-service/internal/domain"
	"github.com/couchcryptid/hidden-gems-service/internal/observability"
	"github.com/couchcryptid/hidden-gems-service/internal/pipeline"
	"github.com/couchcryptid/hidden-gems-service/internal/resolver"
	"github.com/couchcryptid/hidden-gems-service/internal/store"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Lookup providers. Without a Google key photos are never found.
	var (
		photoProvider   domain.PhotoProvider
		geocodeProvider domain.GeocodeProvider
	)
	if cfg.GoogleMapsAPIKey != "" {
		g := google.NewClient(cfg.GoogleMapsAPIKey, cfg.LookupTimeout, cfg.PhotoMaxWidth, logger)
		photoProvider = g
		if cfg.Geocoder == config.GeocoderGoogle {
			geocodeProvider = g
		}
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, photo lookups disabled")
	}
	if cfg.Geocoder == config.GeocoderMapbox {
		geocodeProvider = mapbox.NewClient(cfg.MapboxToken, cfg.LookupTimeout, logger)
	}
	photos := resolver.NewPhoto(photoProvider, cfg.PhotoRateLimit, cfg.LookupTimeout, metrics, logger)
	geocoder := resolver.NewGeocode(geocodeProvider, cfg.LookupTimeout, metrics, logger)

	// Gem source and image storage.
	var (
		lister   pipeline.GemLister
		creator  pipeline.GemCreator
		uploader pipeline.ImageUploader
	)
	api := gemsapi.NewClient(cfg.GemsAPIURL, cfg.LookupTimeout, logger)
	lister, creator = api, api
	if cfg.SupabaseEnabled() {
		sb, err := supabaseadapter.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			logger.Error("failed to init supabase", "error", err)
			os.Exit(1)
		}
		uploader = supabaseadapter.NewUploader(sb, cfg.SupabaseBucket, clock, logger)
		if cfg.GemsSource == config.SourceSupabase {
			table := supabaseadapter.NewTable(sb, cfg.SupabaseTable, logger)
			lister, creator = table, table
		}
	} else {
		logger.Warn("supabase not configured, image uploads disabled")
	}
	logger.Info("gem source selected", "source", cfg.GemsSource, "geocoder", cfg.Geocoder)

	var (
		events    pipeline.EventPublisher
		publisher *kafkaadapter.Publisher
	)
	if cfg.EventsEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		events = publisher
		logger.Info("gem events enabled", "topic", cfg.KafkaTopic)
	}

	st := store.New()
	notifier := pipeline.LogNotifier{Logger: logger}
	enricher := pipeline.NewEnricher(st, photos, events, cfg.EnrichConcurrency, metrics, logger)
	coord := pipeline.NewCoordinator(lister, st, enricher, notifier, metrics, logger)
	submitter := pipeline.NewSubmitter(pipeline.SubmitterDeps{
		Auth:     auth.NewVerifier(cfg.AuthJWTSecret, clock, logger),
		Uploader: uploader,
		Geocoder: geocoder,
		Creator:  creator,
		Store:    st,
		Enricher: enricher,
		Events:   events,
		Notifier: notifier,
	}, cfg.MaxImageBytes, metrics, logger)

	gems := httpadapter.NewGemHandler(st, coord, submitter, cfg.MaxImageBytes, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, coord, gems, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pipeline.WatchStore(ctx, st, metrics)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load, then optional periodic refresh. A failed initial load
	// leaves /readyz reporting not ready until a refresh succeeds.
	go func() {
		if cfg.RefreshInterval > 0 {
			if err := coord.Run(ctx, cfg.RefreshInterval); err != nil {
				logger.Error("refresh loop error", "error", err)
			}
			return
		}
		_ = coord.FetchAndEnrich(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := enricher.Wait(shutdownCtx); err != nil {
		logger.Warn("photo lookups still running at shutdown", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

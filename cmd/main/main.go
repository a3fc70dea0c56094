package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/config"
	"catalog-matcher/internal/events"
	"catalog-matcher/internal/matching/model"
	"catalog-matcher/internal/matching/service"
	serverhttp "catalog-matcher/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	patch, err := config.LoadMatchConfig(cfg.MatchConfigFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("match config")
	}

	var items []model.CatalogItem
	if cfg.CatalogFile != "" {
		if items, err = catalog.Load(cfg.CatalogFile, catalog.DefaultColumns()); err != nil {
			logger.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("initial catalog")
		}
	}
	eng := service.NewEngine(items, patch,
		service.WithLogger(logger.With().Str("component", "engine").Logger()),
		service.WithWorkers(cfg.BatchWorkers),
		service.WithStopWords(cfg.StopWords...),
	)

	// шина опциональна: без NATS_URL исключения остаются только в ответе
	var (
		pub    events.Publisher
		bridge *events.Bridge
		nc     *nats.Conn
	)
	if cfg.NATSURL != "" {
		nc, bridge = connectBus(cfg, logger, eng)
		pub = bridge
	}

	r := serverhttp.NewRouter(cfg, logger, eng, pub)
	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().Str("addr", cfg.Addr()).Int("catalog", eng.Stats().TotalItems).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			logger.Warn().Err(err).Msg("events bridge close")
		}
		nc.Close()
	}
	logger.Info().Msg("bye")
}

func connectBus(cfg config.Config, logger zerolog.Logger, eng *service.Engine) (*nats.Conn, *events.Bridge) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("catalog-matcher"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("nats connect")
	}
	bridge := events.NewBridge(nc, events.Options{
		CatalogSubject:   cfg.CatalogSubject,
		ExceptionSubject: cfg.ExceptionSubject,
	}, logger)
	if err := bridge.Start(eng); err != nil {
		logger.Fatal().Err(err).Msg("events bridge start")
	}
	logger.Info().Str("url", cfg.NATSURL).Str("subject", cfg.CatalogSubject).Msg("listening for catalog snapshots")
	return nc, bridge
}

package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"catalog-matcher/internal/config"
	"catalog-matcher/internal/events"
	"catalog-matcher/internal/matching/handler"
	"catalog-matcher/internal/middleware"
)

const serviceName = "catalog-matcher"

// NewRouter собирает HTTP API. pub может быть nil - тогда исключения никуда не публикуются.
func NewRouter(cfg config.Config, logger zerolog.Logger, eng handler.Engine, pub events.Publisher) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> otel -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.OTel(serviceName))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) << 20))

	// health-check и stats без лимита частоты
	r.Get("/health", handler.Health)
	r.Get("/stats", handler.Stats(logger, eng))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

		r.Post("/match", handler.Match(logger, eng))
		r.Post("/match/batch", handler.BatchMatch(cfg, logger, eng, pub))
		r.Put("/catalog", handler.ReplaceCatalog(cfg, logger, eng))
	})

	return r
}

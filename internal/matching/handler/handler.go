package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/config"
	"catalog-matcher/internal/events"
	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/matching/model"
)

// Engine - то, что handler'ам нужно от движка сопоставления.
type Engine interface {
	Config() model.MatchConfig
	FindMatchesContext(ctx context.Context, boq model.BOQItem, cfg model.MatchConfig) []model.MatchResult
	BatchMatch(ctx context.Context, items []model.BOQItem, cfg model.MatchConfig, progress model.ProgressFunc) (model.BatchResult, error)
	UpdateCatalog(items []model.CatalogItem)
	Stats() model.Stats
}

type matchRequest struct {
	model.BOQItem
	Config model.ConfigPatch `json:"config"`
}

type matchResponse struct {
	Results []model.MatchResult `json:"results"`
}

type batchRequest struct {
	Items  []model.BOQItem   `json:"items"`
	Config model.ConfigPatch `json:"config"`
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func Stats(logger zerolog.Logger, eng Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, reqLogger(logger, r), http.StatusOK, eng.Stats())
	}
}

// Match: одна строка BOQ в JSON, опционально с частичной настройкой в "config".
func Match(logger zerolog.Logger, eng Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)
		defer r.Body.Close()

		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Description == "" && req.ItemCode == "" {
			http.Error(w, "description or itemCode required", http.StatusBadRequest)
			return
		}

		res := eng.FindMatchesContext(r.Context(), req.BOQItem, eng.Config().Apply(req.Config))
		if res == nil {
			res = []model.MatchResult{}
		}
		writeJSON(w, log, http.StatusOK, matchResponse{Results: res})

		log.Debug().
			Str("description", req.Description).
			Int("results", len(res)).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

// BatchMatch принимает JSON {"items","config"} либо multipart с файлом ведомости ("file")
// и маппингом колонок в полях формы. Исключения уходят в pub, если он задан.
func BatchMatch(cfg config.Config, logger zerolog.Logger, eng Engine, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)
		defer r.Body.Close()

		var (
			items []model.BOQItem
			patch model.ConfigPatch
		)
		if isMultipart(r) {
			if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
				http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
				return
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()

			items, err = catalog.DecodeBOQ(file, header.Filename, boqColumns(r))
			if err != nil {
				http.Error(w, "failed to read BOQ: "+err.Error(), uploadStatus(err))
				return
			}
			patch = configFromForm(r)
		} else {
			var req batchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
			items, patch = req.Items, req.Config
		}

		progress := func(p float64, done, total int) {
			if done == total || done%100 == 0 {
				log.Debug().Int("done", done).Int("total", total).Float64("progress", p).Msg("batch progress")
			}
		}
		res, err := eng.BatchMatch(r.Context(), items, eng.Config().Apply(patch), progress)
		if err != nil {
			log.Warn().Err(err).Int("items", len(items)).Msg("batch aborted")
			http.Error(w, "batch aborted: "+err.Error(), http.StatusServiceUnavailable)
			return
		}

		if pub != nil && len(res.Exceptions) > 0 {
			if err := pub.PublishExceptions(r.Context(), res.Exceptions); err != nil {
				log.Warn().Err(err).Int("exceptions", len(res.Exceptions)).Msg("publish exceptions")
			}
		}

		writeJSON(w, log, http.StatusOK, res)

		log.Info().
			Int("items", res.Stats.Total).
			Int("auto_mapped", res.Stats.AutoMapped).
			Int("needs_review", res.Stats.NeedsReview).
			Int("failed", res.Stats.Failed).
			Dur("elapsed", time.Since(start)).
			Msg("batch match done")
	}
}

// ReplaceCatalog подменяет снимок каталога: JSON-массив либо multipart-файл (.xlsx/.xls/.csv/.json/.yaml).
func ReplaceCatalog(cfg config.Config, logger zerolog.Logger, eng Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)
		defer r.Body.Close()

		var items []model.CatalogItem
		if isMultipart(r) {
			if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
				http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
				return
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()

			items, err = catalog.Decode(file, header.Filename, catalogColumns(r))
			if err != nil {
				http.Error(w, "failed to read catalog: "+err.Error(), uploadStatus(err))
				return
			}
		} else {
			var err error
			if items, err = catalog.Decode(r.Body, "catalog.json", catalog.DefaultColumns()); err != nil {
				http.Error(w, "bad catalog: "+err.Error(), http.StatusBadRequest)
				return
			}
		}

		eng.UpdateCatalog(items)
		st := eng.Stats()
		writeJSON(w, log, http.StatusOK, st)

		log.Info().
			Int("received", len(items)).
			Int("indexed", st.TotalItems).
			Str("fingerprint", st.Fingerprint).
			Dur("elapsed", time.Since(start)).
			Msg("catalog replaced")
	}
}

func uploadStatus(err error) int {
	if errors.Is(err, catalog.ErrUnsupportedFormat) || errors.Is(err, fileio.ErrUnsupported) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

package handler

import (
	"encoding/json"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/matching/model"
	"catalog-matcher/internal/middleware"
)

// логгер с rid, если middleware его проставил
func reqLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("rid", rid).Logger()
	}
	return logger
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

// формовые поля: пустое значение - колонка по умолчанию
func pick(r *http.Request, name, def string) string {
	if v := strings.TrimSpace(r.FormValue(name)); v != "" {
		return v
	}
	return def
}

func catalogColumns(r *http.Request) catalog.Columns {
	d := catalog.DefaultColumns()
	return catalog.Columns{
		ID:          pick(r, "id", d.ID),
		Code:        pick(r, "code", d.Code),
		Description: pick(r, "description", d.Description),
		Category:    pick(r, "category", d.Category),
		Subcategory: pick(r, "subcategory", d.Subcategory),
		UOM:         pick(r, "uom", d.UOM),
		Price:       pick(r, "price", d.Price),
		Status:      pick(r, "status", d.Status),
		Aliases:     pick(r, "aliases", d.Aliases),
		Keywords:    pick(r, "keywords", d.Keywords),
		HeaderRow:   atoi(r.FormValue("header_row"), d.HeaderRow),
	}
}

func boqColumns(r *http.Request) catalog.BOQColumns {
	d := catalog.DefaultBOQColumns()
	return catalog.BOQColumns{
		ItemCode:       pick(r, "item_code", d.ItemCode),
		Description:    pick(r, "description", d.Description),
		UOM:            pick(r, "uom", d.UOM),
		Category:       pick(r, "category", d.Category),
		Subcategory:    pick(r, "subcategory", d.Subcategory),
		EstimatedPrice: pick(r, "estimated_price", d.EstimatedPrice),
		Keywords:       pick(r, "keywords", d.Keywords),
		HeaderRow:      atoi(r.FormValue("header_row"), d.HeaderRow),
	}
}

// configFromForm собирает патч только из присланных полей: отсутствующие остаются nil.
func configFromForm(r *http.Request) model.ConfigPatch {
	var p model.ConfigPatch
	p.MinConfidence = floatField(r, "min_confidence")
	p.MaxResults = intField(r, "max_results")
	p.ExactMatchBoost = floatField(r, "exact_match_boost")
	p.CodeWeight = floatField(r, "code_weight")
	p.DescriptionWeight = floatField(r, "description_weight")
	p.EnableFuzzyMatching = boolField(r, "enable_fuzzy_matching")
	p.EnableKeywordMatching = boolField(r, "enable_keyword_matching")
	p.StrictUOMMatching = boolField(r, "strict_uom_matching")
	p.FuzzyScanLimit = intField(r, "fuzzy_scan_limit")
	p.DedupeBeforeLimit = boolField(r, "dedupe_before_limit")
	p.AutoMapConfidence = floatField(r, "auto_map_confidence")
	p.MaxPriceDeviation = floatField(r, "max_price_deviation")
	return p
}

func floatField(r *http.Request, name string) *float64 {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return nil
	}
	v := toFloat(s, math.NaN())
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func intField(r *http.Request, name string) *int {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}

func boolField(r *http.Request, name string) *bool {
	s := strings.ToLower(strings.TrimSpace(r.FormValue(name)))
	if s == "" {
		return nil
	}
	b := toBool(s, false)
	if !b && toBool(s, true) {
		// ни true, ни false - мусор
		return nil
	}
	return &b
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func toFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

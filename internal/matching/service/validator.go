package service

import (
	"math"
	"sort"
	"strings"

	"catalog-matcher/internal/matching/model"
)

// Validator - фильтрация, сортировка, дедуп и обрезка результатов.
type Validator struct {
	tp *TextProcessor
}

func NewValidator(tp *TextProcessor) *Validator {
	return &Validator{tp: tp}
}

func (v *Validator) IsValidMatch(m model.MatchResult, cfg model.MatchConfig) bool {
	return m.Confidence >= cfg.MinConfidence
}

func (v *Validator) ValidateUOM(boq model.BOQItem, item model.CatalogItem, cfg model.MatchConfig) bool {
	if !cfg.StrictUOMMatching {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(boq.UOM), strings.TrimSpace(item.UOM))
}

// ValidateCategory: отсутствие категории с любой стороны не мешает.
func (v *Validator) ValidateCategory(boq model.BOQItem, item model.CatalogItem) bool {
	if boq.Category == "" || item.Category == "" {
		return true
	}
	a, b := v.tp.Normalize(boq.Category), v.tp.Normalize(item.Category)
	return a == b || v.tp.Contains(a, b) || v.tp.Contains(b, a)
}

// ValidatePriceRange: относительное отклонение цены каталога от сметной.
// Без обеих цен или без порога проверка проходит.
func (v *Validator) ValidatePriceRange(boq model.BOQItem, item model.CatalogItem, maxDeviation *float64) bool {
	if boq.EstimatedPrice == nil || item.Price == nil || maxDeviation == nil {
		return true
	}
	est := *boq.EstimatedPrice
	if est == 0 {
		return *item.Price == 0
	}
	return math.Abs(*item.Price-est)/math.Abs(est) <= *maxDeviation
}

// FilterByPrice отбрасывает результаты, чья цена отклоняется от сметной больше maxDeviation.
func (v *Validator) FilterByPrice(ms []model.MatchResult, boq model.BOQItem, maxDeviation float64) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(ms))
	for _, m := range ms {
		if v.ValidatePriceRange(boq, m.CatalogItem, &maxDeviation) {
			out = append(out, m)
		}
	}
	return out
}

func (v *Validator) FilterMatches(ms []model.MatchResult, boq model.BOQItem, cfg model.MatchConfig) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(ms))
	for _, m := range ms {
		if v.IsValidMatch(m, cfg) && v.ValidateUOM(boq, m.CatalogItem, cfg) && v.ValidateCategory(boq, m.CatalogItem) &&
			v.ValidatePriceRange(boq, m.CatalogItem, cfg.MaxPriceDeviation) {
			out = append(out, m)
		}
	}
	return out
}

// SortMatchesByQuality: confidence ↓, тип (exact>fuzzy>keyword>partial), число совпавших полей ↓.
func (v *Validator) SortMatchesByQuality(ms []model.MatchResult) []model.MatchResult {
	out := append([]model.MatchResult(nil), ms...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if pa, pb := a.MatchType.Priority(), b.MatchType.Priority(); pa != pb {
			return pa > pb
		}
		return len(a.MatchedFields) > len(b.MatchedFields)
	})
	return out
}

// RemoveDuplicates оставляет первое вхождение каждого id в текущем порядке.
func (v *Validator) RemoveDuplicates(ms []model.MatchResult) []model.MatchResult {
	return dedupeByID(ms)
}

func (v *Validator) LimitResults(ms []model.MatchResult, max int) []model.MatchResult {
	return limit(ms, max)
}

// ProcessMatches: filter → sort → dedupe → limit.
// В отличие от финализации движка, дедуп идёт до обрезки.
func (v *Validator) ProcessMatches(ms []model.MatchResult, boq model.BOQItem, cfg model.MatchConfig) []model.MatchResult {
	out := v.FilterMatches(ms, boq, cfg)
	out = v.SortMatchesByQuality(out)
	out = v.RemoveDuplicates(out)
	return v.LimitResults(out, cfg.MaxResults)
}

func dedupeByID(ms []model.MatchResult) []model.MatchResult {
	seen := make(map[string]struct{}, len(ms))
	out := make([]model.MatchResult, 0, len(ms))
	for _, m := range ms {
		if _, ok := seen[m.CatalogItem.ID]; ok {
			continue
		}
		seen[m.CatalogItem.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

func limit(ms []model.MatchResult, max int) []model.MatchResult {
	if max < 0 {
		max = 0
	}
	if len(ms) > max {
		return ms[:max]
	}
	return ms
}

func sortByConfidence(ms []model.MatchResult) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Confidence > ms[j].Confidence })
}

package service

import (
	"fmt"
	"math"
	"strings"

	"catalog-matcher/internal/matching/model"
)

const (
	codeReportThreshold     = 0.8
	descReportThreshold     = 0.6
	categoryMatchThreshold  = 0.8
	containmentScore        = 0.8
	uomBonus                = 0.1
	categoryBonus           = 0.1
	exactTypeThreshold      = 0.95
	fuzzyTypeThreshold      = 0.8
	strictUOMMismatchReason = "UOM mismatch (strict mode)"
)

// Calculator - взвешенная многопольная оценка пары (строка BOQ, позиция каталога).
type Calculator struct {
	tp *TextProcessor
}

func NewCalculator(tp *TextProcessor) *Calculator {
	return &Calculator{tp: tp}
}

// scoreText: совпадение 1.0, вхождение в любую сторону 0.8, иначе нормированный Левенштейн.
// Если нормализация съела строку целиком (коды вида "1001"), сравниваем сырые строки в нижнем регистре.
func (c *Calculator) scoreText(a, b string) float64 {
	na, nb := c.tp.Normalize(a), c.tp.Normalize(b)
	if na == "" || nb == "" {
		na, nb = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	}
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return containmentScore
	}
	return normalizedLevenshtein(na, nb)
}

func (c *Calculator) CalculateMatch(boq model.BOQItem, item model.CatalogItem, cfg model.MatchConfig) model.MatchResult {
	var (
		totalScore, maxScore float64
		fields               []model.Field
		notes                []string
	)

	codeMatched := false
	if boq.ItemCode != "" && item.Code != "" {
		s := c.scoreText(boq.ItemCode, item.Code)
		totalScore += s * cfg.CodeWeight
		maxScore += cfg.CodeWeight
		if s > codeReportThreshold {
			codeMatched = true
			fields = append(fields, model.FieldCode)
			notes = append(notes, fmt.Sprintf("Code match (%d%%)", pct(s)))
		}
	}

	ds := c.scoreText(boq.Description, item.Description)
	totalScore += ds * cfg.DescriptionWeight
	maxScore += cfg.DescriptionWeight
	if ds > descReportThreshold {
		fields = append(fields, model.FieldDescription)
		notes = append(notes, fmt.Sprintf("Description similarity (%d%%)", pct(ds)))
	}

	uomEqual := strings.EqualFold(strings.TrimSpace(boq.UOM), strings.TrimSpace(item.UOM))
	if cfg.StrictUOMMatching && !uomEqual {
		return model.MatchResult{
			CatalogItem:   item,
			Confidence:    0,
			MatchType:     model.MatchPartial,
			MatchedFields: []model.Field{},
			Reason:        strictUOMMismatchReason,
		}
	}
	// бонусы добавляются к сумме, но не к знаменателю
	if uomEqual {
		totalScore += uomBonus
		fields = append(fields, model.FieldUOM)
		notes = append(notes, "UOM match")
	}

	if boq.Category != "" && item.Category != "" && c.scoreText(boq.Category, item.Category) > categoryMatchThreshold {
		totalScore += categoryBonus
		fields = append(fields, model.FieldCategory)
		notes = append(notes, "Category match")
	}

	confidence := 0.0
	if maxScore > 0 {
		confidence = totalScore / maxScore
	}
	if codeMatched && boq.ItemCode == item.Code {
		confidence += cfg.ExactMatchBoost
	}
	confidence = clamp01(confidence)

	reason := strings.Join(notes, ", ")
	if reason == "" {
		reason = fmt.Sprintf("%d%% match", pct(confidence))
	}
	if fields == nil {
		fields = []model.Field{}
	}

	return model.MatchResult{
		CatalogItem:   item,
		Confidence:    confidence,
		MatchType:     classify(confidence, len(fields) > 0),
		MatchedFields: fields,
		Reason:        reason,
	}
}

func classify(confidence float64, anyField bool) model.MatchType {
	switch {
	case confidence >= exactTypeThreshold:
		return model.MatchExact
	case confidence >= fuzzyTypeThreshold:
		return model.MatchFuzzy
	case anyField:
		return model.MatchKeyword
	default:
		return model.MatchPartial
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func pct(v float64) int { return int(math.Round(v * 100)) }

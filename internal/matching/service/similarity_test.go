package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/matching/model"
)

func TestCalculateMatch_MeasurementStrippedDescription(t *testing.T) {
	c := NewCalculator(NewTextProcessor())
	cfg := model.DefaultMatchConfig()

	r := c.CalculateMatch(model.BOQItem{Description: "50mm pvc conduit pipe", UOM: "m"}, conduit(), cfg)

	assert.Equal(t, 1.0, r.Confidence)
	assert.Equal(t, model.MatchExact, r.MatchType)
	assert.Equal(t, []model.Field{model.FieldDescription, model.FieldUOM}, r.MatchedFields)
	assert.Equal(t, "Description similarity (100%), UOM match", r.Reason)
}

func TestCalculateMatch_StrictUOMMismatch(t *testing.T) {
	c := NewCalculator(NewTextProcessor())
	cfg := model.DefaultMatchConfig()
	cfg.StrictUOMMatching = true

	r := c.CalculateMatch(model.BOQItem{ItemCode: "CAB-50", Description: "50mm pvc conduit pipe", UOM: "kg"}, conduit(), cfg)

	assert.Equal(t, 0.0, r.Confidence)
	assert.Equal(t, model.MatchPartial, r.MatchType)
	assert.Empty(t, r.MatchedFields)
	assert.NotNil(t, r.MatchedFields)
	assert.Equal(t, "UOM mismatch (strict mode)", r.Reason)

	// регистр единицы не важен
	r = c.CalculateMatch(model.BOQItem{Description: "pvc conduit pipe", UOM: "M"}, conduit(), cfg)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestCalculateMatch_ExactCodeBoost(t *testing.T) {
	c := NewCalculator(NewTextProcessor())
	cfg := model.DefaultMatchConfig()
	desc := "something else entirely"

	boosted := c.CalculateMatch(model.BOQItem{ItemCode: "CAB-50", Description: desc, UOM: "ea"}, conduit(), cfg)
	plain := c.CalculateMatch(model.BOQItem{ItemCode: "cab-50", Description: desc, UOM: "ea"}, conduit(), cfg)

	assert.Contains(t, boosted.MatchedFields, model.FieldCode)
	assert.Contains(t, plain.MatchedFields, model.FieldCode)
	assert.InDelta(t, cfg.ExactMatchBoost, boosted.Confidence-plain.Confidence, 1e-9)
}

func TestCalculateMatch_CategoryBonus(t *testing.T) {
	c := NewCalculator(NewTextProcessor())
	cfg := model.DefaultMatchConfig()
	boq := model.BOQItem{Description: "pvc conduit", UOM: "nos", Category: "Piping"}

	withCat := c.CalculateMatch(boq, conduit(), cfg)
	boq.Category = ""
	without := c.CalculateMatch(boq, conduit(), cfg)

	assert.Contains(t, withCat.MatchedFields, model.FieldCategory)
	assert.NotContains(t, without.MatchedFields, model.FieldCategory)
	assert.InDelta(t, 0.1/cfg.DescriptionWeight, withCat.Confidence-without.Confidence, 1e-9)
}

func TestCalculateMatch_FallbackReason(t *testing.T) {
	c := NewCalculator(NewTextProcessor())
	r := c.CalculateMatch(model.BOQItem{Description: "xyz", UOM: "kg"}, conduit(), model.DefaultMatchConfig())

	assert.Equal(t, model.MatchPartial, r.MatchType)
	assert.Empty(t, r.MatchedFields)
	assert.Regexp(t, `^\d+% match$`, r.Reason)
}

func TestCalculateMatch_ConfidenceBounds(t *testing.T) {
	c := NewCalculator(NewTextProcessor())
	cfg := model.DefaultMatchConfig()
	cfg.ExactMatchBoost = 0.9

	items := []model.CatalogItem{
		conduit(),
		{ID: "2", Code: "1001", Description: "copper earthing strip 25x3", Category: "electrical", UOM: "m"},
		{ID: "3", Description: "", UOM: ""},
	}
	boqs := []model.BOQItem{
		{ItemCode: "CAB-50", Description: "50mm PVC conduit pipe", UOM: "m", Category: "piping"},
		{ItemCode: "1001", Description: "copper earthing strip", UOM: "M", Category: "Electrical works"},
		{Description: "", UOM: ""},
		{ItemCode: "zz", Description: "totally unrelated line", UOM: "ls"},
	}
	for _, it := range items {
		for _, b := range boqs {
			r := c.CalculateMatch(b, it, cfg)
			assert.GreaterOrEqual(t, r.Confidence, 0.0)
			assert.LessOrEqual(t, r.Confidence, 1.0)
		}
	}
}

func TestScoreText(t *testing.T) {
	c := NewCalculator(NewTextProcessor())

	assert.Equal(t, 1.0, c.scoreText("PVC Pipe", "pvc pipe"))
	assert.Equal(t, 0.8, c.scoreText("pvc conduit pipe", "conduit pipe"))
	assert.Equal(t, 0.8, c.scoreText("conduit", "pvc conduit pipe"))
	// чисто цифровые коды не схлопываются в пустую строку
	assert.Equal(t, 1.0, c.scoreText("1001", "1001"))
	assert.Less(t, c.scoreText("1001", "2002"), 0.8)
	assert.Equal(t, 0.0, c.scoreText("", "pipe"))
}

// Одна сторона целиком из размеров: сравниваются сырые строки, а не 0.
func TestScoreText_OneSideNormalizedAway(t *testing.T) {
	c := NewCalculator(NewTextProcessor())

	require.Empty(t, c.tp.Normalize("50mm"))
	assert.Equal(t, 0.8, c.scoreText("50mm", "50mm PVC conduit"))
	assert.Equal(t, 0.8, c.scoreText("50mm PVC conduit", "50mm"))
	assert.Equal(t, 0.0, c.scoreText("100", "pvc conduit pipe"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, model.MatchExact, classify(0.95, false))
	assert.Equal(t, model.MatchFuzzy, classify(0.8, false))
	assert.Equal(t, model.MatchKeyword, classify(0.5, true))
	assert.Equal(t, model.MatchPartial, classify(0.5, false))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/matching/model"
)

func TestBatchMatch(t *testing.T) {
	e := NewEngine([]model.CatalogItem{conduit()}, model.ConfigPatch{}, WithWorkers(2))
	cfg := e.Config().Apply(model.ConfigPatch{AutoMapConfidence: ptr(0.95)})
	items := []model.BOQItem{
		{Description: "50mm PVC conduit pipe", UOM: "m"},
		{Description: "zzzz qqqq", UOM: "kg"},
		{Description: "pvc conduit", UOM: "nos"},
	}

	var calls, last int
	res, err := e.BatchMatch(context.Background(), items, cfg, func(progress float64, processed, total int) {
		calls++
		last = processed
		assert.Equal(t, 3, total)
		assert.InDelta(t, float64(processed)/3, progress, 1e-9)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, last)

	require.Len(t, res.Matches, 3)
	assert.Equal(t, model.OutcomeAutoMapped, res.Matches[0].Outcome)
	assert.Equal(t, model.OutcomeFailed, res.Matches[1].Outcome)
	assert.Equal(t, model.OutcomeNeedsReview, res.Matches[2].Outcome)
	assert.Equal(t, items[2], res.Matches[2].BOQItem)

	assert.Equal(t, model.BatchStats{
		Total:       3,
		AutoMapped:  1,
		NeedsReview: 1,
		Failed:      1,
		Confidence:  res.Stats.Confidence,
	}, res.Stats)
	c := res.Stats.Confidence
	assert.Equal(t, 3, c.High+c.Medium+c.Low)
	assert.GreaterOrEqual(t, c.Low, 1)

	require.Len(t, res.Exceptions, 2)
	failed, review := res.Exceptions[0], res.Exceptions[1]
	assert.Equal(t, items[1], failed.BOQItem)
	assert.Equal(t, model.PriorityHigh, failed.Priority)
	assert.Empty(t, failed.Suggestions)
	assert.Equal(t, model.PriorityLow, review.Priority)
	assert.NotEmpty(t, review.Suggestions)
	for _, ex := range res.Exceptions {
		assert.Equal(t, model.ExceptionPending, ex.Status)
		assert.Len(t, ex.ID, 36)
		assert.False(t, ex.CreatedAt.IsZero())
	}
}

func TestBatchMatch_Canceled(t *testing.T) {
	e := NewEngine([]model.CatalogItem{conduit()}, model.ConfigPatch{}, WithWorkers(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.BatchMatch(ctx, []model.BOQItem{{Description: "pvc pipe"}}, e.Config(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExceptionPriority(t *testing.T) {
	assert.Equal(t, model.PriorityHigh, exceptionPriority(nil))
	assert.Equal(t, model.PriorityMedium, exceptionPriority([]model.MatchResult{result("a", 0.65, model.MatchKeyword)}))
	assert.Equal(t, model.PriorityLow, exceptionPriority([]model.MatchResult{result("a", 0.75, model.MatchKeyword)}))
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"catalog-matcher/internal/matching/model"
)

const (
	highConfidence   = 0.8
	mediumConfidence = 0.6
	// ниже этого лучший кандидат исключения получает priority=medium
	reviewPriorityCut = 0.7
)

// BatchMatch сопоставляет пачку строк BOQ на одном снимке каталога.
// Строки обрабатываются параллельно (WithWorkers); порядок результатов совпадает с входом.
// ctx проверяется между строками, отдельный запрос не прерывается.
func (e *Engine) BatchMatch(ctx context.Context, items []model.BOQItem, cfg model.MatchConfig, progress model.ProgressFunc) (model.BatchResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "engine.batch_match")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.items", len(items)))

	snap := e.idx.load()
	matches := make([]model.ItemMatches, len(items))

	var (
		mu        sync.Mutex
		processed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := e.match(snap, items[i], cfg)
			matches[i] = model.ItemMatches{
				BOQItem: items[i],
				Results: res,
				Outcome: outcomeOf(res, cfg),
			}
			if progress != nil {
				mu.Lock()
				processed++
				progress(float64(processed)/float64(len(items)), processed, len(items))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BatchResult{}, err
	}

	out := model.BatchResult{
		Matches:    matches,
		Exceptions: []model.MappingException{},
		Stats:      model.BatchStats{Total: len(items)},
	}
	now := time.Now()
	for _, m := range matches {
		best := 0.0
		if len(m.Results) > 0 {
			best = m.Results[0].Confidence
		}
		switch {
		case best >= highConfidence:
			out.Stats.Confidence.High++
		case best >= mediumConfidence:
			out.Stats.Confidence.Medium++
		default:
			out.Stats.Confidence.Low++
		}

		switch m.Outcome {
		case model.OutcomeAutoMapped:
			out.Stats.AutoMapped++
			continue
		case model.OutcomeNeedsReview:
			out.Stats.NeedsReview++
		case model.OutcomeFailed:
			out.Stats.Failed++
		}
		out.Exceptions = append(out.Exceptions, model.MappingException{
			ID:          uuid.NewString(),
			BOQItem:     m.BOQItem,
			Suggestions: m.Results,
			Status:      model.ExceptionPending,
			CreatedAt:   now,
			Priority:    exceptionPriority(m.Results),
		})
	}

	span.SetAttributes(
		attribute.Int("batch.auto_mapped", out.Stats.AutoMapped),
		attribute.Int("batch.exceptions", len(out.Exceptions)),
	)
	e.log.Info().
		Int("total", out.Stats.Total).
		Int("auto_mapped", out.Stats.AutoMapped).
		Int("needs_review", out.Stats.NeedsReview).
		Int("failed", out.Stats.Failed).
		Msg("batch match done")
	return out, nil
}

func outcomeOf(res []model.MatchResult, cfg model.MatchConfig) model.Outcome {
	switch {
	case len(res) == 0:
		return model.OutcomeFailed
	case res[0].Confidence >= cfg.AutoMapConfidence:
		return model.OutcomeAutoMapped
	default:
		return model.OutcomeNeedsReview
	}
}

func exceptionPriority(suggestions []model.MatchResult) model.Priority {
	switch {
	case len(suggestions) == 0:
		return model.PriorityHigh
	case suggestions[0].Confidence < reviewPriorityCut:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

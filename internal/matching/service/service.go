package service

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"catalog-matcher/internal/matching/model"
)

const tracerName = "catalog-matcher/matching"

// Engine - сопоставление строк BOQ с каталогом:
// точный код → кандидаты из индекса → fuzzy-догон → финализация.
// Запрос синхронный и работает над одним неизменяемым снимком.
type Engine struct {
	tp   *TextProcessor
	idx  *Index
	calc *Calculator
	val  *Validator

	cfg     atomic.Pointer[model.MatchConfig]
	log     zerolog.Logger
	workers int
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithStopWords заменяет встроенный набор стоп-слов.
func WithStopWords(words ...string) Option {
	return func(e *Engine) { e.tp = NewTextProcessor(words...) }
}

// WithWorkers - параллелизм BatchMatch.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(items []model.CatalogItem, patch model.ConfigPatch, opts ...Option) *Engine {
	e := &Engine{
		tp:      NewTextProcessor(),
		log:     zerolog.Nop(),
		workers: runtime.NumCPU(),
	}
	for _, o := range opts {
		o(e)
	}
	e.calc = NewCalculator(e.tp)
	e.val = NewValidator(e.tp)
	cfg := model.DefaultMatchConfig().Apply(patch)
	e.cfg.Store(&cfg)
	e.idx = &Index{tp: e.tp}
	e.UpdateCatalog(items)
	return e
}

func (e *Engine) Config() model.MatchConfig { return *e.cfg.Load() }

// UpdateConfig накладывает патч на текущую конфигурацию.
func (e *Engine) UpdateConfig(patch model.ConfigPatch) model.MatchConfig {
	for {
		cur := e.cfg.Load()
		next := cur.Apply(patch)
		if e.cfg.CompareAndSwap(cur, &next) {
			return next
		}
	}
}

// UpdateCatalog заменяет снимок каталога (только active) и перестраивает индекс.
func (e *Engine) UpdateCatalog(items []model.CatalogItem) {
	active := make([]model.CatalogItem, 0, len(items))
	for _, it := range items {
		if it.Active() {
			active = append(active, it)
		}
	}
	e.idx.Rebuild(active)
	st := e.idx.Stats()
	e.log.Info().
		Int("items", len(items)).
		Int("active", st.TotalItems).
		Int("keywords", st.IndexedKeywords).
		Str("fingerprint", st.Fingerprint).
		Msg("catalog index rebuilt")
}

func (e *Engine) Stats() model.Stats { return e.idx.Stats() }

func (e *Engine) Index() *Index { return e.idx }

func (e *Engine) FindMatches(boq model.BOQItem) []model.MatchResult {
	return e.FindMatchesWithConfig(boq, e.Config())
}

// FindMatchesWithConfig - тот же конвейер с конфигурацией на один запрос.
func (e *Engine) FindMatchesWithConfig(boq model.BOQItem, cfg model.MatchConfig) []model.MatchResult {
	return e.match(e.idx.load(), boq, cfg)
}

// FindMatchesContext - обёртка для границы системы: только span, сам расчёт синхронный.
func (e *Engine) FindMatchesContext(ctx context.Context, boq model.BOQItem, cfg model.MatchConfig) []model.MatchResult {
	_, span := otel.Tracer(tracerName).Start(ctx, "engine.find_matches")
	defer span.End()
	res := e.FindMatchesWithConfig(boq, cfg)
	span.SetAttributes(attribute.Int("match.results", len(res)))
	return res
}

func (e *Engine) match(s *snapshot, boq model.BOQItem, cfg model.MatchConfig) []model.MatchResult {
	var pool []model.MatchResult

	// (1) точный код - не прерывает остальные этапы
	exact := 0
	if code := strings.TrimSpace(boq.ItemCode); code != "" {
		for _, it := range s.items {
			if it.Code != "" && strings.EqualFold(strings.TrimSpace(it.Code), code) {
				pool = append(pool, exactCodeResult(it))
				exact++
			}
		}
	}

	// (2) кандидаты из индекса
	var cands map[string]struct{}
	if cfg.EnableKeywordMatching {
		cands = s.candidates(e.tp, boq)
	}

	// (3) оценка кандидатов
	for _, it := range s.items {
		if _, ok := cands[it.ID]; !ok {
			continue
		}
		if r := e.calc.CalculateMatch(boq, it, cfg); r.Confidence >= cfg.MinConfidence {
			pool = append(pool, r)
		}
	}
	scored := len(pool) - exact

	// (4) fuzzy-догон: линейный просмотр первых FuzzyScanLimit позиций вне кандидатов
	fuzzy := 0
	if len(pool) < cfg.MaxResults && cfg.EnableFuzzyMatching {
		var batch []model.MatchResult
		scanned := 0
		for _, it := range s.items {
			if _, ok := cands[it.ID]; ok {
				continue
			}
			if scanned >= cfg.FuzzyScanLimit {
				break
			}
			scanned++
			if r := e.calc.CalculateMatch(boq, it, cfg); r.Confidence >= cfg.MinConfidence {
				batch = append(batch, r)
			}
		}
		sortByConfidence(batch)
		pool = append(pool, batch...)
		fuzzy = len(batch)
	}

	// ценовой фильтр только по явному порогу
	if cfg.MaxPriceDeviation != nil {
		pool = e.val.FilterByPrice(pool, boq, *cfg.MaxPriceDeviation)
	}

	out := finalize(pool, cfg)
	e.log.Debug().
		Int("exact", exact).
		Int("candidates", len(cands)).
		Int("scored", scored).
		Int("fuzzy", fuzzy).
		Int("results", len(out)).
		Msg("find matches")
	return out
}

// finalize: сортировка по confidence, затем срез maxResults и дедуп по id.
// Дубликат, попавший в срез, занимает слот - результатов может оказаться меньше maxResults.
// DedupeBeforeLimit меняет порядок на дедуп → срез.
func finalize(pool []model.MatchResult, cfg model.MatchConfig) []model.MatchResult {
	sortByConfidence(pool)
	if cfg.DedupeBeforeLimit {
		return limit(dedupeByID(pool), cfg.MaxResults)
	}
	return dedupeByID(limit(pool, cfg.MaxResults))
}

func exactCodeResult(it model.CatalogItem) model.MatchResult {
	return model.MatchResult{
		CatalogItem:   it,
		Confidence:    1,
		MatchType:     model.MatchExact,
		MatchedFields: []model.Field{model.FieldCode},
		Reason:        "Exact code match",
	}
}

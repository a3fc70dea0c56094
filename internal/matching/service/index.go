package service

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"catalog-matcher/internal/matching/model"
)

// снимок каталога + индекса; после публикации не меняется
type snapshot struct {
	items       []model.CatalogItem            // только active, в исходном порядке
	byID        map[string]int                 // id -> позиция в items
	keywords    map[string][]string            // id -> ключевые слова позиции
	inv         map[string]map[string]struct{} // keyword -> set(id)
	fingerprint uint64
	builtAt     time.Time
}

// Index - инвертированный индекс keyword → id позиций каталога.
// Rebuild строит новый снимок целиком и подменяет его атомарно:
// параллельные запросы видят либо старый, либо новый снимок.
type Index struct {
	tp   *TextProcessor
	snap atomic.Pointer[snapshot]
}

func NewIndex(tp *TextProcessor, items []model.CatalogItem) *Index {
	idx := &Index{tp: tp}
	idx.Rebuild(items)
	return idx
}

func (idx *Index) Rebuild(items []model.CatalogItem) {
	idx.snap.Store(buildSnapshot(idx.tp, items))
}

func (idx *Index) load() *snapshot { return idx.snap.Load() }

func buildSnapshot(tp *TextProcessor, items []model.CatalogItem) *snapshot {
	s := &snapshot{
		items:    make([]model.CatalogItem, 0, len(items)),
		byID:     make(map[string]int, len(items)),
		keywords: make(map[string][]string, len(items)),
		inv:      make(map[string]map[string]struct{}),
		builtAt:  time.Now(),
	}
	h := xxhash.New()

	for _, it := range items {
		if !it.Active() {
			continue
		}
		if _, dup := s.byID[it.ID]; dup {
			continue
		}
		s.byID[it.ID] = len(s.items)
		s.items = append(s.items, it)

		kws := itemKeywords(tp, it)
		s.keywords[it.ID] = kws
		for _, kw := range kws {
			bucket, ok := s.inv[kw]
			if !ok {
				bucket = make(map[string]struct{})
				s.inv[kw] = bucket
			}
			bucket[it.ID] = struct{}{}
		}

		_, _ = h.WriteString(it.ID)
		_, _ = h.WriteString("\x00" + it.Code + "\x00" + it.Description + "\x00" + it.UOM + "\x00" + it.Category + "\x1e")
	}
	s.fingerprint = h.Sum64()
	return s
}

// description, code, aliases, category, subcategory - через ExtractKeywords;
// явные keywords только нормализуются
func itemKeywords(tp *TextProcessor, it model.CatalogItem) []string {
	set := make(map[string]struct{})
	var out []string
	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, ok := set[kw]; ok {
			return
		}
		set[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, kw := range tp.ExtractKeywords(it.Description) {
		add(kw)
	}
	for _, kw := range tp.ExtractKeywords(it.Code) {
		add(kw)
	}
	for _, kw := range it.Keywords {
		add(tp.Normalize(kw))
	}
	for _, alias := range it.Aliases {
		for _, kw := range tp.ExtractKeywords(alias) {
			add(kw)
		}
	}
	for _, kw := range tp.ExtractKeywords(it.Category) {
		add(kw)
	}
	for _, kw := range tp.ExtractKeywords(it.Subcategory) {
		add(kw)
	}
	return out
}

// FindCandidates - этап полноты: id позиций, разделяющих хотя бы одно ключевое слово
// с описанием или категорией строки BOQ. Без ранжирования.
func (idx *Index) FindCandidates(boq model.BOQItem) map[string]struct{} {
	return idx.load().candidates(idx.tp, boq)
}

func (s *snapshot) candidates(tp *TextProcessor, boq model.BOQItem) map[string]struct{} {
	out := make(map[string]struct{})
	collect := func(text string) {
		for _, kw := range tp.ExtractKeywords(text) {
			for id := range s.inv[kw] {
				out[id] = struct{}{}
			}
		}
	}
	collect(boq.Description)
	if boq.Category != "" {
		collect(boq.Category)
	}
	return out
}

// Keywords возвращает отсортированный список ключевых слов позиции (для диагностики).
func (idx *Index) Keywords(id string) []string {
	kws := idx.load().keywords[id]
	out := append([]string(nil), kws...)
	sort.Strings(out)
	return out
}

func (idx *Index) Stats() model.Stats {
	return idx.load().stats()
}

func (s *snapshot) stats() model.Stats {
	st := model.Stats{
		TotalItems:      len(s.items),
		IndexedKeywords: len(s.inv),
		Fingerprint:     fmt.Sprintf("%016x", s.fingerprint),
		BuiltAt:         s.builtAt,
	}
	if st.TotalItems > 0 {
		postings := 0
		for _, ids := range s.inv {
			postings += len(ids)
		}
		st.AvgKeywordsPerItem = float64(postings) / float64(st.TotalItems)
	}
	return st
}

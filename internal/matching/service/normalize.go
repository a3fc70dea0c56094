package service

import (
	"regexp"
	"strconv"
	"strings"

	"catalog-matcher/internal/matching/model"
)

// Связки + единицы/размеры: в ключевые слова не попадают
var defaultStopWords = []string{
	"the", "and", "for", "with", "without", "from", "into", "per", "each", "are", "all", "any", "not", "inc", "incl",
	"including", "complete", "supply", "install", "nos", "pcs", "pair", "pairs", "set", "sets", "lot", "size",
	"sizes", "type", "grade", "class", "length", "meter", "metre", "meters", "metres", "mtr", "kgs", "ltr",
	"litre", "liter", "roll", "rolls", "box", "unit", "units", "piece", "pieces", "dia", "thk", "mm", "cm", "kg",
}

var (
	// всё, кроме \w, пробелов и дефиса → пробел
	reNonWord = regexp.MustCompile(`[^\w\s-]`)
	// токены вида 50mm, 2x4, 100 - шум для сравнения описаний
	reNumToken = regexp.MustCompile(`\b\d+\w*\b`)
	reNumeric  = regexp.MustCompile(`^\d+$`)
	// хвостовые "существительные оборудования": cable, pipes, fitting ...
	reEquipSuffix = regexp.MustCompile(`(?:^|\s+)(?:cable|wire|cord|tube|pipe|fitting|joint|connector)s?$`)
	reSpecPair    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]+)`)
)

// TextProcessor - нормализация, ключевые слова, строковая схожесть.
// Набор стоп-слов неизменяем после создания.
type TextProcessor struct {
	stopWords map[string]struct{}
}

// NewTextProcessor без аргументов берёт встроенный набор стоп-слов.
func NewTextProcessor(stopWords ...string) *TextProcessor {
	if len(stopWords) == 0 {
		stopWords = defaultStopWords
	}
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &TextProcessor{stopWords: sw}
}

func (tp *TextProcessor) IsStopWord(w string) bool {
	_, ok := tp.stopWords[w]
	return ok
}

// Normalize идемпотентна: Normalize(Normalize(x)) == Normalize(x).
func (tp *TextProcessor) Normalize(s string) string {
	if s == "" {
		return ""
	}
	out := strings.TrimSpace(strings.ToLower(s))
	out = collapseSpaces(reNonWord.ReplaceAllString(out, " "))
	out = reNumToken.ReplaceAllString(out, "")
	return collapseSpaces(out)
}

func (tp *TextProcessor) ExtractKeywords(s string) []string {
	norm := tp.Normalize(s)
	if norm == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range strings.Fields(norm) {
		if len(tok) <= 2 || tp.IsStopWord(tok) || reNumeric.MatchString(tok) {
			continue
		}
		tok = stem(tok)
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// наивный стемминг: одна хвостовая "s"
func stem(w string) string {
	return strings.TrimSuffix(w, "s")
}

func (tp *TextProcessor) Similarity(a, b string) float64 {
	na, nb := tp.Normalize(a), tp.Normalize(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	return normalizedLevenshtein(na, nb)
}

// Contains - вхождение needle в haystack после нормализации.
// Пустой needle не считается вхождением.
func (tp *TextProcessor) Contains(haystack, needle string) bool {
	nn := tp.Normalize(needle)
	if nn == "" {
		return false
	}
	return strings.Contains(tp.Normalize(haystack), nn)
}

func (tp *TextProcessor) GenerateVariations(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	norm := tp.Normalize(s)
	add(norm)
	add(strings.TrimSpace(strings.ToLower(s)))

	if words := strings.Fields(norm); len(words) > 1 {
		var b strings.Builder
		for _, w := range words {
			b.WriteByte(w[0])
		}
		add(b.String())
	}
	add(collapseSpaces(reEquipSuffix.ReplaceAllString(norm, "")))
	return out
}

// ExtractSpecs вытаскивает пары "число+единица". В скоринге не используется.
func (tp *TextProcessor) ExtractSpecs(s string) []model.Measurement {
	var out []model.Measurement
	for _, m := range reSpecPair.FindAllStringSubmatch(strings.ToLower(s), -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, model.Measurement{Value: v, Unit: m[2]})
	}
	return out
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

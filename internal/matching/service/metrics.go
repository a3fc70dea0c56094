package service

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// LevenshteinDistance - редакционное расстояние по рунам.
func LevenshteinDistance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// JaroWinkler - альтернативная метрика в [0..1]; в скоринг по умолчанию не включена.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return float64(edlib.JaroWinklerSimilarity(a, b))
}

// 1 - lev(a,b)/max(len(a),len(b))
func normalizedLevenshtein(a, b string) float64 {
	m := utf8.RuneCountInString(a)
	if mb := utf8.RuneCountInString(b); mb > m {
		m = mb
	}
	if m == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(m)
}

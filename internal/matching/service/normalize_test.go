package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog-matcher/internal/matching/model"
)

func TestNormalize(t *testing.T) {
	tp := NewTextProcessor()
	cases := map[string]string{
		"":                        "",
		"  Hello, World!  ":       "hello world",
		"50mm PVC Conduit-Pipe":   "pvc conduit-pipe",
		"2x4 timber 100":          "timber",
		"PVC   50mm  pipe":        "pvc pipe",
		"Cable (armoured) / 4C":   "cable armoured",
		"Copper\tEarthing\nStrip": "copper earthing strip",
	}
	for in, want := range cases {
		assert.Equal(t, want, tp.Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	tp := NewTextProcessor()
	inputs := []string{
		"The 50mm PVC Conduit Pipes",
		"CAB-50",
		"a-5b x5-3y",
		"  GI pipe, 25mm dia. (class B)  ",
		"1001",
		"steel_bar 12mm-16mm",
	}
	for _, in := range inputs {
		once := tp.Normalize(in)
		assert.Equal(t, once, tp.Normalize(once), "input %q", in)
	}
}

func TestExtractKeywords(t *testing.T) {
	tp := NewTextProcessor()

	assert.Equal(t, []string{"pvc", "conduit", "pipe"}, tp.ExtractKeywords("The 50mm PVC Conduit Pipes"))
	assert.Equal(t, []string{"copper", "cable"}, tp.ExtractKeywords("copper cables and copper cable"))
	assert.Empty(t, tp.ExtractKeywords("to be 10 mm"))
	assert.Nil(t, tp.ExtractKeywords(""))
}

func TestCustomStopWords(t *testing.T) {
	tp := NewTextProcessor("pvc")
	assert.Equal(t, []string{"the", "conduit"}, tp.ExtractKeywords("the pvc conduit"))
	assert.True(t, tp.IsStopWord("pvc"))
	assert.False(t, tp.IsStopWord("the"))
}

func TestSimilarity(t *testing.T) {
	tp := NewTextProcessor()

	for _, s := range []string{"pvc pipe", "CAB-50", "x", "50mm"} {
		assert.Equal(t, 1.0, tp.Similarity(s, s), s)
	}
	assert.Equal(t, 1.0, tp.Similarity("PVC Pipe", "pvc, pipe"))
	assert.Equal(t, 0.0, tp.Similarity("", "pipe"))
	assert.InDelta(t, 1-1.0/6.0, tp.Similarity("cable", "cables"), 1e-9)
	assert.Less(t, tp.Similarity("copper cable", "steel beam"), 0.5)
}

func TestContains(t *testing.T) {
	tp := NewTextProcessor()

	assert.True(t, tp.Contains("50mm PVC Conduit Pipe", "conduit pipe"))
	assert.False(t, tp.Contains("conduit pipe", "PVC conduit pipe"))
	assert.False(t, tp.Contains("conduit pipe", ""))
	assert.False(t, tp.Contains("conduit pipe", "50mm"))
}

func TestGenerateVariations(t *testing.T) {
	tp := NewTextProcessor()

	assert.Equal(t, []string{"pvc conduit pipes", "pcp", "pvc conduit"}, tp.GenerateVariations("PVC Conduit Pipes"))
	assert.Equal(t,
		[]string{"armoured cable", "50mm armoured cable", "ac", "armoured"},
		tp.GenerateVariations("50mm Armoured Cable"))
	assert.Equal(t, []string{"valve"}, tp.GenerateVariations("Valve"))
}

func TestExtractSpecs(t *testing.T) {
	tp := NewTextProcessor()

	got := tp.ExtractSpecs("50mm pipe, 2.5 KG per length")
	assert.Equal(t, []model.Measurement{{Value: 50, Unit: "mm"}, {Value: 2.5, Unit: "kg"}}, got)
	assert.Empty(t, tp.ExtractSpecs("no numbers here"))
}

func TestAlternativeMetrics(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 0, LevenshteinDistance("pipe", "pipe"))

	assert.Equal(t, 1.0, JaroWinkler("conduit", "conduit"))
	assert.Equal(t, 0.0, JaroWinkler("", "conduit"))
	assert.Greater(t, JaroWinkler("conduit", "conduits"), 0.9)
	assert.Less(t, JaroWinkler("conduit", "xyz"), 0.5)
}

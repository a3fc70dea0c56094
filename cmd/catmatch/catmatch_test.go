package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-matcher/internal/matching/model"
)

const catalogCSV = "ID,Code,Description,Category,UOM,Price\n" +
	"1,CAB-50,50mm PVC conduit pipe,piping,m,12.5\n" +
	"2,GI-25,GI pipe 25mm,piping,m,30\n"

const boqJSON = `[
  {"itemCode":"CAB-50","description":"conduit","uom":"m"},
  {"description":"copper busbar","uom":"kg"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMatch_Text(t *testing.T) {
	cat := writeFile(t, "catalog.csv", catalogCSV)
	boq := writeFile(t, "boq.json", boqJSON)

	out, err := run(t, "match", "--catalog", cat, "--boq", boq)
	require.NoError(t, err)
	assert.Contains(t, out, "copper busbar")
	assert.NotContains(t, out, "CAB-50 50mm")
	assert.Contains(t, out, "total 2: auto-mapped 1, needs review 0, failed 1")
}

func TestMatch_JSONWithConfig(t *testing.T) {
	cat := writeFile(t, "catalog.csv", catalogCSV)
	boq := writeFile(t, "boq.json", boqJSON)
	cfg := writeFile(t, "match.toml", "auto_map_confidence = 1.01\n")

	out, err := run(t, "match", "--catalog", cat, "--boq", boq, "--config", cfg, "--json")
	require.NoError(t, err)

	var res model.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Stats.AutoMapped)
	assert.Equal(t, 1, res.Stats.NeedsReview)
	assert.Len(t, res.Exceptions, 2)
}

func TestMatch_FlagsOverrideConfig(t *testing.T) {
	cat := writeFile(t, "catalog.csv", catalogCSV)
	boq := writeFile(t, "boq.json", `[{"itemCode":"CAB-50","description":"conduit","uom":"m","estimatedPrice":100}]`)
	cfg := writeFile(t, "match.toml", "max_price_deviation = 100.0\nmax_results = 3\n")

	out, err := run(t, "match", "--catalog", cat, "--boq", boq, "--config", cfg, "--json")
	require.NoError(t, err)
	var res model.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Stats.AutoMapped)

	// 12.5 против 100: отклонение 0.875 > 0.5
	out, err = run(t, "match", "--catalog", cat, "--boq", boq, "--config", cfg, "--json", "--max-price-deviation", "0.5")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Stats.AutoMapped)
	assert.Equal(t, 1, res.Stats.Failed)
}

func TestMatch_MissingFlags(t *testing.T) {
	_, err := run(t, "match", "--catalog", "x.csv")
	assert.Error(t, err)
}

func TestMatch_UnsupportedCatalog(t *testing.T) {
	boq := writeFile(t, "boq.json", boqJSON)
	_, err := run(t, "match", "--catalog", writeFile(t, "catalog.pdf", "%PDF"), "--boq", boq)
	assert.ErrorContains(t, err, "unsupported")
}

func TestStats(t *testing.T) {
	cat := writeFile(t, "catalog.csv", catalogCSV)

	out, err := run(t, "stats", "--catalog", cat, "--json")
	require.NoError(t, err)
	var st model.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 2, st.TotalItems)

	out, err = run(t, "stats", "--catalog", cat)
	require.NoError(t, err)
	assert.Contains(t, out, "items:       2")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip(" abc ", 5))
	assert.Equal(t, "abcd…", clip("abcdefgh", 5))
}

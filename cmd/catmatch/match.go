package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/config"
	"catalog-matcher/internal/matching/model"
	"catalog-matcher/internal/matching/service"
)

type matchFlags struct {
	catalog    string
	boq        string
	configFile string
	asJSON     bool
	workers    int
	catalogHdr int
	boqHdr     int
	showAll    bool

	minConfidence float64
	maxResults    int
	maxPriceDev   float64
}

func newMatchCmd(rf *rootFlags) *cobra.Command {
	var f matchFlags
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match every BOQ line and summarise auto-mapped, review and failed lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, rf, f)
		},
	}
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Catalog file (.xlsx, .xls, .csv, .json, .yaml)")
	cmd.Flags().StringVar(&f.boq, "boq", "", "BOQ file (.xlsx, .xls, .csv, .json, .yaml)")
	cmd.Flags().StringVar(&f.configFile, "config", "", "TOML file with match settings")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the full batch result as JSON")
	cmd.Flags().IntVar(&f.workers, "workers", runtime.NumCPU(), "Parallel workers")
	cmd.Flags().IntVar(&f.catalogHdr, "catalog-header-row", 1, "Header row of the catalog sheet (1-based)")
	cmd.Flags().IntVar(&f.boqHdr, "boq-header-row", 1, "Header row of the BOQ sheet (1-based)")
	cmd.Flags().BoolVar(&f.showAll, "all", false, "Print every line, not only exceptions")
	cmd.Flags().Float64Var(&f.minConfidence, "min-confidence", 0, "Override min_confidence from --config")
	cmd.Flags().IntVar(&f.maxResults, "max-results", 0, "Override max_results from --config")
	cmd.Flags().Float64Var(&f.maxPriceDev, "max-price-deviation", 0, "Drop matches whose price deviates from the estimate by more than this ratio")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("boq")
	return cmd
}

func runMatch(cmd *cobra.Command, rf *rootFlags, f matchFlags) error {
	patch, err := config.LoadMatchConfig(f.configFile)
	if err != nil {
		return err
	}
	patch = patch.Merge(flagPatch(cmd, f))
	eng, err := loadEngine(rf, f.catalog, f.catalogHdr, service.WithWorkers(f.workers))
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	bcols := catalog.DefaultBOQColumns()
	bcols.HeaderRow = f.boqHdr
	items, err := catalog.LoadBOQ(f.boq, bcols)
	if err != nil {
		return fmt.Errorf("boq: %w", err)
	}

	res, err := eng.BatchMatch(cmd.Context(), items, eng.Config().Apply(patch), nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printBatch(out, res, f.showAll)
	return nil
}

// flagPatch - только явно заданные флаги; они перекрывают TOML.
func flagPatch(cmd *cobra.Command, f matchFlags) model.ConfigPatch {
	var p model.ConfigPatch
	fl := cmd.Flags()
	if fl.Changed("min-confidence") {
		p.MinConfidence = &f.minConfidence
	}
	if fl.Changed("max-results") {
		p.MaxResults = &f.maxResults
	}
	if fl.Changed("max-price-deviation") {
		p.MaxPriceDeviation = &f.maxPriceDev
	}
	return p
}

func printBatch(out io.Writer, res model.BatchResult, all bool) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOUTCOME\tBOQ\tBEST MATCH\tCONFIDENCE")
	for i, m := range res.Matches {
		if !all && m.Outcome == model.OutcomeAutoMapped {
			continue
		}
		best, conf := "-", "-"
		if len(m.Results) > 0 {
			r := m.Results[0]
			best = r.CatalogItem.Code + " " + r.CatalogItem.Description
			conf = fmt.Sprintf("%.0f%%", r.Confidence*100)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, m.Outcome, clip(m.BOQItem.Description, 48), clip(best, 48), conf)
	}
	_ = tw.Flush()

	s := res.Stats
	fmt.Fprintf(out, "\ntotal %d: auto-mapped %d, needs review %d, failed %d\n", s.Total, s.AutoMapped, s.NeedsReview, s.Failed)
	fmt.Fprintf(out, "confidence: high %d, medium %d, low %d\n", s.Confidence.High, s.Confidence.Medium, s.Confidence.Low)
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

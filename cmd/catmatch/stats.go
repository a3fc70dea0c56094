package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(rf *rootFlags) *cobra.Command {
	var (
		path      string
		headerRow int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Index a catalog file and print index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := loadEngine(rf, path, headerRow)
			if err != nil {
				return fmt.Errorf("catalog: %w", err)
			}
			st := eng.Stats()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			fmt.Fprintf(out, "items:       %d\n", st.TotalItems)
			fmt.Fprintf(out, "keywords:    %d\n", st.IndexedKeywords)
			fmt.Fprintf(out, "avg/item:    %.2f\n", st.AvgKeywordsPerItem)
			fmt.Fprintf(out, "fingerprint: %s\n", st.Fingerprint)
			fmt.Fprintf(out, "built:       %s\n", st.BuiltAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "catalog", "", "Catalog file (.xlsx, .xls, .csv, .json, .yaml)")
	cmd.Flags().IntVar(&headerRow, "header-row", 1, "Header row of the catalog sheet (1-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

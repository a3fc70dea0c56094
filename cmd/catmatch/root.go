package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/matching/model"
	"catalog-matcher/internal/matching/service"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:          "catmatch",
		Short:        "Match bill-of-quantities lines against a product catalog",
		SilenceUsage: true,
		Long: `catmatch loads a catalog snapshot (.xlsx, .xls, .csv, .json, .yaml) and a BOQ file,
runs the matching engine locally and prints the results.`,
	}
	root.PersistentFlags().BoolVarP(&rf.verbose, "verbose", "v", false, "Log engine stages to stderr")

	root.AddCommand(newMatchCmd(&rf), newStatsCmd(&rf))
	return root
}

func (rf *rootFlags) logger() zerolog.Logger {
	if !rf.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func loadEngine(rf *rootFlags, path string, headerRow int, opts ...service.Option) (*service.Engine, error) {
	cols := catalog.DefaultColumns()
	cols.HeaderRow = headerRow
	items, err := catalog.Load(path, cols)
	if err != nil {
		return nil, err
	}
	opts = append([]service.Option{service.WithLogger(rf.logger())}, opts...)
	return service.NewEngine(items, model.ConfigPatch{}, opts...), nil
}

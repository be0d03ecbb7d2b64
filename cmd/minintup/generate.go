package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/minintup/internal/testevents"
	"github.com/okian/minintup/pkg/logger"
)

func newGenerateCmd() *cobra.Command {
	cfg := testevents.DefaultConfig()
	var data bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic input records",
		Long: "Generates seeded synthetic events in the input layout read by run, " +
			"optionally repeating earlier event numbers to exercise deduplication.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			cfg.MC = !data
			if _, err := testevents.Run(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&cfg.NumEvents, "events", "n", cfg.NumEvents, "number of distinct events")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	f.Uint32Var(&cfg.RunNumber, "run-number", cfg.RunNumber, "run number")
	f.IntVar(&cfg.Year, "year", cfg.Year, "data-taking year")
	f.BoolVar(&data, "data", false, "omit simulation weights and truth fields")
	f.Float64Var(&cfg.Duplicates, "duplicates", cfg.Duplicates, "fraction of extra records repeating an earlier event")
	f.IntVar(&cfg.MaxJets, "max-jets", cfg.MaxJets, "maximum jets per event")
	f.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "output path (- for stdout)")
	return cmd
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/pipeline"
)

var (
	runURL      string
	runPages    int
	runProfile  string
	runDemo     bool
	runNoEnrich bool
	runWorkers  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape a directory and enrich the leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := loadRegistry()
		if err != nil {
			return eris.Wrap(err, "load profiles")
		}
		profile, err := resolveProfile(reg, runProfile, runURL)
		if err != nil {
			return err
		}
		zap.L().Info("selector profile resolved", zap.String("profile", profile.Name))

		if runWorkers > 0 {
			cfg.Pipeline.Workers = runWorkers
		}
		runner := buildRunner(runURL, runDemo)

		var leads []model.Lead
		stats, err := runner.Run(ctx, pipeline.Job{
			BaseURL:        runURL,
			TotalPages:     runPages,
			Profile:        profile,
			SkipEnrichment: runNoEnrich,
			Dedup:          cfg.Pipeline.Dedup,
		}, func(batch []model.Lead) {
			leads = append(leads, batch...)
		})
		if err != nil {
			return eris.Wrap(err, "run pipeline")
		}

		zap.L().Info("run stats",
			zap.Int("pages_ok", stats.PagesOK),
			zap.Int("pages_failed", stats.PagesFailed),
			zap.Int("leads", stats.LeadsFound),
			zap.Int("enriched", stats.LeadsEnriched),
			zap.Float64("enrichment_rate", stats.EnrichmentRate),
			zap.Duration("duration", stats.Duration))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	},
}

// resolveProfile picks an explicit profile by name, or matches the
// base URL host against the registry.
func resolveProfile(reg *extract.Registry, name, baseURL string) (extract.SelectorProfile, error) {
	if name == "" {
		return reg.Resolve(baseURL), nil
	}
	if p, ok := reg.ByName(name); ok {
		return p, nil
	}
	return extract.SelectorProfile{}, eris.Errorf("unknown selector profile %q", name)
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "directory base URL (required)")
	runCmd.Flags().IntVar(&runPages, "pages", 1, "number of directory pages to scrape")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "selector profile name (default: match by host)")
	runCmd.Flags().BoolVar(&runDemo, "demo", false, "use the synthetic offline source")
	runCmd.Flags().BoolVar(&runNoEnrich, "no-enrich", false, "skip the enrichment phase")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "enrichment workers (default from config)")
	runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
}

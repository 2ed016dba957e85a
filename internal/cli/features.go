package cli

import (
	"github.com/spf13/cobra"
)

var featuresRecalculate bool

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build and cache the train and test feature matrices",
	Long: `Load the corpus, split it into train and test pairs and compute one feature
vector per pair. Matrices are cached in .semrel/semrel.db and reused while the
corpus, the feature configuration and the feature schema are unchanged.

Examples:
  semrel features                  # Build or reuse cached matrices
  semrel features --recalculate    # Ignore the cache`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().BoolVar(&featuresRecalculate, "recalculate", false, "recompute features even when cached (default from config)")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	recalculate := featuresRecalculate || p.cfg.Features.Recalculate
	train, test, schema, err := p.matrices(cmd.Context(), recalculate)
	if err != nil {
		return err
	}

	p.printer.Success("%d train and %d test rows, %d columns (schema v%d %s)",
		train.Len(), test.Len(), schema.Len(), schema.Version, schema.Fingerprint())
	return nil
}

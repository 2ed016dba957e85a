package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vectorsForce bool

var vectorsCmd = &cobra.Command{
	Use:   "vectors",
	Short: "Load the embedding table into the cache",
	Long: `Read the word2vec text file named by embedding.path and store the vectors in
.semrel/semrel.db so later runs skip the text parse. The cache is rebuilt
whenever the file's size or modification time changes.

Examples:
  semrel vectors            # Cache if missing or stale
  semrel vectors --force    # Always re-read the text file`,
	Args: cobra.NoArgs,
	RunE: runVectors,
}

func init() {
	rootCmd.AddCommand(vectorsCmd)
	vectorsCmd.Flags().BoolVar(&vectorsForce, "force", false, "re-read the text file even when the cache is current")
}

func runVectors(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	if !p.cfg.Embedding.Cache {
		p.printer.Warning("embedding.cache is disabled; vectors will be read but not stored")
	}

	table, err := p.embeddings(vectorsForce)
	if err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}

	p.printer.Success("%d vectors of dimension %d ready", table.Len(), table.Dimension())
	return nil
}

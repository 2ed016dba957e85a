package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"semrel/config"
	"semrel/internal/adapter/report"
	"semrel/internal/adapter/submission"
)

var (
	submitRelatedness string
	submitRun         string
	submitCorrected   string
	submitOutput      string
	submitPrecision   int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Combine relatedness scores and entailment judgments into a submission",
	Long: `Write the shared-task submission file: one row per scored pair with its
entailment judgment and relatedness score, in ascending pair id.

Judgments come from the entailment run file; when a corrected run is given its
judgments take precedence for the pairs it covers.

Examples:
  semrel submit --run working/sick.run
  semrel submit --run working/sick.run --corrected sick_corr.run -o submission_corr.txt`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitRelatedness, "relatedness", "", "relatedness file written by train (default from config)")
	submitCmd.Flags().StringVar(&submitRun, "run", "", "entailment run file (required)")
	submitCmd.Flags().StringVar(&submitCorrected, "corrected", "", "corrected entailment run file")
	submitCmd.Flags().StringVarP(&submitOutput, "output", "o", "", "submission file (default from config)")
	submitCmd.Flags().IntVar(&submitPrecision, "precision", -1, "decimals for relatedness scores (-1 = shortest exact)")
	submitCmd.MarkFlagRequired("run")
}

func readFile[T any](path string, read func(*os.File) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	dir := GetRootDir()
	printer := report.NewPrinter(os.Stdout, os.Stderr)

	relPath := submitRelatedness
	if relPath == "" {
		relPath = cfg.Output.Predictions
	}
	scores, err := readFile(config.Resolve(dir, relPath), func(f *os.File) (map[int]float64, error) {
		return submission.ReadRelatedness(f)
	})
	if err != nil {
		return fmt.Errorf("failed to read relatedness: %w", err)
	}

	readRun := func(f *os.File) (map[int]string, error) {
		return submission.ReadRunFile(f)
	}
	fallback, err := readFile(config.Resolve(dir, submitRun), readRun)
	if err != nil {
		return fmt.Errorf("failed to read run file: %w", err)
	}
	corrected := map[int]string{}
	if submitCorrected != "" {
		corrected, err = readFile(config.Resolve(dir, submitCorrected), readRun)
		if err != nil {
			return fmt.Errorf("failed to read corrected run: %w", err)
		}
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	judgments, err := submission.MergeJudgments(ids, corrected, fallback)
	if err != nil {
		return err
	}

	output := submitOutput
	if output == "" {
		output = cfg.Output.Submission
	}
	output = config.Resolve(dir, output)
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	defer out.Close()

	writer := &submission.Writer{Precision: submitPrecision}
	if err := writer.Write(out, scores, judgments); err != nil {
		return fmt.Errorf("failed to write submission: %w", err)
	}

	overridden := 0
	for _, id := range ids {
		if _, ok := corrected[id]; ok {
			overridden++
		}
	}
	logger.Info("submission written", "pairs", len(ids), "corrected", overridden, "path", output)
	printer.Success("Wrote %d pairs to %s", len(ids), output)
	return nil
}

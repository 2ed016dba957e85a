package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semrel/internal/adapter/forest"
	"semrel/internal/adapter/submission"
	"semrel/internal/usecase"
)

var (
	predictModel  string
	predictOutput string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score the test pairs with a saved model",
	Long: `Load a model stored by "train --save-model" and write relatedness scores for
the test pairs. The model refuses feature matrices whose columns differ from
the ones it was trained on.

Examples:
  semrel predict --model latest`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringVarP(&predictModel, "model", "m", "", "name of the saved model (required)")
	predictCmd.Flags().StringVarP(&predictOutput, "output", "o", "", "relatedness output file (default from config)")
	predictCmd.MarkFlagRequired("model")
}

func runPredict(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	record, err := p.store.GetModel(predictModel)
	if err != nil {
		return err
	}
	f, err := forest.Unmarshal(record.Model)
	if err != nil {
		return err
	}
	model := usecase.NewTrainedModel(record.Columns, f)
	logger.Info("model loaded", "name", record.Name, "trained_by", record.RunID, "columns", len(record.Columns))

	_, test, _, err := p.matrices(cmd.Context(), p.cfg.Features.Recalculate)
	if err != nil {
		return err
	}
	predicted, err := model.Predict(test)
	if err != nil {
		return fmt.Errorf("model %q: %w", predictModel, err)
	}

	output := predictOutput
	if output == "" {
		output = p.cfg.Output.Predictions
	}
	output = p.path(output)
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	if err := submission.WriteRelatedness(out, test.PairIDs, predicted); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}

	p.printer.Success("Wrote %d predictions to %s", len(predicted), output)
	return nil
}

package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"semrel/internal/adapter/forest"
	"semrel/internal/adapter/report"
	"semrel/internal/adapter/store"
	"semrel/internal/adapter/submission"
	"semrel/internal/usecase"
)

var (
	trainRecalculate bool
	trainSaveModel   string
	trainOutput      string
	trainTrees       int
	trainSeed        int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the regressor, evaluate it and write test predictions",
	Long: `Fit the ensemble regressor on the train matrix, report MSE, R², Pearson and
Spearman on the held-out test matrix, and write one relatedness score per test
pair.

Examples:
  semrel train                          # Train with config defaults
  semrel train --trees 200 --seed 7     # Override hyperparameters
  semrel train --save-model latest      # Persist the model in the cache`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().BoolVar(&trainRecalculate, "recalculate", false, "recompute features even when cached")
	trainCmd.Flags().StringVar(&trainSaveModel, "save-model", "", "store the trained model under this name")
	trainCmd.Flags().StringVarP(&trainOutput, "output", "o", "", "relatedness output file (default from config)")
	trainCmd.Flags().IntVar(&trainTrees, "trees", 0, "number of trees (default from config)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", -1, "random seed (default from config)")
}

func forestConfig() forest.Config {
	rc := GetConfig().Regressor
	fc := forest.Config{
		Kind:            rc.Kind,
		Trees:           rc.Trees,
		MaxFeatures:     rc.MaxFeatures,
		MaxDepth:        rc.MaxDepth,
		MinSamplesSplit: rc.MinSamplesSplit,
		MinSamplesLeaf:  rc.MinSamplesLeaf,
		Bootstrap:       rc.Bootstrap,
		Seed:            rc.Seed,
		Workers:         rc.Workers,
	}
	if trainTrees > 0 {
		fc.Trees = trainTrees
	}
	if trainSeed >= 0 {
		fc.Seed = trainSeed
	}
	return fc
}

func runTrain(cmd *cobra.Command, args []string) error {
	regressor, err := forest.New(forestConfig(), logger)
	if err != nil {
		return err
	}

	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := cmd.Context()
	train, test, schema, err := p.matrices(ctx, trainRecalculate || p.cfg.Features.Recalculate)
	if err != nil {
		return err
	}

	trainer := usecase.NewTrainer(regressor, logger)
	p.printer.Info("Training on %d rows...", train.Len())
	model, err := trainer.Fit(ctx, train)
	if err != nil {
		return err
	}

	if test.Len() > 0 {
		eval, err := trainer.Evaluate(model, test)
		if err != nil {
			return err
		}
		p.printer.Header(fmt.Sprintf("Held-out evaluation (%d pairs)", eval.Rows))
		if err := report.WriteMetrics(os.Stdout, []report.Metric{
			{Name: "pearson", Value: eval.Pearson},
			{Name: "spearman", Value: eval.Spearman},
			{Name: "mse", Value: eval.MSE},
			{Name: "r2", Value: eval.R2},
		}); err != nil {
			return err
		}
	} else {
		p.printer.Warning("test split is empty; skipping evaluation")
	}

	if f, ok := model.Model().(*forest.Forest); ok {
		p.printer.Header("Feature importances")
		if err := report.WriteImportances(os.Stdout, schema.Columns, f.Importances()); err != nil {
			return err
		}

		if trainSaveModel != "" {
			data, err := f.MarshalModel()
			if err != nil {
				return err
			}
			err = p.store.PutModel(store.ModelRecord{
				Name:          trainSaveModel,
				RunID:         GetRunID(),
				SchemaVersion: schema.Version,
				Columns:       schema.Columns,
				CreatedAt:     time.Now().UTC(),
				Model:         data,
			})
			if err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}
			p.printer.Success("Model saved as %q", trainSaveModel)
		}
	}

	predicted, err := model.Predict(test)
	if err != nil {
		return err
	}

	output := trainOutput
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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/analysis"
	"github.com/formlens/formlens/internal/ingest"
)

var (
	ingestTitle string
	ingestDesc  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.csv>",
	Short: "Ingest a survey CSV export into a new session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}
		path := args[0]
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}

		registry, err := openRegistry()
		if err != nil {
			return err
		}
		classifier := analysis.NewHeuristicClassifier(classifierThresholds())
		pipeline := ingest.NewPipeline(classifier, newSummarizer(), registry)

		sess, warnings, err := pipeline.Run(cmd.Context(), filepath.Base(path), raw, ingest.Options{
			Title:          ingestTitle,
			Description:    ingestDesc,
			CorrelationCap: cfg.CorrelationCap,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Ingested %s as session %s (%d responses, %d columns)\n",
			sess.SourceName, sess.ID, sess.ParticipationCount, len(sess.Columns))
		if warnings.DefectRows > 0 {
			fmt.Printf("⚠ Skipped %d malformed row(s)\n", warnings.DefectRows)
		}
		if warnings.EmptyClassification != nil {
			fmt.Printf("⚠ %s; session has zero charts\n", warnings.EmptyClassification)
		}
		for _, f := range warnings.SummaryFailures {
			fmt.Printf("⚠ Column %q: description fell back (%s)\n", f.Label, f.Reason)
		}
		fmt.Println("Session is private; run `formlens publish` to make it visible")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "session title (defaults to the file name)")
	ingestCmd.Flags().StringVarP(&ingestDesc, "description", "d", "", "session description")
}

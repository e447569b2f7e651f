package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/analysis"
)

var showAll bool

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's columns, distributions, and descriptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		s, err := registry.Get(args[0], showAll)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", s.Title, s.ID)
		if s.Description != "" {
			fmt.Println(s.Description)
		}
		fmt.Printf("Source: %s  Responses: %d  Updated: %s\n",
			s.SourceName, s.ParticipationCount, s.LastUpdated.Format("2006-01-02 15:04"))
		if s.DefectCount > 0 {
			fmt.Printf("⚠ %d malformed source row(s) were skipped at ingestion\n", s.DefectCount)
		}

		for _, c := range s.Columns {
			marker := " "
			if c.IsVisualizable {
				marker = "✓"
			}
			fmt.Printf("\n[%s] %s (%s, %s)\n", marker, c.Label, c.ID, c.Kind)
			if !c.IsVisualizable {
				continue
			}
			d := analysis.Distribute(s.Responses, c)
			for _, e := range d.Entries {
				fmt.Printf("  %-30s %5d  %5.1f%%\n", e.Name, e.Count, e.Percentage)
			}
			if desc, ok := s.ColumnDescriptions[c.ID]; ok {
				fmt.Printf("  → %s\n", desc)
			}
		}

		if len(s.CorrelationData) > 0 {
			fmt.Println("\nCross-tabulations:")
			keys := make([]string, 0, len(s.CorrelationData))
			for k := range s.CorrelationData {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %s\n", k)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVarP(&showAll, "all", "a", false, "allow showing private sessions (administrative view)")
}

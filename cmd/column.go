package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/session"
)

var (
	columnShow bool
	columnHide bool
)

var columnCmd = &cobra.Command{
	Use:   "column <session-id> <column-id>",
	Short: "Override whether a column is visualized",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if columnShow == columnHide { // either both set or neither
			return fmt.Errorf("specify exactly one of --show or --hide")
		}
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		updated, err := registry.Update(args[0], session.Patch{
			ColumnVisibility: map[string]bool{args[1]: columnShow},
		})
		if err != nil {
			return err
		}
		for _, c := range updated.Columns {
			if c.ID == args[1] {
				state := "hidden"
				if c.IsVisualizable {
					state = "visualized"
				}
				fmt.Printf("✓ Column %q is now %s\n", c.Label, state)
				break
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnCmd)
	columnCmd.Flags().BoolVar(&columnShow, "show", false, "mark the column visualizable")
	columnCmd.Flags().BoolVar(&columnHide, "hide", false, "exclude the column from visualization")
}

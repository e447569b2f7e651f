package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formlens/formlens/internal/session"
)

var publishCmd = &cobra.Command{
	Use:   "publish <session-id>",
	Short: "Toggle a session between public and private",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		current, err := registry.Get(args[0], true)
		if err != nil {
			return err
		}
		next := !current.IsPublic
		updated, err := registry.Update(args[0], session.Patch{IsPublic: &next})
		if err != nil {
			return err
		}
		if updated.IsPublic {
			fmt.Printf("✓ Session %s is now public\n", updated.ID)
		} else {
			fmt.Printf("✓ Session %s is now private\n", updated.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

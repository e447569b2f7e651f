package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export the original CSV bytes stored with a session",
	Long:  `Export writes the source file exactly as it was ingested, for audit and reproducibility. Without --out the bytes go to stdout.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		raw, err := registry.Artifact(args[0], true)
		if err != nil {
			return err
		}
		if exportOut == "" {
			_, err := os.Stdout.Write(raw)
			return err
		}
		if err := os.WriteFile(exportOut, raw, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("✓ Exported %d bytes to %s\n", len(raw), exportOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write the CSV to this path instead of stdout")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions (public only unless --all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		sessions := registry.List(listAll)
		if len(sessions) == 0 {
			fmt.Println("(no sessions)")
			return nil
		}
		for _, s := range sessions {
			visibility := "private"
			if s.IsPublic {
				visibility = "public"
			}
			fmt.Printf("- %s  %s  [%s]  %d responses  updated %s\n",
				s.ID, s.Title, visibility, s.ParticipationCount, s.LastUpdated.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include private sessions (administrative view)")
}

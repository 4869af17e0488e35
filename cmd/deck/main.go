package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "deck",
	Short: "Deadline dashboard for team tasks",
	Long: `deck tracks tasks assigned to people, flags the ones that slipped past
their deadline, and drafts chasers for overdue work.

Run without a subcommand to open the dashboard.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUICmd(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.deck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print machine-readable JSON")

	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(personCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

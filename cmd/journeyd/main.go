package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "journeyd",
		Short: "journeyd - agent marketplace journey server",
		Long: `journeyd serves the journey log pipeline behind the agent marketplace:
an append-only per-journey history of chat turns, phases and tasks, a
projection of that history into a nested display view, and versioned
task mutations. Agents are seeded from a local mock catalog.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

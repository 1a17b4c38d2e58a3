package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/eoltracker/internal/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "eoltracker",
	Short:         "Track end-of-life dates of cloud services",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log loader activity to stderr")
	rootCmd.AddCommand(serveCmd, listCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// Package main provides the tripdata CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFile is set by the --config flag.
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tripdata",
	Short: "Batch pipeline for Citibike trip data",
	Long: `tripdata downloads published Citibike trip archives, normalizes their
drifting column names against a persistent schema registry, and writes
canonical parquet output partitioned by region and date.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "job.json", "job configuration file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(urlsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tripdata v0.2.0")
	},
}

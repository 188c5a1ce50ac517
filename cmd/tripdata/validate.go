// Validate command: lint a job file without running anything.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tripdata/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the job configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := loadJob(configFile)
		if err != nil {
			return err
		}
		issues := config.ValidateJob(job)
		for _, iss := range issues {
			fmt.Fprintln(os.Stderr, iss.Error())
		}
		if config.HasErrors(issues) {
			return fmt.Errorf("%s: configuration has errors", configFile)
		}
		fmt.Printf("%s: ok (%d warning(s))\n", configFile, len(issues))
		return nil
	},
}

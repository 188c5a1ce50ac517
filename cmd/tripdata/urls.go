// Urls command: print the archive URLs a run would download.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Print the archive URLs the configured job would download",
	Long: `Urls resolves the job's fetch configuration (years, months, regions, or
an explicit url_list file) and prints one archive URL per line. Useful for
piping into curl or auditing a backfill before running it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := loadJob(configFile)
		if err != nil {
			return err
		}
		urls, err := fetchURLs(job)
		if err != nil {
			return err
		}
		for _, u := range urls {
			fmt.Println(u)
		}
		return nil
	},
}

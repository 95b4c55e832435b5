// Package cli wires the caseflow command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "caseflow",
	Short: "AI narrative gateway for residential case documentation",
	Long: `caseflow serves the narrative generation API used by the case
management application: report summarization, behavioral insights and
report enhancement, with daily usage governance and local fallback.`,
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml)")
}

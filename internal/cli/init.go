package cli

import (
	"github.com/spf13/cobra"

	log "github.com/ridgeline/caseflow/internal/logging"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration file.

Refuses to overwrite an existing config unless --force is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := WriteDefaultConfig(cfgFile, forceInit); err != nil {
			log.Fatalf("Init failed: %v", err)
		}
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"os"

	"github.com/abenaws/opifacts/internal/selfupdate"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the installed binary with the latest version",
	Long: `Downloads the latest opifacts from the configured update URL to a temporary
file next to the installed binary, marks it executable, and atomically
replaces the installation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		installPath := cfg.ScriptLocation
		if installPath == "" {
			// Never installed through setup; update the running binary.
			self, exeErr := os.Executable()
			if exeErr != nil {
				return exeErr
			}
			installPath = self
			info("Install location not configured, updating the running binary at %s", installPath)
		}

		info("Updating opifacts from: %s", cfg.UpdateURL)

		u := &selfupdate.Updater{}
		if err := u.Update(cmd.Context(), cfg.UpdateURL, installPath); err != nil {
			return err
		}

		info("opifacts has been successfully updated.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

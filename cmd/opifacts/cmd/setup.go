package cmd

import (
	"fmt"
	"os"

	"github.com/abenaws/opifacts/internal/config"
	"github.com/abenaws/opifacts/internal/setup"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the interactive configuration wizard",
	Long: `Walks through the configuration: repository path, GitHub username, website
URL, update URL, and an optional installation of the binary into a PATH
directory. Can be rerun at any time; existing values are the starting point.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		wizard := &setup.Wizard{Prompter: setup.NewStdioPrompter(), Out: os.Stdout}
		newCfg, err := wizard.Run(*cfg)
		if err != nil {
			return err
		}

		if err := config.Save(path, &newCfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		detail("config written to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

package cmd

import (
	"os"

	"github.com/abenaws/opifacts/internal/git"
	"github.com/abenaws/opifacts/internal/publish"
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the latest changes from the repository",
	Long: `Normalizes the remote URL to the SSH form if needed, then pulls the latest
remote state into the local repository copy. Any failure is fatal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.SetupCompleted {
			return offerFirstRunSetup(path, cfg)
		}
		if err := requireUsableConfig(cfg); err != nil {
			return err
		}

		g := git.New(cfg.RepoPath)
		wf := &publish.PullWorkflow{
			Config: *cfg,
			Git:    g,
			Health: newChecker(g),
			Out:    os.Stdout,
		}

		return wf.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

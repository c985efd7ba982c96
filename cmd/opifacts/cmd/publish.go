package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/abenaws/opifacts/internal/artifact"
	"github.com/abenaws/opifacts/internal/config"
	"github.com/abenaws/opifacts/internal/git"
	"github.com/abenaws/opifacts/internal/history"
	"github.com/abenaws/opifacts/internal/publish"
	"github.com/abenaws/opifacts/internal/setup"
	"github.com/spf13/cobra"
)

var (
	publishYes    bool
	publishNoPush bool
)

var publishCmd = &cobra.Command{
	Use:   "publish <file|folder> [<file|folder>...]",
	Short: "Copy files into the repository, commit, and push",
	Long: `Copies each file (or the files directly inside each folder) into a new
uniquely named artifact folder in the repository, commits, verifies the
remote and SSH environment, and pushes. When the remote is not ready the
changes stay committed locally and the command still succeeds.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
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

	prompter := setup.NewStdioPrompter()
	confirm := func(reason string) bool {
		errorf("%s", reason)
		return prompter.Confirm("Continue with git push anyway?")
	}
	if publishYes {
		confirm = func(string) bool { return true }
	}

	g := git.New(cfg.RepoPath)
	wf := &publish.Workflow{
		Config:      *cfg,
		Git:         g,
		Health:      newChecker(g),
		Collector:   &artifact.Collector{},
		ConfirmPush: confirm,
		Now:         time.Now,
		Out:         os.Stdout,
		SkipPush:    publishNoPush,
	}

	result, err := wf.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	switch result.State {
	case publish.StateDone:
		detail("workflow finished in state %s", result.State)
	case publish.StatePartial:
		info("Changes committed locally but not pushed: %s", result.Reason)
		info("Push manually once the remote is ready, or rerun the publish.")
	}

	recordHistory(result)
	return nil
}

// recordHistory appends the publish to the local manifest. Failures here are
// warnings: the publish outcome is already decided.
func recordHistory(result *publish.Result) {
	path, err := history.DefaultPath()
	if err != nil {
		errorf("not recording publish history: %v", err)
		return
	}

	outcome := history.OutcomeCommittedOnly
	if result.Pushed() {
		outcome = history.OutcomePushed
	}

	entry := history.Entry{
		ID:          result.ArtifactID,
		URL:         result.PublicURL,
		Files:       result.Copied,
		Outcome:     outcome,
		PublishedAt: time.Now(),
	}
	if err := history.Record(path, entry); err != nil {
		errorf("not recording publish history: %v", err)
	}
}

// offerFirstRunSetup asks to run the wizard when setup has never completed.
// The original workload is not resumed afterwards; the operator reruns it.
func offerFirstRunSetup(path string, cfg *config.Config) error {
	info("opifacts hasn't been set up yet.")

	prompter := setup.NewStdioPrompter()
	if !prompter.Confirm("Would you like to run the setup now?") {
		return fmt.Errorf("setup aborted — run 'opifacts setup' when you're ready")
	}

	wizard := &setup.Wizard{Prompter: prompter, Out: os.Stdout}
	newCfg, err := wizard.Run(*cfg)
	if err != nil {
		return err
	}
	if err := config.Save(path, &newCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

func init() {
	publishCmd.Flags().BoolVar(&publishYes, "yes", false, "push without asking when authentication is uncertain")
	publishCmd.Flags().BoolVar(&publishNoPush, "no-push", false, "commit locally without pushing")
	rootCmd.AddCommand(publishCmd)
}

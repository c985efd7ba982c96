package cmd

import (
	"github.com/abenaws/opifacts/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously published artifacts",
	Long: `Shows the publish history recorded on this machine, newest first: artifact
identifier, when it was published, whether it was pushed, and the public URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := history.DefaultPath()
		if err != nil {
			return err
		}

		m, err := history.Load(path)
		if err != nil {
			return err
		}

		if len(m.Entries) == 0 {
			info("No publishes recorded yet.")
			return nil
		}

		shown := 0
		for i := len(m.Entries) - 1; i >= 0; i-- {
			if historyLimit > 0 && shown >= historyLimit {
				break
			}
			e := m.Entries[i]
			info("%s  %s  %s", e.PublishedAt.Format("2006-01-02 15:04"), e.Outcome, e.ID)
			if e.URL != "" {
				info("    %s", e.URL)
			}
			for _, f := range e.Files {
				detail("%s", f)
			}
			shown++
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most this many entries (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

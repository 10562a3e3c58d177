package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/logicguard/internal/cache"
	"github.com/ppiankov/logicguard/internal/pipeline"
	"github.com/ppiankov/logicguard/internal/store"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analysis runs",
	Long: `Every analyze and batch run is recorded in a local SQLite database
(store.path, default ~/.logicguard/history.db) unless --no-history is set.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStoreForHistory()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		runs, err := s.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tANALYZED\tQUALITY\tISSUES\tCRITICAL\tSOURCE")
		for _, r := range runs {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%d\t%s\n",
				r.ID, r.AnalyzedAt.Format("2006-01-02 15:04"), r.Quality, r.TotalIssues, r.CriticalIssues, r.Source)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the report of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStoreForHistory()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		run, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		renderer := pipeline.NewRenderer()
		if historyJSON {
			return renderer.RenderJSON(run.Report, "-")
		}
		fmt.Printf("Source:   %s\n", run.Source)
		if run.Title != "" {
			fmt.Printf("Title:    %s\n", run.Title)
		}
		fmt.Printf("Analyzed: %s\n", run.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
		for _, d := range run.Degraded {
			fmt.Printf("Degraded: %s\n", d)
		}
		fmt.Println()
		fmt.Print(pipeline.Markdown(run.Report))
		return nil
	},
}

func openStoreForHistory() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cache.ExpandHome(cfg.Store.Path))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return s, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show (0 for all)")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the JSON report instead of Markdown")
}

package cli

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rankedlist/internal/publish"
	"rankedlist/internal/results"
)

func newResultsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Read recorded trial responses",
	}
	cmd.AddCommand(newResultsListCmd(app))
	cmd.AddCommand(newResultsExportCmd(app))
	return cmd
}

func newResultsExportCmd(app *App) *cobra.Command {
	var to string
	var limit int
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write recorded responses as markdown (index.md + one page per trial)",
		Example: strings.TrimSpace(`
rankedlist results export --to ./report
rankedlist results export --to ./report --limit 50 --overwrite
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sink, err := results.Open(cmd.Context(), cfg.Results)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			recs, err := sink.List(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteRecords(recs, to, publish.WriteOptions{
				Overwrite:   overwrite,
				ScaleLabels: cfg.Trial.ScaleLabels,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to export (0 = all)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}

type resultRow struct {
	Seq      int64    `json:"seq"`
	TrialID  string   `json:"trial_id"`
	Recorded string   `json:"recorded"`
	Ago      string   `json:"ago"`
	TimedOut bool     `json:"timed_out"`
	RT       int64    `json:"rt"`
	Items    []string `json:"items"`
}

func newResultsListCmd(app *App) *cobra.Command {
	var limit int
	var full bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded responses, newest first",
		Example: strings.TrimSpace(`
rankedlist results list --limit 10
rankedlist results list --full --format yaml
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sink, err := results.Open(cmd.Context(), cfg.Results)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			recs, err := sink.List(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if full {
				return writeOut(cmd, app, map[string]any{"data": recs})
			}
			rows := make([]resultRow, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, resultRow{
					Seq:      r.Seq,
					TrialID:  r.Response.TrialID,
					Recorded: r.RecordedAt.UTC().Format("2006-01-02T15:04:05Z"),
					Ago:      humanize.Time(r.RecordedAt),
					TimedOut: r.Response.TimedOut,
					RT:       r.Response.RT,
					Items:    r.Response.Response,
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{
					"backend": cfg.Results.Backend,
					"count":   len(rows),
					"rt":      "ms",
				},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to show (0 = all)")
	cmd.Flags().BoolVar(&full, "full", false, "Print whole records, including slider and scale values")
	return cmd
}

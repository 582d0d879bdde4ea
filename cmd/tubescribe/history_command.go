package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tubescribe/internal/history"
	"tubescribe/internal/textutil"
)

const historyTitleWidth = 40

type historyView struct {
	RequestID  string    `json:"request_id"`
	URL        string    `json:"url"`
	SourceID   string    `json:"source_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Category   string    `json:"category,omitempty"`
	Language   string    `json:"language,omitempty"`
	FromCache  bool      `json:"from_cache"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently processed requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]historyView, 0, len(entries))
				for _, e := range entries {
					views = append(views, historyView{
						RequestID:  e.RequestID,
						URL:        e.URL,
						SourceID:   e.SourceID,
						Title:      e.Title,
						Category:   e.Category,
						Language:   e.Language,
						FromCache:  e.FromCache,
						Outcome:    e.Outcome,
						Error:      e.ErrorMessage,
						DurationMS: e.Duration.Milliseconds(),
						CreatedAt:  e.CreatedAt,
					})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No requests recorded yet")
				return nil
			}
			fmt.Fprint(out, renderTable(
				[]string{"When", "Outcome", "Source", "Category", "Lang", "Cached", "Title"},
				historyRows(entries),
				nil,
			))
			return nil
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Number of entries to show")
	historyCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
			return nil
		},
	}
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = e.URL
		}
		when := "unknown"
		if !e.CreatedAt.IsZero() {
			when = humanize.Time(e.CreatedAt)
		}
		rows = append(rows, []string{
			when,
			e.Outcome,
			e.SourceID,
			e.Category,
			e.Language,
			yesNo(e.FromCache),
			textutil.Truncate(title, historyTitleWidth),
		})
	}
	return rows
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.Paths.HistoryDB)
}

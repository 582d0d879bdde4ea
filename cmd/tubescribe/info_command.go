package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tubescribe/internal/services/ytdlp"
)

type infoView struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
	URL             string  `json:"url"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "Show video metadata without downloading anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			info, err := p.client.FetchInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			view := infoView{ID: info.ID, Title: info.Title, DurationSeconds: info.Duration, URL: info.WebpageURL}
			if asJSON {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:    %s\n", view.Title)
			fmt.Fprintf(out, "Duration: %s\n", formatDuration(info))
			fmt.Fprintf(out, "ID:       %s\n", view.ID)
			fmt.Fprintf(out, "URL:      %s\n", view.URL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func formatDuration(info ytdlp.VideoInfo) string {
	if info.Duration <= 0 {
		return "unknown"
	}
	return (time.Duration(info.Duration * float64(time.Second))).Round(time.Second).String()
}

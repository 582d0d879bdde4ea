package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tubescribe/internal/transcripts"
)

type cacheEntryView struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Bytes    int64     `json:"bytes"`
	Modified time.Time `json:"modified"`
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached transcripts",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached transcripts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := transcriptCache(ctx)
			if err != nil {
				return err
			}
			entries, err := cache.List()
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]cacheEntryView, 0, len(entries))
				for _, e := range entries {
					views = append(views, cacheEntryView{Name: e.Name, Path: e.Path, Bytes: e.Size, Modified: e.ModTime})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No cached transcripts in %s\n", cache.Dir())
				return nil
			}
			var total int64
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				total += e.Size
				rows = append(rows, []string{e.Name, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime)})
			}
			fmt.Fprint(out, renderTable([]string{"Name", "Size", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d transcripts, %s in %s\n", len(entries), humanize.Bytes(uint64(total)), cache.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a cached transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := transcriptCache(ctx)
			if err != nil {
				return err
			}
			text, err := cache.Read(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := transcriptCache(ctx)
			if err != nil {
				return err
			}
			removed, err := cache.Clear()
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached transcripts\n", removed)
			return nil
		},
	}
}

func transcriptCache(ctx *commandContext) (*transcripts.Cache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return transcripts.New(cfg.Paths.TranscriptsDir, logger), nil
}

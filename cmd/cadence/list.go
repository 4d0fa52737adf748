package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/cadence/internal/catalog"
	"github.com/satindergrewal/cadence/internal/config"
	"github.com/satindergrewal/cadence/internal/fixtures"
	"github.com/satindergrewal/cadence/internal/subscription"
)

func tracksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "Print the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := fixtures.Load(config.Load().SeedFile)
			if err != nil {
				return err
			}
			cat, err := seed.Catalog()
			if err != nil {
				return err
			}
			renderTracks(cmd.OutOrStdout(), cat.Tracks())
			return nil
		},
	}
}

func tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Print the subscription feature table",
		Run: func(cmd *cobra.Command, args []string) {
			renderTiers(cmd.OutOrStdout())
		},
	}
}

func renderTracks(w io.Writer, tracks []catalog.Track) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Artist", "Album", "Length", "Lyrics", "Video"})
	for _, tr := range tracks {
		t.AppendRow(table.Row{
			tr.ID, tr.Title, tr.Artist, tr.Album,
			catalog.FormatTime(tr.Duration),
			len(tr.Lyrics),
			tick(tr.VideoURL != ""),
		})
	}
	t.Render()
}

func renderTiers(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Tier", "Ads", "Lyrics", "Video", "AI Playlists", "Hi-Fi"})
	for _, tier := range subscription.Tiers() {
		f := subscription.FeaturesFor(tier)
		t.AppendRow(table.Row{f.Name, tick(f.Ads), tick(f.Lyrics), tick(f.Video), tick(f.AIPlaylists), tick(f.HiFiAudio)})
	}
	t.Render()
}

func tick(b bool) string {
	return lo.Ternary(b, "yes", "-")
}

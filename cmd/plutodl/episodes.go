package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Belphemur/PlutoDownloader/internal/client"
	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"
	"github.com/Belphemur/PlutoDownloader/internal/services"

	"github.com/spf13/cobra"
)

// episodeRow is the JSON shape of a listed episode
type episodeRow struct {
	Index int `json:"index"`
	models.Episode
	ThumbnailBytes int `json:"thumbnailBytes,omitempty"`
}

var errStreamWithThumbnails = errors.New("--stream cannot be combined with --thumbnails")

func newListCmd(opts *rootOptions) *cobra.Command {
	var withThumbnails, stream bool

	cmd := &cobra.Command{
		Use:   "list [catalog-url]",
		Short: "List the episodes of a series page",
		Long: `List the episodes found on a Pluto TV series page.

Examples:
  plutodl list https://pluto.tv/br/on-demand/series/o-show/
  plutodl list --thumbnails --json
  plutodl list --stream --json | jq -r .url`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogURL, err := catalogURLFrom(args)
			if err != nil {
				return err
			}

			if stream && withThumbnails {
				return errStreamWithThumbnails
			}

			c := newEpisodeClient(config.GetConfig())
			defer c.Close()

			if stream {
				return streamEpisodes(cmd, c, catalogURL, opts.jsonOutput)
			}

			episodes, err := c.LoadEpisodes(cmd.Context(), catalogURL)
			if err != nil {
				return err
			}
			rememberCatalogURL(catalogURL)

			var thumbnails map[string][]byte
			if withThumbnails {
				thumbnails = c.PrefetchThumbnails(cmd.Context(), episodes)
			}

			rows := make([]episodeRow, len(episodes))
			for i, ep := range episodes {
				rows[i] = episodeRow{Index: i + 1, Episode: ep, ThumbnailBytes: len(thumbnails[ep.ThumbnailURL])}
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			printEpisodesHuman(cmd.OutOrStdout(), rows, withThumbnails)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withThumbnails, "thumbnails", "t", false, "Also fetch episode thumbnails")
	cmd.Flags().BoolVar(&stream, "stream", false, "Print each episode as soon as it is delivered (one JSON object per line with --json)")
	return cmd
}

// streamEpisodes prints episodes in delivery order without collecting the whole list first.
func streamEpisodes(cmd *cobra.Command, c client.Client, catalogURL string, jsonOutput bool) error {
	w := cmd.OutOrStdout()
	count := 0
	for result := range c.StreamEpisodes(cmd.Context(), catalogURL) {
		if result.Err != nil {
			return result.Err
		}
		count++
		row := episodeRow{Index: count, Episode: result.Value}
		if jsonOutput {
			if err := printJSONLine(w, row); err != nil {
				return err
			}
			continue
		}
		if count == 1 {
			printEpisodesHeader(w)
		}
		printEpisodeRow(w, row, false)
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}
	rememberCatalogURL(catalogURL)
	if !jsonOutput {
		printEpisodesFooter(w, count)
	}
	return nil
}

func printEpisodesHuman(w io.Writer, rows []episodeRow, withThumbnails bool) {
	if len(rows) == 0 {
		printEpisodesFooter(w, 0)
		return
	}

	printEpisodesHeader(w)
	for _, r := range rows {
		printEpisodeRow(w, r, withThumbnails)
	}
	printEpisodesFooter(w, len(rows))
}

func printEpisodesHeader(w io.Writer) {
	fmt.Fprintf(w, "%-4s %-8s %-40s %s\n", "#", "EP", "TITLE", "FILE")
}

func printEpisodeRow(w io.Writer, r episodeRow, withThumbnails bool) {
	title := r.Title
	if withThumbnails && r.ThumbnailBytes == 0 {
		title += " (sem imagem)"
	}
	fmt.Fprintf(w, "%-4d T%02dE%02d   %-40s %s\n", r.Index, r.Season, r.Number, title, r.FileName)
}

// printEpisodesFooter prints the total, or the empty-list notice when nothing was found
func printEpisodesFooter(w io.Writer, count int) {
	if count == 0 {
		fmt.Fprintln(w, "Nenhum episódio encontrado")
		return
	}
	fmt.Fprintf(w, "\n%d episódios\n", count)
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [catalog-url] <file>",
		Short: "Save the episode links of a series page to a text file",
		Long: `Save the episode links of a series page to a UTF-8 text file.

Each episode is written as its title, description and URL followed by a blank line.

Examples:
  plutodl save https://pluto.tv/br/on-demand/series/o-show/ links.txt
  plutodl save links.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[len(args)-1]
			catalogURL, err := catalogURLFrom(args[:len(args)-1])
			if err != nil {
				return err
			}

			c := newEpisodeClient(config.GetConfig())
			defer c.Close()

			episodes, err := c.LoadEpisodes(cmd.Context(), catalogURL)
			if err != nil {
				return err
			}
			rememberCatalogURL(catalogURL)
			if err := services.SaveLinkList(path, episodes); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Lista salva em: %s (%d episódios)\n", path, len(episodes))
			return nil
		},
	}
}

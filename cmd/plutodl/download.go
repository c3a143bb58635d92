package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"
	"github.com/Belphemur/PlutoDownloader/internal/services"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

// queueEventJSON is the JSON line written per queue event with --json
type queueEventJSON struct {
	RunID     string `json:"runId"`
	Kind      string `json:"kind"`
	Index     int    `json:"index"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Succeeded bool   `json:"succeeded,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	var method, outputDir, selection string

	cmd := &cobra.Command{
		Use:   "download [catalog-url]",
		Short: "Download the episodes of a series page one at a time",
		Long: `Download the episodes of a series page one at a time.

A failed episode is reported and the queue moves on to the next one.
Ctrl-C stops the queue once the current episode is done.

Examples:
  plutodl download https://pluto.tv/br/on-demand/series/o-show/
  plutodl download --select 1,3,5-7 --method yt-dlp --out ~/Videos`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogURL, err := catalogURLFrom(args)
			if err != nil {
				return err
			}

			cfg := config.GetConfig()
			c := newEpisodeClient(cfg)
			defer c.Close()

			episodes, err := c.LoadEpisodes(cmd.Context(), catalogURL)
			if err != nil {
				return err
			}
			rememberCatalogURL(catalogURL)

			indices, err := parseSelection(selection, len(episodes))
			if err != nil {
				return err
			}

			requests := make([]models.DownloadRequest, 0, len(indices))
			for _, i := range indices {
				requests = append(requests, models.NewDownloadRequest(episodes[i], outputDir))
			}
			return runQueue(cmd, opts, requests, method)
		},
	}

	cfg := config.GetConfig()
	cmd.Flags().StringVarP(&method, "method", "m", cfg.Download.Method, "Download tool (ffmpeg, yt-dlp, streamlink)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", cfg.Download.OutputDir, "Output directory")
	cmd.Flags().StringVarP(&selection, "select", "s", "", "Episodes to download by list number, e.g. 1,3,5-7 (default all)")
	return cmd
}

func newDirectCmd(opts *rootOptions) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "direct <stream-url> <output-file>",
		Short: "Download a single stream URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(cmd, opts, []models.DownloadRequest{models.NewDirectDownloadRequest(args[0], args[1])}, method)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", config.GetConfig().Download.Method, "Download tool (ffmpeg, yt-dlp, streamlink)")
	return cmd
}

func newMethodsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the supported download tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			methods := models.DownloadMethods()
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), methods)
			}
			current := config.GetConfig().Download.Method
			for _, m := range methods {
				marker := " "
				if m.String() == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, m)
			}
			return nil
		},
	}
}

// runQueue downloads requests in order and reports every event as it arrives.
func runQueue(cmd *cobra.Command, opts *rootOptions, requests []models.DownloadRequest, method string) error {
	if len(requests) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nada para baixar")
		return nil
	}

	runner := newQueueRunner(config.GetConfig())
	failed, cancelled := 0, false
	var printErr error

	err := services.RunWithCallback(cmd.Context(), runner, requests, method, func(ev models.QueueEvent) {
		if ev.IsOutcome() && !ev.Succeeded {
			if ev.Cancelled {
				cancelled = true
			} else {
				failed++
				sentry.CaptureException(ev.Err)
			}
		}
		if err := printQueueEvent(cmd.OutOrStdout(), ev, len(requests), opts.jsonOutput); err != nil && printErr == nil {
			printErr = err
		}
	})
	if err != nil {
		return err
	}
	if printErr != nil {
		return printErr
	}

	switch {
	case cancelled:
		return errors.New("download queue cancelled")
	case failed > 0:
		return fmt.Errorf("%d of %d downloads failed", failed, len(requests))
	}
	return nil
}

func printQueueEvent(w io.Writer, ev models.QueueEvent, total int, jsonOutput bool) error {
	if jsonOutput {
		line := queueEventJSON{
			RunID:     ev.RunID,
			Kind:      ev.Kind.String(),
			Index:     ev.Index,
			Title:     ev.Title,
			Message:   ev.Message,
			Succeeded: ev.Succeeded,
			Cancelled: ev.Cancelled,
		}
		if ev.Err != nil {
			line.Error = ev.Err.Error()
		}
		return printJSONLine(w, line)
	}

	switch {
	case ev.Index < 0:
		_, err := fmt.Fprintln(w, ev.Message)
		return err
	case ev.IsOutcome() && !ev.Succeeded && ev.Err != nil:
		_, err := fmt.Fprintf(w, "[%d/%d] %s (%v)\n", ev.Index+1, total, ev.Message, ev.Err)
		return err
	default:
		_, err := fmt.Fprintf(w, "[%d/%d] %s\n", ev.Index+1, total, ev.Message)
		return err
	}
}

// parseSelection turns a 1-based list such as "1,3,5-7" into sorted, distinct
// 0-based indices below n. An empty selection picks everything.
func parseSelection(selection string, n int) ([]int, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	picked := make([]bool, n)
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid selection %q", part)
			}
		}
		if first < 1 || last > n || first > last {
			return nil, fmt.Errorf("selection %q out of range 1-%d", part, n)
		}
		for i := first; i <= last; i++ {
			picked[i-1] = true
		}
	}

	var indices []int
	for i, ok := range picked {
		if ok {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/vidvault/internal/app"
	"github.com/NamanBalaji/vidvault/internal/engine"
	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/status"
	"github.com/NamanBalaji/vidvault/internal/ui"
	"github.com/NamanBalaji/vidvault/internal/video"
)

const progressBarWidth = 30

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download <id|title>...",
		Short: "Download videos for offline viewing",
		Long: `Download one or more catalog videos and follow their progress.

While running, SIGUSR1 pauses every download (app sent to background),
SIGUSR2 resumes them, and Ctrl-C cancels the remaining downloads.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			entries, err := resolveEntries(cmd.Context(), a, args)
			if err != nil {
				return err
			}

			titles := make([]string, 0, len(entries))
			for _, e := range entries {
				titles = append(titles, fmt.Sprintf("%q", e.Title))
			}

			if !confirm(cmd, opts.yes, "Download "+strings.Join(titles, ", ")+"?") {
				fmt.Fprintln(out, ui.SubtleStyle.Render("Nothing downloaded."))
				return nil
			}

			var pending []string

			for _, e := range entries {
				if err := a.Coordinator.RequestDownload(cmd.Context(), e); err != nil {
					printError(cmd.ErrOrStderr(), err)
					continue
				}

				pending = append(pending, e.ID)
			}

			if len(pending) == 0 {
				return errors.New("no download could be started")
			}

			return follow(cmd.Context(), a, pending, out, cmd.ErrOrStderr())
		},
	}
}

// resolveEntries finds each argument in the cached catalog, refreshing once
// if something is missing.
func resolveEntries(ctx context.Context, a *app.App, args []string) ([]video.Entry, error) {
	refreshed := false
	entries := make([]video.Entry, 0, len(args))

	for _, arg := range args {
		e, err := a.FindEntry(arg)
		if err != nil && !refreshed {
			refreshed = true

			if _, rerr := a.Catalog.Refresh(ctx); rerr != nil {
				logger.Warnf("Catalog refresh before download failed: %v", rerr)
			}

			e, err = a.FindEntry(arg)
		}

		if err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// follow prints progress until every pending download reaches a terminal
// state, reacting to lifecycle signals on the way.
func follow(ctx context.Context, a *app.App, pending []string, out, errOut io.Writer) error {
	sigs, stop := lifecycleSignals()
	defer stop()

	waiting := make(map[string]bool, len(pending))
	for _, id := range pending {
		waiting[id] = true
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var failed int

	for len(waiting) > 0 {
		select {
		case ev := <-a.Coordinator.Events():
			if !waiting[ev.ID] || !ev.Kind.Terminal() {
				continue
			}

			delete(waiting, ev.ID)

			switch ev.Kind {
			case engine.Completed:
				fmt.Fprintln(out, ui.SuccessStyle.Render(fmt.Sprintf("✓ %s downloaded (%s)", ev.ID, ev.Record.FileSize)))

				if ev.Err != nil {
					printError(errOut, ev.Err)
				}
			case engine.Cancelled:
				fmt.Fprintln(out, ui.StatusCancelled.Render(fmt.Sprintf("✗ %s cancelled", ev.ID)))
			case engine.Failed:
				failed++

				printError(errOut, ev.Err)
			}

		case sig := <-sigs:
			handleSignal(ctx, a, sig, waiting, errOut)

		case <-ticker.C:
			printProgress(a, waiting, out)

		case <-ctx.Done():
			cancelAll(a, waiting, errOut)
			return ctx.Err()
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d download(s) failed", failed)
	}

	return nil
}

func handleSignal(ctx context.Context, a *app.App, sig os.Signal, waiting map[string]bool, errOut io.Writer) {
	switch lifecycleAction(sig) {
	case actionBackground:
		if err := a.Background(ctx); err != nil {
			logger.Warnf("Pausing downloads: %v", err)
		}

		fmt.Fprintln(errOut, ui.StatusPaused.Render("paused"))
	case actionForeground:
		if err := a.Foreground(ctx); err != nil {
			logger.Warnf("Resuming downloads: %v", err)
		}

		fmt.Fprintln(errOut, ui.StatusActive.Render("resumed"))
	case actionStop:
		cancelAll(a, waiting, errOut)
	}
}

func cancelAll(a *app.App, waiting map[string]bool, errOut io.Writer) {
	for id := range waiting {
		if err := a.Coordinator.CancelDownload(id); err != nil {
			printError(errOut, err)
			delete(waiting, id)
		}
	}
}

func printProgress(a *app.App, waiting map[string]bool, out io.Writer) {
	ids := make([]string, 0, len(waiting))
	for id := range waiting {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		s := a.Coordinator.Status(id)
		if !status.IsInFlight(s) {
			// finished; its event is on the way
			continue
		}

		f, _ := a.Coordinator.Progress(id)
		fmt.Fprintln(out, ui.ProgressLine(id, progressBarWidth, f, s))
	}
}

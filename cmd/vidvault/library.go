package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/ui"
	"github.com/NamanBalaji/vidvault/internal/video"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id|title>",
		Aliases: []string{"rm"},
		Short:   "Delete a downloaded video and its file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			e, err := a.FindEntry(args[0])
			if err != nil {
				return err
			}

			rec, ok := a.Coordinator.Record(e.ID)
			if !ok {
				return errors.Wrap("delete download", e.ID, errors.ErrNotFound)
			}

			if !confirm(cmd, opts.yes, fmt.Sprintf("Delete %q (%s)?", rec.Title, rec.FileSize)) {
				fmt.Fprintln(out, ui.SubtleStyle.Render("Nothing deleted."))
				return nil
			}

			if err := a.Coordinator.DeleteDownloaded(e.ID); err != nil {
				return err
			}

			fmt.Fprintln(out, ui.SuccessStyle.Render(fmt.Sprintf("Deleted %s", rec.Title)))

			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <id|title>",
		Short: "Resolve the URI to play a video from",
		Long:  "Prints the local file for downloaded videos, otherwise the streaming URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)

			e, err := resolveEntries(cmd.Context(), a, args[:1])
			if err != nil {
				return err
			}

			uri, err := a.Coordinator.Play(cmd.Context(), e[0])
			if errors.Is(err, errors.ErrFileMissing) {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.WarningStyle.Render(
					"The downloaded file is gone. Run 'vidvault prune' to remove it from the list, "+
						"or delete it and download again."))
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), uri)

			return nil
		},
	}
}

func newPruneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove downloaded videos whose files are missing from the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			if !confirm(cmd, opts.yes, "Remove every downloaded video whose file is missing?") {
				return nil
			}

			removed, err := a.Coordinator.PruneMissing()
			if err != nil {
				return err
			}

			if len(removed) == 0 {
				fmt.Fprintln(out, ui.SubtleStyle.Render("Every downloaded file is present."))
				return nil
			}

			for _, id := range removed {
				fmt.Fprintln(out, ui.WarningStyle.Render("removed "+id))
			}

			return nil
		},
	}
}

func newStorageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Show free and total storage for downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			info := a.Coordinator.StorageInfo(cmd.Context())

			records := a.Coordinator.Downloaded()

			var used int64
			for _, r := range records {
				used += r.SizeBytes
			}

			rows := [][]string{
				{"Free", fmt.Sprintf("%.2f GB", info.FreeGB())},
				{"Total", fmt.Sprintf("%.2f GB", info.TotalGB())},
				{"Downloads", fmt.Sprintf("%d videos, %s", len(records), video.FormatSize(used))},
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"Storage", ""}, rows))

			if a.Coordinator.LowOnSpace(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.WarningStyle.Render("Not enough free space for new downloads."))
			}

			return nil
		},
	}
}

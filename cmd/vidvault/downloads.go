package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/vidvault/internal/filesystem"
	"github.com/NamanBalaji/vidvault/internal/ui"
	"github.com/NamanBalaji/vidvault/internal/video"
)

func newDownloadsCmd() *cobra.Command {
	var (
		search string
		sortBy string
	)

	cmd := &cobra.Command{
		Use:     "downloads",
		Aliases: []string{"offline"},
		Short:   "List downloaded videos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			by, ok := video.ParseSortBy(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort %q (title, author, duration, date, views)", sortBy)
			}

			records := video.SortRecords(video.FilterRecords(a.Coordinator.Downloaded(), search), by)
			if len(records) == 0 {
				fmt.Fprintln(out, ui.SubtleStyle.Render("No downloaded videos. Use 'vidvault download <id>' to save one."))
				return nil
			}

			fs := filesystem.NewOSFileSystem()
			rows := make([][]string, 0, len(records))

			for _, r := range records {
				file := ui.SuccessStyle.Render("ok")
				if exists, err := fs.FileExists(filesystem.PathFromURI(r.URI)); err != nil || !exists {
					file = ui.ErrorStyle.Render("missing")
				}

				rows = append(rows, []string{
					r.ID,
					ui.Truncate(r.Title, 40),
					ui.Truncate(r.Author, 24),
					r.FileSize,
					r.DownloadDate.Local().Format("2006-01-02 15:04"),
					file,
				})
			}

			fmt.Fprintln(out, ui.TitleStyle.Render(fmt.Sprintf("Downloaded (%d videos)", len(records))))
			fmt.Fprintln(out, ui.Table([]string{"ID", "Title", "Author", "Size", "Downloaded", "File"}, rows))

			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by title or author")
	cmd.Flags().StringVar(&sortBy, "sort", string(video.SortDate), "sort by title, author, duration, date or views")

	return cmd
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/vidvault/internal/ui"
	"github.com/NamanBalaji/vidvault/internal/video"
)

func newCatalogCmd() *cobra.Command {
	var (
		search   string
		sortBy   string
		trending bool
	)

	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"videos", "ls"},
		Short:   "Refresh and list the video catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)

			by, ok := video.ParseSortBy(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort %q (title, author, duration, date, views)", sortBy)
			}

			res, err := a.Catalog.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if res.FromCache {
				fmt.Fprintln(out, ui.WarningStyle.Render(fmt.Sprintf("Showing cached catalog (%v)", res.FetchErr)))
			}

			listings := video.SortListings(video.FilterListings(res.Listings, search), by)
			if trending {
				listings = video.Trending(listings)
			}

			if len(listings) == 0 {
				fmt.Fprintln(out, ui.SubtleStyle.Render("No videos match."))
				return nil
			}

			rows := make([][]string, 0, len(listings))
			for _, l := range listings {
				rows = append(rows, []string{
					l.ID,
					ui.Truncate(l.Title, 40),
					ui.Truncate(l.Author, 24),
					l.Duration,
					l.Views,
					ui.StatusLabel(a.Coordinator.Status(l.ID)),
				})
			}

			fmt.Fprintln(out, ui.TitleStyle.Render(fmt.Sprintf("Catalog (%d videos)", len(listings))))
			fmt.Fprintln(out, ui.Table([]string{"ID", "Title", "Author", "Duration", "Views", "Status"}, rows))
			fmt.Fprintln(out, ui.SubtleStyle.Render("Last synced: "+formatSync(res.LastSync)))

			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by title or author")
	cmd.Flags().StringVar(&sortBy, "sort", string(video.SortTitle), "sort by title, author, duration, date or views")
	cmd.Flags().BoolVar(&trending, "trending", false, "show only the most viewed videos")

	return cmd
}

func formatSync(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return t.Local().Format("2006-01-02 15:04")
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/songdex"
)

var flagSearchK int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy search artists, albums and song titles",
	Long: `Search ranks every artist, album and song title by Jaro-Winkler similarity to
the query. Without a query the catalog is listed in browse order.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&flagSearchK, "limit", "k", 0, "Number of results (default search_limit, or 40)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	query := strings.Join(args, " ")
	results := lib.Search(cmd.Context(), query, flagSearchK)
	if len(results) == 0 {
		printInfo(fmt.Sprintf("no matches for %q", query))
		return nil
	}

	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "SCORE\tKIND\tNAME\tIN")
	for _, r := range results {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\n", r.Score, r.Item.Kind, r.Item.Name(), parentOf(r.Item))
	}
	return tw.Flush()
}

// parentOf names what an item belongs to.
func parentOf(it songdex.Item) string {
	switch it.Kind {
	case songdex.ItemAlbum:
		return it.Artist
	case songdex.ItemSong:
		return fmt.Sprintf("%s / %s (%d.%02d)", it.Artist, it.Album, it.Disc, it.Track)
	default:
		return ""
	}
}

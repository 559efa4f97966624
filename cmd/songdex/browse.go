package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [artist [album]]",
	Short: "List artists, an artist's albums, or an album's songs",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	tw := newTable(os.Stdout)
	switch len(args) {
	case 0:
		for _, a := range lib.Artists() {
			fmt.Fprintln(tw, a)
		}
	case 1:
		albums := lib.Albums(args[0])
		if len(albums) == 0 {
			return fmt.Errorf("unknown artist %q", args[0])
		}
		fmt.Fprintln(tw, "ALBUM\tSONGS")
		for _, a := range albums {
			fmt.Fprintf(tw, "%s\t%d\n", a.Title, len(a.Songs))
		}
	default:
		songs := lib.Songs(args[0], args[1])
		if len(songs) == 0 {
			return fmt.Errorf("unknown album %q by %q", args[1], args[0])
		}
		fmt.Fprintln(tw, "POS\tDISC\tTRACK\tTITLE")
		for _, s := range songs {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", s.Position, s.Disc, s.Track, s.Title)
		}
	}
	return tw.Flush()
}

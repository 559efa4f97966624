package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <position>",
	Short: "Print the song stored at a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	pos, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[0])
	}

	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	s, err := lib.Song(pos)
	if err != nil {
		return err
	}

	tw := newTable(os.Stdout)
	fmt.Fprintf(tw, "artist\t%s\n", s.Artist)
	fmt.Fprintf(tw, "album\t%s\n", s.Album)
	fmt.Fprintf(tw, "title\t%s\n", s.Title)
	fmt.Fprintf(tw, "disc\t%d\n", s.Disc)
	fmt.Fprintf(tw, "track\t%d\n", s.Track)
	fmt.Fprintf(tw, "gain\t%.4f\n", s.Gain)
	fmt.Fprintf(tw, "path\t%s\n", s.Path)
	return tw.Flush()
}

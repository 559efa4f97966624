package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagVolume       uint8
	flagOutputDevice string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the saved player settings",
	Args:  cobra.NoArgs,
	RunE:  runSettings,
}

func init() {
	settingsCmd.Flags().Uint8Var(&flagVolume, "volume", 0, "Set the volume")
	settingsCmd.Flags().StringVar(&flagOutputDevice, "output-device", "", "Set the output device")
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, _ []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	st, err := lib.LoadSettings()
	if err != nil {
		return err
	}

	changed := false
	if cmd.Flags().Changed("volume") {
		st.Volume = flagVolume
		changed = true
	}
	if cmd.Flags().Changed("output-device") {
		st.OutputDevice = flagOutputDevice
		changed = true
	}
	if changed {
		if err := lib.SaveSettings(st); err != nil {
			return err
		}
	}

	tw := newTable(os.Stdout)
	fmt.Fprintf(tw, "volume\t%d\n", st.Volume)
	fmt.Fprintf(tw, "output device\t%s\n", st.OutputDevice)
	fmt.Fprintf(tw, "music folder\t%s\n", st.MusicFolder)
	fmt.Fprintf(tw, "queue\t%d songs, at %d, %.1fs elapsed\n", len(st.Queue), st.QueueIndex, st.Elapsed)
	return tw.Flush()
}

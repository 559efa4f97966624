package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/songdex"
)

var flagScanIncremental bool

var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Rebuild the library from a music folder",
	Long: `Rebuild the library from the audio files under folder. Without an argument
the folder of the previous scan, or music_folder from the config, is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&flagScanIncremental, "incremental", false, "Only read files changed since the last scan")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	st, err := lib.LoadSettings()
	if err != nil {
		return err
	}

	folder := cfg.MusicFolder
	if st.MusicFolder != "" {
		folder = st.MusicFolder
	}
	if len(args) == 1 {
		folder = args[0]
	}
	if folder == "" {
		return errors.New("no music folder given and none configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := lib.Rescan(ctx, folder, songdex.ScanOptions{Incremental: flagScanIncremental})
	if err != nil {
		return err
	}

	switch res.Status {
	case songdex.ScanFileInUse:
		printWarn("another scan is running, nothing changed")
		return nil
	case songdex.ScanCompletedWithErrors:
		for _, msg := range res.Errors {
			printErr(msg)
		}
		printWarn(fmt.Sprintf("%d songs indexed, %d files skipped", res.Songs, len(res.Errors)))
	default:
		printOK(fmt.Sprintf("%d songs indexed", res.Songs))
	}
	if res.Reused > 0 {
		printInfo(fmt.Sprintf("%d unchanged files reused", res.Reused))
	}

	st.MusicFolder = folder
	return lib.SaveSettings(st)
}

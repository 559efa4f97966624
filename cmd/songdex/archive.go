package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/songdex"
)

var flagExportCompression string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the library to a compressed archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the library with an exported archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportCompression, "compression", "", "none, lz4 or zstd (default from config)")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	name := flagExportCompression
	if name == "" {
		name = cfg.Compression
	}
	c, err := songdex.ParseCompression(name)
	if err != nil {
		return err
	}

	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := lib.Export(w, c); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printOK(fmt.Sprintf("%d songs exported to %s (%s)", lib.Len(), args[0], c))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	res, err := lib.Import(cmd.Context(), bufio.NewReader(f))
	if err != nil {
		return err
	}
	if res.Status == songdex.ScanFileInUse {
		printWarn("a scan is running, nothing changed")
		return nil
	}
	printOK(fmt.Sprintf("%d songs imported", res.Songs))
	return nil
}

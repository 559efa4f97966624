package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/songdex"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Decode every record of the library store",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(*cobra.Command, []string) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Verify(); err != nil {
		var ce *songdex.CorruptionError
		if errors.As(err, &ce) {
			printErr(fmt.Sprintf("record %d, byte %d: %s", ce.Record, ce.Offset, ce.Reason))
		}
		return err
	}
	printOK(fmt.Sprintf("%d records ok", lib.Len()))
	return nil
}

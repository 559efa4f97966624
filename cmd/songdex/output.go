package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Icon semantics:
//   ✓  success
//   ✗  error (written to stderr)
//   ⚠  warning
//   ~  neutral info

func printOK(msg string)   { fmt.Printf("  ✓  %s\n", msg) }
func printWarn(msg string) { fmt.Printf("  ⚠  %s\n", msg) }
func printInfo(msg string) { fmt.Printf("  ~  %s\n", msg) }
func printErr(msg string)  { fmt.Fprintf(os.Stderr, "  ✗  %s\n", msg) }

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

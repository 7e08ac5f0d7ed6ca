package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sigreer/mbedls/internal/detect"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Discover and print attached boards",
	Long: `Discover attached boards and print them.

A board is listed when its hardware id is found in the disk listing and both
its mount point and serial port resolve. Boards whose id matches no known
platform are listed last with platform "not detected" when their disk
descriptor names mbed. Use --partial to keep boards missing a mount point or
serial port.`,
	Run: runList,
}

func init() {
	addListFlags(listCmd)
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "table", "Output format (table, json)")
	cmd.Flags().Bool("json", false, "Output as JSON (same as -o json)")
	cmd.Flags().Bool("partial", false, "Include boards missing a mount point or serial port")
	cmd.Flags().BoolP("quiet", "q", false, "Print only mount points")
}

func runList(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("output")
	jsonOut, _ := cmd.Flags().GetBool("json")
	partial, _ := cmd.Flags().GetBool("partial")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if jsonOut {
		format = "json"
	}

	cfg, log := setup()
	defer log.Sync()

	var opts []detect.Option
	if partial {
		opts = append(opts, detect.WithPartial())
	}

	records, err := discoverBoards(context.Background(), cfg, runtime.GOOS, log, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering boards: %v\n", err)
		os.Exit(1)
	}

	if err := printRecords(os.Stdout, records, format, quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printRecords(w io.Writer, records []detect.Record, format string, quiet bool) error {
	if quiet {
		detect.PrintQuiet(w, records)
		return nil
	}

	switch format {
	case "json":
		return detect.PrintJSON(w, records)
	case "table", "":
		detect.PrintTable(w, records)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use table or json)", format)
	}
}

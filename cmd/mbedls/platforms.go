package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sigreer/mbedls/internal/detect"
	"github.com/sigreer/mbedls/internal/platforms"
	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Show the hardware-id table",
	Long: `Print the platform name to hardware-id prefix table used for
recognition. The built-in table is used unless platforms_file or --platforms
names another one.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonOut, _ := cmd.Flags().GetBool("json")

		cfg, log := setup()
		defer log.Sync()

		table := platforms.Load(cfg.PlatformsFile, log)
		if err := printPlatforms(os.Stdout, table, jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	platformsCmd.Flags().Bool("json", false, "Output as JSON")
}

func printPlatforms(w io.Writer, table detect.Table, jsonOut bool) error {
	if jsonOut {
		if table == nil {
			table = detect.Table{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	}

	if len(table) == 0 {
		fmt.Fprintln(w, "No platforms loaded")
		return nil
	}

	fmt.Fprintf(w, "%-24s %s\n", "PLATFORM", "ID PREFIXES")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, name := range table.Platforms() {
		fmt.Fprintf(w, "%-24s %s\n", name, strings.Join(table[name], ", "))
	}
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Total: %d platforms, %d prefixes\n", len(table), table.Len())
	return nil
}

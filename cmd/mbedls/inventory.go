package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sigreer/mbedls/internal/db"
	"github.com/sigreer/mbedls/internal/detect"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the board inventory database",
	Long: `Manage the persistent board inventory database.

The inventory remembers every board that has been discovered on this host,
where it was last mounted and when it was attached or detached.`,
}

var inventorySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record currently attached boards in the inventory",
	Long: `Discover attached boards and update the inventory database.

This command:
  - Adds boards seen for the first time
  - Marks boards that are no longer attached as missing
  - Records attach, detach, move and identify events`,
	Run: runInventorySync,
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known boards",
	Run:   runInventoryList,
}

var inventoryEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent board events",
	Run:   runInventoryEvents,
}

func init() {
	inventoryCmd.AddCommand(inventorySyncCmd)
	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryEventsCmd)

	inventorySyncCmd.Flags().Bool("partial", false, "Also record boards missing a mount point or serial port")
	inventorySyncCmd.Flags().Bool("json", false, "Output the sync summary as JSON")

	inventoryListCmd.Flags().Bool("json", false, "Output as JSON")
	inventoryListCmd.Flags().String("state", "", "Filter by state (present, missing)")

	inventoryEventsCmd.Flags().Int("limit", 50, "Maximum number of events to show")
	inventoryEventsCmd.Flags().String("target", "", "Only show events for this hardware id")
}

func openDB(path string) *db.DB {
	database, err := db.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	return database
}

func runInventorySync(cmd *cobra.Command, args []string) {
	partial, _ := cmd.Flags().GetBool("partial")
	jsonOut, _ := cmd.Flags().GetBool("json")

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

	database := openDB(cfg.Database)
	defer database.Close()

	res, err := database.Sync(records, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing inventory: %v\n", err)
		os.Exit(1)
	}
	log.Info("Inventory synced",
		zap.String("database", database.Path()),
		zap.Int("seen", res.Seen),
		zap.Int("added", res.Added),
		zap.Int("detached", res.Detached),
	)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(res)
		return
	}
	printSyncResult(os.Stdout, res)
}

func printSyncResult(w io.Writer, res *db.SyncResult) {
	fmt.Fprintf(w, "Sync complete: %d boards attached\n", res.Seen)
	fmt.Fprintf(w, "  New:        %d\n", res.Added)
	fmt.Fprintf(w, "  Reattached: %d\n", res.Reattached)
	fmt.Fprintf(w, "  Moved:      %d\n", res.Moved)
	fmt.Fprintf(w, "  Identified: %d\n", res.Identified)
	fmt.Fprintf(w, "  Detached:   %d\n", res.Detached)
}

func runInventoryList(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	stateFilter, _ := cmd.Flags().GetString("state")

	if stateFilter != "" && stateFilter != db.StatePresent && stateFilter != db.StateMissing {
		fmt.Fprintf(os.Stderr, "Error: invalid state %q (use present or missing)\n", stateFilter)
		os.Exit(1)
	}

	cfg, log := setup()
	defer log.Sync()

	database := openDB(cfg.Database)
	defer database.Close()

	boards, err := database.ListBoards(stateFilter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying boards: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(boards)
		return
	}

	if len(boards) == 0 {
		fmt.Println("No boards in inventory. Run 'mbedls inventory sync' to populate.")
		return
	}

	printBoards(os.Stdout, boards)

	total, present, missing, _ := database.BoardCount()
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("Total: %d | Present: %d | Missing: %d\n", total, present, missing)
}

func printBoards(w io.Writer, boards []*db.BoardRecord) {
	fmt.Fprintf(w, "%-26s %-16s %-8s %-24s %-14s %s\n", "TARGET ID", "PLATFORM", "STATE", "MOUNT POINT", "SERIAL PORT", "LAST SEEN")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, b := range boards {
		fmt.Fprintf(w, "%-26s %-16s %-8s %-24s %-14s %s\n",
			b.TargetID,
			orDash(b.PlatformName),
			strings.ToUpper(b.CurrentState),
			orDash(b.MountPoint),
			orDash(b.SerialPort),
			b.LastSeen.Local().Format("2006-01-02 15:04:05"),
		)
	}
}

func runInventoryEvents(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	target, _ := cmd.Flags().GetString("target")

	cfg, log := setup()
	defer log.Sync()

	database := openDB(cfg.Database)
	defer database.Close()

	var events []*db.BoardEvent
	var err error
	if target != "" {
		events, err = database.BoardEvents(target, limit)
	} else {
		events, err = database.RecentEvents(limit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}

	printEvents(os.Stdout, events)
}

func printEvents(w io.Writer, events []*db.BoardEvent) {
	fmt.Fprintf(w, "%-20s %-11s %-26s %-20s %s\n", "TIMESTAMP", "TYPE", "TARGET ID", "OLD", "NEW")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range events {
		fmt.Fprintf(w, "%-20s %-11s %-26s %-20s %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.EventType,
			e.TargetID,
			orDash(e.OldValue),
			orDash(e.NewValue),
		)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

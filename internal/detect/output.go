package detect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PrintJSON outputs the records as a JSON array
func PrintJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// PrintTable outputs the records as a formatted table
func PrintTable(w io.Writer, records []Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No boards found")
		return
	}

	fmt.Fprintf(w, "%-18s %-24s %-16s %s\n", "PLATFORM", "MOUNT POINT", "SERIAL PORT", "TARGET ID")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, r := range records {
		fmt.Fprintf(w, "%-18s %-24s %-16s %s\n",
			orUnknown(r.PlatformName),
			orUnknown(r.MountPoint),
			orUnknown(r.SerialPort),
			orUnknown(r.TargetID),
		)
	}
}

// PrintQuiet outputs only the mount points
func PrintQuiet(w io.Writer, records []Record) {
	for _, r := range records {
		if r.MountPoint != nil {
			fmt.Fprintln(w, *r.MountPoint)
		}
	}
}

func orUnknown(s *string) string {
	if v := deref(s); v != "" {
		return v
	}
	return "unknown"
}

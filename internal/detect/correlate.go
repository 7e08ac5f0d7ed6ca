package detect

import (
	"sort"
	"strings"
)

// mbedMarker flags a disk descriptor as an mbed board even when its id is unknown
const mbedMarker = "mbed"

// Option changes how Discover builds records
type Option func(*options)

type options struct {
	partial bool
}

// WithPartial keeps boards whose mount point or serial port could not be
// resolved; the missing fields are left nil.
func WithPartial() Option {
	return func(o *options) { o.partial = true }
}

// diskID is one extracted disk id with the line it came from
type diskID struct {
	id   string
	line string
	pos  int
}

// Discover correlates raw disk, serial and mount listings into board records.
// Recognized boards come first, then boards whose id is not in the table but
// whose descriptor mentions mbed. Within each group records follow the order
// of l.Disks.
func Discover(l Listings, table Table, d Dialect, opts ...Option) ([]Record, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ids := collectDiskIDs(l.Disks, d)
	idx := table.invert()

	recognized := make([]Record, 0, len(ids))
	var orphans []Record

	for _, di := range ids {
		if e, ok := idx.match(di.id); ok {
			if rec, ok := resolve(di, e.platform, l, d, o); ok {
				recognized = append(recognized, rec)
			}
			continue
		}

		if !strings.Contains(strings.ToLower(di.line), mbedMarker) {
			continue
		}
		if rec, ok := resolve(di, NotDetected, l, d, o); ok {
			orphans = append(orphans, rec)
		}
	}

	return append(recognized, orphans...), nil
}

// collectDiskIDs extracts ids from disk lines. A later line with the same id
// replaces the earlier one; the result is ordered by the surviving line.
func collectDiskIDs(disks []string, d Dialect) []diskID {
	byID := make(map[string]diskID)
	for i, line := range disks {
		id, ok := d.ExtractID(line)
		if !ok {
			continue
		}
		byID[id] = diskID{id: id, line: line, pos: i}
	}

	ids := make([]diskID, 0, len(byID))
	for _, di := range byID {
		ids = append(ids, di)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].pos < ids[j].pos })
	return ids
}

// resolve joins a disk id with its mount point and serial port
func resolve(di diskID, platform string, l Listings, d Dialect, o options) (Record, bool) {
	mount, hasMount := d.MountPoint(d.DeviceName(di.line), l.Mounts)
	port, hasPort := d.SerialPort(di.id, l.Serials)

	if !o.partial && !(hasMount && hasPort) {
		return Record{}, false
	}

	return Record{
		MountPoint:     ptr(mount),
		TargetID:       ptr(di.id),
		SerialPort:     ptr(port),
		PlatformName:   ptr(platform),
		DiskDescriptor: di.line,
	}, true
}

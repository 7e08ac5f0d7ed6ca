package detect

import (
	"fmt"
	"sort"
	"strings"
)

// Table maps a platform name to the hardware-id prefixes that identify it.
// A prefix matches an id when it appears anywhere in the id.
type Table map[string][]string

// Validate checks the table for entries that would make matching meaningless
func (t Table) Validate() error {
	for platform, prefixes := range t {
		if strings.TrimSpace(platform) == "" {
			return fmt.Errorf("%w: empty platform name", ErrMalformedTable)
		}
		for _, p := range prefixes {
			if p == "" {
				return fmt.Errorf("%w: empty prefix for platform %q", ErrMalformedTable, platform)
			}
		}
	}
	return nil
}

// Platforms returns the platform names in sorted order
func (t Table) Platforms() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of prefixes across all platforms
func (t Table) Len() int {
	n := 0
	for _, prefixes := range t {
		n += len(prefixes)
	}
	return n
}

// prefixIndex is the inverted table, longest prefix first
type prefixIndex []prefixEntry

type prefixEntry struct {
	prefix   string
	platform string
}

// invert builds the prefix -> platform index.
// A prefix listed under several platforms goes to the smallest platform name.
// Entries are ordered longest prefix first, then lexicographically.
func (t Table) invert() prefixIndex {
	owner := make(map[string]string)
	for _, platform := range t.Platforms() {
		for _, p := range t[platform] {
			if _, taken := owner[p]; !taken {
				owner[p] = platform
			}
		}
	}

	idx := make(prefixIndex, 0, len(owner))
	for p, platform := range owner {
		idx = append(idx, prefixEntry{prefix: p, platform: platform})
	}
	sort.Slice(idx, func(i, j int) bool {
		if len(idx[i].prefix) != len(idx[j].prefix) {
			return len(idx[i].prefix) > len(idx[j].prefix)
		}
		return idx[i].prefix < idx[j].prefix
	})
	return idx
}

// match returns the winning entry for id: the longest prefix, then the one
// found earliest in id, then the lexicographically smallest
func (idx prefixIndex) match(id string) (prefixEntry, bool) {
	best, bestAt := -1, 0
	for i, e := range idx {
		if best >= 0 && len(e.prefix) < len(idx[best].prefix) {
			break
		}
		at := strings.Index(id, e.prefix)
		if at < 0 {
			continue
		}
		if best < 0 || at < bestAt {
			best, bestAt = i, at
		}
	}
	if best < 0 {
		return prefixEntry{}, false
	}
	return idx[best], true
}

// Match returns the platform and prefix that identify id.
// The longest matching prefix wins; among equal lengths the one closest to
// the start of id wins.
func (t Table) Match(id string) (platform, prefix string, ok bool) {
	e, ok := t.invert().match(id)
	return e.platform, e.prefix, ok
}

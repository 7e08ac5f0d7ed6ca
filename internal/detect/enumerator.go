package detect

import (
	"context"
	"fmt"
)

// Enumerator lists the raw OS device state for one platform
type Enumerator interface {
	Name() string
	Capabilities() Capabilities
	Dialect() Dialect
	Enumerate(ctx context.Context) (Listings, error)
}

// Capabilities describes what an enumerator instance can do. It is fixed
// when the enumerator is constructed.
type Capabilities struct {
	os             []string
	serialFallback bool
}

// NewCapabilities builds a capability set for the given operating systems
func NewCapabilities(serialFallback bool, goos ...string) Capabilities {
	return Capabilities{
		os:             append([]string(nil), goos...),
		serialFallback: serialFallback,
	}
}

// OS returns a copy of the supported operating systems
func (c Capabilities) OS() []string {
	return append([]string(nil), c.os...)
}

// Supports reports whether goos is one of the supported systems
func (c Capabilities) Supports(goos string) bool {
	for _, s := range c.os {
		if s == goos {
			return true
		}
	}
	return false
}

// SerialFallback reports whether serial ports can be listed without by-id links
func (c Capabilities) SerialFallback() bool {
	return c.serialFallback
}

// Run enumerates devices with e and correlates them against table
func Run(ctx context.Context, e Enumerator, table Table, opts ...Option) ([]Record, error) {
	l, err := e.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s enumeration failed: %w", e.Name(), err)
	}
	return Discover(l, table, e.Dialect(), opts...)
}

package detect

import "errors"

// NotDetected is the platform name given to boards that look like mbed devices
// but whose hardware id matches no known prefix.
const NotDetected = "not detected"

var (
	// ErrMalformedTable is returned when the hardware-id table has an empty
	// platform name or an empty prefix
	ErrMalformedTable = errors.New("malformed hardware-id table")

	// ErrInvalidDialect is returned when a dialect is missing a pattern
	ErrInvalidDialect = errors.New("invalid dialect")
)

// Record is one discovered board
type Record struct {
	MountPoint   *string `json:"mount_point"`
	TargetID     *string `json:"target_id"`
	SerialPort   *string `json:"serial_port"`
	PlatformName *string `json:"platform_name"`

	// DiskDescriptor is the raw disk line the record was built from
	DiskDescriptor string `json:"-"`
}

// HardwareID returns the target id, or "" if unknown
func (r Record) HardwareID() string {
	if r.TargetID == nil {
		return ""
	}
	return *r.TargetID
}

// Platform returns the platform name, or "" if unknown
func (r Record) Platform() string {
	if r.PlatformName == nil {
		return ""
	}
	return *r.PlatformName
}

// Orphan reports whether the board was seen but its id is not in the table
func (r Record) Orphan() bool {
	return r.PlatformName != nil && *r.PlatformName == NotDetected
}

// Listings holds the raw descriptors produced by one enumeration
type Listings struct {
	Disks   []string
	Serials []string
	Mounts  []string
}

// ptr is a helper to create a pointer to a string
func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref returns the pointed-to string or ""
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

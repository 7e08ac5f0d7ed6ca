package detect

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect is the pattern set used to read one platform's raw listings
type Dialect struct {
	Name string

	// LinkPattern captures the link text of a disk or serial line in group 1
	LinkPattern *regexp.Regexp

	// IDPattern captures the hardware id from the link text in group 1
	IDPattern *regexp.Regexp

	// MountPattern captures the device (group 1) and mount path (group 2)
	MountPattern *regexp.Regexp

	// SerialPrefix is prepended to the resolved serial device name
	SerialPrefix string

	// FoldCase compares hardware ids case-insensitively when joining serial ports
	FoldCase bool
}

// LinuxDialect reads `/dev/*/by-id` link lines and mount(8) style lines, e.g.
//
//	usb-MBED_microcontroller_0240000032044e45-0:0 -> ../../sdb
//	/dev/sdb on /media/MBED type vfat (rw,nosuid)
func LinuxDialect() Dialect {
	return Dialect{
		Name:         "linux",
		LinkPattern:  regexp.MustCompile(`(usb-[0-9a-zA-Z_-]*_[0-9a-zA-Z]*-.*$)`),
		IDPattern:    regexp.MustCompile(`usb-[0-9a-zA-Z_-]*_([0-9a-zA-Z]*)-.*`),
		MountPattern: regexp.MustCompile(`^(\S+) on (.+?) type \S+`),
		SerialPrefix: "/dev/",
	}
}

// WindowsDialect reads MountedDevices and COM port lines, e.g.
//
//	_??_USBSTOR#Disk&Ven_MBED&Prod_Microcontroller&Rev_1.0#0240000032044e45&0# -> E:
//	E: on E:
//	USB\VID_0D28&PID_0204\0240000032044e45 -> COM3
func WindowsDialect() Dialect {
	return Dialect{
		Name:         "windows",
		LinkPattern:  regexp.MustCompile(`^(.+)$`),
		IDPattern:    regexp.MustCompile(`([0-9A-Fa-f]{10,36})`),
		MountPattern: regexp.MustCompile(`^(\S+) on (\S+)`),
		FoldCase:     true,
	}
}

// Validate reports a dialect that cannot be used for matching
func (d Dialect) Validate() error {
	switch {
	case d.LinkPattern == nil:
		return fmt.Errorf("%w: %q has no link pattern", ErrInvalidDialect, d.Name)
	case d.IDPattern == nil:
		return fmt.Errorf("%w: %q has no id pattern", ErrInvalidDialect, d.Name)
	case d.MountPattern == nil:
		return fmt.Errorf("%w: %q has no mount pattern", ErrInvalidDialect, d.Name)
	}
	return nil
}

// Link returns the link text of a raw line
func (d Dialect) Link(line string) (string, bool) {
	m := d.LinkPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// ExtractID returns the hardware id carried by a disk or serial line
func (d Dialect) ExtractID(line string) (string, bool) {
	link, ok := d.Link(line)
	if !ok {
		return "", false
	}
	m := d.IDPattern.FindStringSubmatch(link)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// DeviceName resolves a link line to the device node name it points at.
// "usb-X_123-0:0 -> ../../sdb" becomes "sdb"; text without a path
// separator is returned unchanged.
func (d Dialect) DeviceName(line string) string {
	link, ok := d.Link(line)
	if !ok {
		link = strings.TrimSpace(line)
	}

	target := link
	if i := strings.LastIndex(link, "->"); i >= 0 {
		target = strings.TrimSpace(link[i+2:])
	}
	return lastElem(target)
}

// MountPoint finds the mount path for device name dev
func (d Dialect) MountPoint(dev string, mounts []string) (string, bool) {
	if dev == "" {
		return "", false
	}
	for _, line := range mounts {
		m := d.MountPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
		if len(m) < 3 || m[2] == "" {
			continue
		}
		if lastElem(m[1]) == dev {
			return m[2], true
		}
	}
	return "", false
}

// SerialPort finds the serial port belonging to hardware id
func (d Dialect) SerialPort(id string, serials []string) (string, bool) {
	for _, line := range serials {
		sid, ok := d.ExtractID(line)
		if !ok || !d.sameID(sid, id) {
			continue
		}
		if name := d.DeviceName(line); name != "" {
			return d.SerialPrefix + name, true
		}
	}
	return "", false
}

func (d Dialect) sameID(a, b string) bool {
	if d.FoldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// lastElem returns the text after the final / or \
func lastElem(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

//go:build windows

package sources

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
	"golang.org/x/sys/windows/registry"

	"github.com/sigreer/mbedls/internal/detect"
)

const mountedDevicesKey = `SYSTEM\MountedDevices`

func init() {
	Register("windows", NewWindows)
}

// WindowsSource reads drive letters from the registry and COM ports from the
// serial port enumerator
type WindowsSource struct {
	opts Options
	log  *zap.Logger
	caps detect.Capabilities
}

// NewWindows creates the Windows enumerator
func NewWindows(opts Options, log *zap.Logger) detect.Enumerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &WindowsSource{
		opts: opts.withDefaults(),
		log:  log.With(zap.String("source", "windows")),
		caps: detect.NewCapabilities(false, "windows"),
	}
}

// Name returns the enumerator name
func (s *WindowsSource) Name() string { return "windows" }

// Capabilities returns the fixed capability set
func (s *WindowsSource) Capabilities() detect.Capabilities { return s.caps }

// Dialect returns the Windows pattern set
func (s *WindowsSource) Dialect() detect.Dialect { return detect.WindowsDialect() }

// Enumerate gathers the three raw listings
func (s *WindowsSource) Enumerate(ctx context.Context) (detect.Listings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var l detect.Listings

	drives, err := s.mountedUSBDrives()
	if err != nil {
		return l, fmt.Errorf("failed to read %s: %w", mountedDevicesKey, err)
	}

	letters := make([]string, 0, len(drives))
	for letter := range drives {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	for _, letter := range letters {
		l.Disks = append(l.Disks, drives[letter]+" -> "+letter)
		if _, err := os.Stat(letter + `\`); err == nil {
			l.Mounts = append(l.Mounts, letter+" on "+letter)
		}
	}
	if err := ctx.Err(); err != nil {
		return l, err
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		s.log.Warn("Serial port enumeration failed", zap.Error(err))
	}
	for _, p := range ports {
		if !p.IsUSB || p.SerialNumber == "" {
			continue
		}
		l.Serials = append(l.Serials, fmt.Sprintf(`USB\VID_%s&PID_%s\%s -> %s`, p.VID, p.PID, p.SerialNumber, p.Name))
	}

	s.log.Debug("Enumeration complete",
		zap.Int("disks", len(l.Disks)),
		zap.Int("serials", len(l.Serials)),
		zap.Int("mounts", len(l.Mounts)),
	)
	return l, ctx.Err()
}

// mountedUSBDrives maps drive letters ("E:") to their USB storage device path
func (s *WindowsSource) mountedUSBDrives() (map[string]string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, mountedDevicesKey, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, err
	}

	drives := make(map[string]string)
	for _, name := range names {
		data, _, err := k.GetBinaryValue(name)
		if err != nil {
			s.log.Debug("Skipping unreadable value", zap.String("name", name), zap.Error(err))
			continue
		}

		if letter, path, ok := usbStorageDrive(name, data); ok {
			drives[letter] = path
		}
	}
	return drives, nil
}

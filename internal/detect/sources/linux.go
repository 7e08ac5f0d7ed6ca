//go:build linux

package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/mountinfo"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"github.com/sigreer/mbedls/internal/detect"
)

func init() {
	Register("linux", NewLinux)
}

// LinuxSource lists /dev/disk/by-id, /dev/serial/by-id and the mountinfo table
type LinuxSource struct {
	opts      Options
	log       *zap.Logger
	caps      detect.Capabilities
	listPorts func() ([]*enumerator.PortDetails, error)
}

// NewLinux creates the Linux enumerator
func NewLinux(opts Options, log *zap.Logger) detect.Enumerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LinuxSource{
		opts:      opts.withDefaults(),
		log:       log.With(zap.String("source", "linux")),
		caps:      detect.NewCapabilities(true, "linux"),
		listPorts: enumerator.GetDetailedPortsList,
	}
}

// Name returns the enumerator name
func (s *LinuxSource) Name() string { return "linux" }

// Capabilities returns the fixed capability set
func (s *LinuxSource) Capabilities() detect.Capabilities { return s.caps }

// Dialect returns the Linux pattern set
func (s *LinuxSource) Dialect() detect.Dialect { return detect.LinuxDialect() }

// Enumerate gathers the three raw listings
func (s *LinuxSource) Enumerate(ctx context.Context) (detect.Listings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var l detect.Listings
	var err error

	l.Disks, err = s.readLinks(filepath.Join(s.opts.DevRoot, "disk", "by-id"))
	if err != nil && !os.IsNotExist(err) {
		return l, fmt.Errorf("failed to list disks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return l, err
	}

	serialDir := filepath.Join(s.opts.DevRoot, "serial", "by-id")
	l.Serials, err = s.readLinks(serialDir)
	switch {
	case os.IsNotExist(err):
		l.Serials = s.serialFallback()
	case err != nil:
		return l, fmt.Errorf("failed to list serial ports: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return l, err
	}

	l.Mounts, err = s.readMounts()
	if err != nil {
		return l, fmt.Errorf("failed to read mount table: %w", err)
	}

	s.log.Debug("Enumeration complete",
		zap.Int("disks", len(l.Disks)),
		zap.Int("serials", len(l.Serials)),
		zap.Int("mounts", len(l.Mounts)),
	)
	return l, ctx.Err()
}

// readLinks returns "name -> target" for every symlink in dir, sorted by name
func (s *LinuxSource) readLinks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		target, err := os.Readlink(filepath.Join(dir, entry.Name()))
		if err != nil {
			s.log.Debug("Skipping unreadable link", zap.String("link", entry.Name()), zap.Error(err))
			continue
		}
		lines = append(lines, entry.Name()+" -> "+target)
	}
	return lines, nil
}

// serialFallback builds by-id style lines from USB serial port details when
// udev has not created /dev/serial/by-id
func (s *LinuxSource) serialFallback() []string {
	ports, err := s.listPorts()
	if err != nil {
		s.log.Warn("Serial port enumeration failed", zap.Error(err))
		return nil
	}

	var lines []string
	for _, p := range ports {
		if !p.IsUSB || p.SerialNumber == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("usb-%s_%s_%s-if00 -> %s", p.VID, p.PID, p.SerialNumber, p.Name))
	}
	return lines
}

// readMounts renders the mountinfo table as mount(8) output lines,
// keeping only the configured filesystem types
func (s *LinuxSource) readMounts() ([]string, error) {
	file, err := os.Open(s.opts.MountsFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var filter mountinfo.FilterFunc
	if len(s.opts.MountTypes) > 0 {
		filter = mountinfo.FSTypeFilter(s.opts.MountTypes...)
	}

	mounts, err := mountinfo.GetMountsFromReader(file, filter)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(mounts))
	for _, m := range mounts {
		lines = append(lines, fmt.Sprintf("%s on %s type %s (%s)", m.Source, m.Mountpoint, m.FSType, m.Options))
	}
	return lines, nil
}

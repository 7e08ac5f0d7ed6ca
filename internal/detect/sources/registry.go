package sources

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sigreer/mbedls/internal/detect"
)

// ErrUnsupportedOS is returned when no enumerator is registered for an OS
var ErrUnsupportedOS = errors.New("no device enumerator for this operating system")

// Defaults for Options fields left empty
const (
	DefaultDevRoot    = "/dev"
	DefaultMountsFile = "/proc/self/mountinfo"
	DefaultTimeout    = 5 * time.Second
)

// DefaultMountTypes are the filesystems mbed boards present their drive as
var DefaultMountTypes = []string{"vfat"}

// Options configures an enumerator
type Options struct {
	// DevRoot is the device tree root holding disk/by-id and serial/by-id
	DevRoot string
	// MountsFile is the kernel mountinfo table
	MountsFile string
	// MountTypes limits mount entries to these filesystem types; nil means default, empty means all
	MountTypes []string
	// Timeout bounds one enumeration
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.DevRoot == "" {
		o.DevRoot = DefaultDevRoot
	}
	if o.MountsFile == "" {
		o.MountsFile = DefaultMountsFile
	}
	if o.MountTypes == nil {
		o.MountTypes = DefaultMountTypes
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Constructor builds an enumerator
type Constructor func(opts Options, log *zap.Logger) detect.Enumerator

var (
	mu           sync.RWMutex
	constructors = make(map[string]Constructor)
)

// Register makes an enumerator available for goos
func Register(goos string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()
	constructors[goos] = c
}

// New creates the enumerator registered for goos
func New(goos string, opts Options, log *zap.Logger) (detect.Enumerator, error) {
	mu.RLock()
	c, ok := constructors[goos]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return c(opts.withDefaults(), log), nil
}

// Supported lists the operating systems with a registered enumerator
func Supported() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(constructors))
	for goos := range constructors {
		names = append(names, goos)
	}
	sort.Strings(names)
	return names
}

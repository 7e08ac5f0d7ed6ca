package sources

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sigreer/mbedls/internal/detect"
)

func TestRegistry(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skipf("no enumerator for %s", runtime.GOOS)
	}
	assert.Contains(t, Supported(), runtime.GOOS)

	e, err := New(runtime.GOOS, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, e.Name())

	_, err = New("plan9", Options{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedOS)
}

func TestRegistry_Register(t *testing.T) {
	Register("testos", func(opts Options, log *zap.Logger) detect.Enumerator {
		return &stubEnumerator{opts: opts}
	})
	t.Cleanup(func() {
		mu.Lock()
		delete(constructors, "testos")
		mu.Unlock()
	})

	assert.Contains(t, Supported(), "testos")

	e, err := New("testos", Options{DevRoot: "/tmp/dev"}, nil)
	require.NoError(t, err)
	stub := e.(*stubEnumerator)
	assert.Equal(t, "/tmp/dev", stub.opts.DevRoot)
	assert.Equal(t, DefaultMountsFile, stub.opts.MountsFile)
}

type stubEnumerator struct {
	opts Options
}

func (s *stubEnumerator) Name() string { return "testos" }

func (s *stubEnumerator) Capabilities() detect.Capabilities {
	return detect.NewCapabilities(false, "testos")
}

func (s *stubEnumerator) Dialect() detect.Dialect { return detect.LinuxDialect() }

func (s *stubEnumerator) Enumerate(ctx context.Context) (detect.Listings, error) {
	return detect.Listings{}, nil
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultDevRoot, o.DevRoot)
	assert.Equal(t, DefaultMountsFile, o.MountsFile)
	assert.Equal(t, DefaultMountTypes, o.MountTypes)
	assert.Equal(t, DefaultTimeout, o.Timeout)

	o = Options{DevRoot: "/tmp/dev", MountTypes: []string{}, Timeout: time.Second}.withDefaults()
	assert.Equal(t, "/tmp/dev", o.DevRoot)
	assert.Empty(t, o.MountTypes)
	assert.Equal(t, time.Second, o.Timeout)
}

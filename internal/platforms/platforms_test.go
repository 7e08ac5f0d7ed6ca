package platforms_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sigreer/mbedls/internal/detect"
	"github.com/sigreer/mbedls/internal/platforms"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_YAMLAndJSON(t *testing.T) {
	fromYAML, err := platforms.Parse([]byte("K64F:\n  - \"0240\"\nLPC1768: [\"1010\"]\n"))
	require.NoError(t, err)

	fromJSON, err := platforms.Parse([]byte(`{"K64F": ["0240"], "LPC1768": ["1010"]}`))
	require.NoError(t, err)

	want := detect.Table{"K64F": {"0240"}, "LPC1768": {"1010"}}
	assert.Equal(t, want, fromYAML)
	assert.Equal(t, want, fromJSON)
}

func TestParse_Errors(t *testing.T) {
	_, err := platforms.Parse([]byte("- K64F\n- LPC1768\n"))
	assert.Error(t, err)

	_, err = platforms.Parse([]byte(`{"K64F": [""]}`))
	assert.ErrorIs(t, err, detect.ErrMalformedTable)

	table, err := platforms.Parse(nil)
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestDefault(t *testing.T) {
	table := platforms.Default()
	require.NoError(t, table.Validate())

	name, _, ok := table.Match("0240000032044e45")
	assert.True(t, ok)
	assert.Equal(t, "K64F", name)

	name, _, ok = table.Match("101000000000000000000002F7F0D9F9")
	assert.True(t, ok)
	assert.Equal(t, "LPC1768", name)
}

func TestDefault_LeadingCodeWinsOverEmbeddedCode(t *testing.T) {
	// LPC1768 id whose body also contains KL25Z's 0200
	const id = "1010000002000000000000000002F7F0D9F9"

	l := detect.Listings{
		Disks:   []string{"usb-MBED_microcontroller_" + id + "-0:0 -> ../../sdb"},
		Serials: []string{"usb-MBED_MBED_CMSIS-DAP_" + id + "-if01 -> ../../ttyACM0"},
		Mounts:  []string{"/dev/sdb on /media/MBED type vfat (rw)"},
	}

	records, err := detect.Discover(l, platforms.Default(), detect.LinuxDialect())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "LPC1768", records[0].Platform())
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	assert.Equal(t, platforms.Default(), platforms.Load("", nil))
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "platforms.json", `{"MY_BOARD": ["ABCD"]}`)

	core, logs := observer.New(zapcore.DebugLevel)
	table := platforms.Load(path, zap.New(core))

	assert.Equal(t, detect.Table{"MY_BOARD": {"ABCD"}}, table)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestLoad_MissingFileWarnsAndReturnsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	table := platforms.Load(filepath.Join(t.TempDir(), "nope.yaml"), zap.New(core))

	assert.NotNil(t, table)
	assert.Empty(t, table)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "not readable")
}

func TestLoad_MalformedFileWarnsAndReturnsEmpty(t *testing.T) {
	path := writeFile(t, "platforms.yaml", "K64F: [\n")

	core, logs := observer.New(zapcore.WarnLevel)
	table := platforms.Load(path, zap.New(core))

	assert.NotNil(t, table)
	assert.Empty(t, table)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "malformed")
}

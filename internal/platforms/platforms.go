// Package platforms loads the hardware-id table that maps target id prefixes
// to platform names.
package platforms

import (
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sigreer/mbedls/internal/detect"
)

//go:embed default.yaml
var defaultTable []byte

// Parse decodes a YAML or JSON table of platform name -> prefixes
func Parse(data []byte) (detect.Table, error) {
	var table detect.Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse platform table: %w", err)
	}
	if table == nil {
		table = detect.Table{}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Default returns the built-in table of well-known boards
func Default() detect.Table {
	table, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded platform table is invalid: %v", err))
	}
	return table
}

// Load reads the table at path. An empty path selects the built-in table.
// A missing or malformed file yields an empty table and a warning, never an
// error: discovery still reports orphan boards without it.
func Load(path string, log *zap.Logger) detect.Table {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Platform table not readable, using empty table",
			zap.String("path", path),
			zap.Error(err),
		)
		return detect.Table{}
	}

	table, err := Parse(data)
	if err != nil {
		log.Warn("Platform table malformed, using empty table",
			zap.String("path", path),
			zap.Error(err),
		)
		return detect.Table{}
	}

	log.Debug("Platform table loaded",
		zap.String("path", path),
		zap.Int("platforms", len(table)),
		zap.Int("prefixes", table.Len()),
	)
	return table
}

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sigreer/mbedls/internal/config"
	"github.com/sigreer/mbedls/internal/detect"
	"github.com/sigreer/mbedls/internal/detect/sources"
	"github.com/sigreer/mbedls/internal/logging"
	"github.com/sigreer/mbedls/internal/platforms"
	"github.com/sigreer/mbedls/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile       string
	logLevel      string
	platformsFile string
)

var rootCmd = &cobra.Command{
	Use:   "mbedls",
	Short: "List mbed development boards attached to this host",
	Long: `mbedls finds mbed-enabled boards by correlating the host's disk,
serial port and mount listings. Each board is reported with its mount point,
serial port, hardware id and platform name.

Running mbedls without a subcommand is the same as 'mbedls list'.`,
	Run: runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mbedls version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mbedls %s (%s/%s)\n", version.Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/mbedls/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&platformsFile, "platforms", "", "hardware-id table file (YAML or JSON)")

	addListFlags(rootCmd)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies global flag overrides and builds the logger
func setup() (*config.Config, *zap.Logger) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if platformsFile != "" {
		cfg.PlatformsFile = platformsFile
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, log
}

// discoverBoards enumerates this host and correlates the listings
func discoverBoards(ctx context.Context, cfg *config.Config, goos string, log *zap.Logger, opts ...detect.Option) ([]detect.Record, error) {
	table := platforms.Load(cfg.PlatformsFile, log)

	e, err := sources.New(goos, sources.Options{
		DevRoot:    cfg.DevRoot,
		MountsFile: cfg.MountsFile,
		MountTypes: cfg.MountTypes,
		Timeout:    cfg.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	records, err := detect.Run(ctx, e, table, opts...)
	if err != nil {
		return nil, err
	}

	log.Debug("Discovery complete", zap.String("os", goos), zap.Int("boards", len(records)))
	return records, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

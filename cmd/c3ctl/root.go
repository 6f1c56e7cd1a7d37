package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/c3kit/c3"
	"github.com/joshuapare/c3kit/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	configPath string
	logLevel   string
	logJSON    bool
	logDir     string

	// Model flags, applied over the config file
	modeFlag   string
	cipherFlag string
	pointerKey string
	dataKey    string
	seedFlag   string
	strictFree bool

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "c3ctl",
	Short: "Encode capability addresses and exercise the memory-safety monitor",
	Long: `c3ctl works with capability addresses (CAs): 64-bit pointers that carry
a size class and an encrypted slice of the address. It can encode and decode
CAs, show keystream masks, and drive the allocation monitor through demo and
scripted scenarios that detect out-of-bounds and use-after-free reads.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")

	pf.StringVar(&logLevel, "log-level", "", "Enable logging at level (debug, info, warn, error)")
	pf.BoolVar(&logJSON, "log-json", false, "Log as JSON")
	pf.StringVar(&logDir, "log-dir", "", "Write daily log files to this directory instead of stderr")

	pf.StringVar(&modeFlag, "mode", "", "Slice mode: cipher or random")
	pf.StringVar(&cipherFlag, "cipher", "", "Slice cipher: xor or feistel")
	pf.StringVar(&pointerKey, "pointer-key", "", "24-bit pointer key (hex with 0x); random if unset")
	pf.StringVar(&dataKey, "data-key", "", "24-bit data key (hex with 0x); random if unset")
	pf.StringVar(&seedFlag, "seed", "", "Seed for random-mode slices")
	pf.BoolVar(&strictFree, "strict-free", false, "Treat reads through freed records as violations")
}

// execute runs the root command and returns the process exit code.
func execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		return 1
	}
	return 0
}

func setupLogging(cmd *cobra.Command, args []string) error {
	opts := logger.Options{
		Enabled: logLevel != "",
		JSON:    logJSON,
		LogDir:  logDir,
	}
	if opts.Enabled {
		lvl, err := logger.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		opts.Level = lvl
	}
	c, err := logger.Init(opts)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	logCloser = c
	return nil
}

// loadConfig returns the --config file (or defaults) with flag overrides.
func loadConfig() (c3.Config, error) {
	cfg := c3.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = c3.LoadConfig(configPath); err != nil {
			return cfg, err
		}
		printVerbose("Loaded config: %s\n", configPath)
	}
	if err := applyFlags(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyFlags(cfg *c3.Config) error {
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	if cipherFlag != "" {
		cfg.Cipher = cipherFlag
	}
	if pointerKey != "" {
		v, err := parseUint(pointerKey, 32)
		if err != nil {
			return fmt.Errorf("invalid --pointer-key: %w", err)
		}
		cfg.PointerKey = uint32(v)
	}
	if dataKey != "" {
		v, err := parseUint(dataKey, 32)
		if err != nil {
			return fmt.Errorf("invalid --data-key: %w", err)
		}
		cfg.DataKey = uint32(v)
	}
	if seedFlag != "" {
		v, err := parseUint(seedFlag, 64)
		if err != nil {
			return fmt.Errorf("invalid --seed: %w", err)
		}
		cfg.Seed = &v
	}
	if strictFree {
		cfg.StrictFree = true
	}
	return nil
}

// newModel builds a model from the effective config.
func newModel() (*c3.Model, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return c3.New(cfg, c3.WithLogger(logger.L))
}

// parseUint accepts decimal, 0x hex, 0o octal and 0b binary.
func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

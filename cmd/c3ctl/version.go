package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/joshuapare/c3kit/c3/keys"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionResult struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	Built        string `json:"built"`
	Go           string `json:"go"`
	Mode         string `json:"mode"`
	Cipher       string `json:"cipher"`
	Allocator    string `json:"allocator"`
	Window       string `json:"window"`
	SecureMemory bool   `json:"secure_memory"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and effective model settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res := versionResult{
		Version:      version,
		Commit:       commit,
		Built:        date,
		Go:           runtime.Version(),
		Mode:         cfg.Mode,
		Cipher:       cfg.Cipher,
		Allocator:    cfg.Allocator,
		Window:       fmt.Sprintf("[%#x, %#x)", cfg.AddressLow, cfg.AddressHigh),
		SecureMemory: keys.SecureMemoryAvailable(),
	}
	if jsonOut {
		return printJSON(res)
	}

	printInfo("c3ctl %s\n", res.Version)
	field("commit", "%s", res.Commit)
	field("built", "%s", res.Built)
	field("go", "%s", res.Go)
	field("mode", "%s", res.Mode)
	field("cipher", "%s", res.Cipher)
	field("allocator", "%s", res.Allocator)
	field("window", "%s", res.Window)
	field("locked keys", "%t", res.SecureMemory)
	return nil
}

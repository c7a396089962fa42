// Package config loads the simulator's TOML configuration, merging a
// user-supplied file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config groups the tunables the CLI threads into the assembler, the VM
// and the debugger facade. Every field here has a consumer; presentation
// or transport settings belong to the layers that own them.
type Config struct {
	Execution struct {
		// MaxCycles bounds headless runs so a looping program terminates.
		MaxCycles uint64 `toml:"max_cycles"`
		// StackSize reserves this many bytes at the top of the assembled
		// address space and seeds SP below them.
		StackSize uint `toml:"stack_size"`
	} `toml:"execution"`

	Debugger struct {
		// HistorySize caps the step-back log, in state-delta entries.
		// Zero keeps the full run.
		HistorySize int `toml:"history_size"`
		// AutoSaveBreaks keeps breakpoints armed across a reset.
		AutoSaveBreaks bool `toml:"auto_save_breakpoints"`
	} `toml:"debugger"`

	Display struct {
		// NumberFormat is "hex", "dec" or "both" for register listings.
		NumberFormat string `toml:"number_format"`
		// BytesPerLine is the wrap width of memory dumps.
		BytesPerLine int `toml:"bytes_per_line"`
	} `toml:"display"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 1_000_000
	cfg.Execution.StackSize = 64 * 1024
	cfg.Debugger.HistorySize = 0
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Display.NumberFormat = "hex"
	cfg.Display.BytesPerLine = 16
	return cfg
}

// Path returns the per-user config file location, os.UserConfigDir plus an
// armsim subdirectory, falling back to the working directory when the
// platform offers no config dir.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "armsim", "config.toml")
}

// Load reads the per-user config file, returning defaults when it does not
// exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom merges the TOML file at path over the defaults. A missing file
// is not an error; a malformed one is.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

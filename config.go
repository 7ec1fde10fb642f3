package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/helvlang/helv/internal/emit"
)

const configName = "helv.toml"

// config is the helv.toml project configuration; command line flags
// override its values.
type config struct {
	Run  runConfig  `toml:"run"`
	Emit emitConfig `toml:"emit"`

	// Path is where the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

type runConfig struct {
	DepthLimit int      `toml:"depth-limit"`
	StackLimit uint     `toml:"stack-limit"`
	Timeout    duration `toml:"timeout"`
	Trace      bool     `toml:"trace"`
}

type emitConfig struct {
	Target    string `toml:"target"`
	StackSize int    `toml:"stack-size"`
	CC        string `toml:"cc"`
}

// duration lets config files spell times like "10s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

var emitTargets = []string{"c", "go", "asm", "image"}

func defaultConfig() config {
	return config{
		Run: runConfig{
			DepthLimit: DefaultDepthLimit,
		},
		Emit: emitConfig{
			Target:    "c",
			StackSize: emit.DefaultStackSize,
			CC:        "cc",
		},
	}
}

// loadConfig reads the named config file over the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("unknown keys in %s: %v", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return cfg, cfg.validate()
}

// findConfig walks up from dir to the nearest helv.toml and loads it;
// without one, the defaults are returned.
func findConfig(dir string) (config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return defaultConfig(), err
	}
	for {
		path := filepath.Join(dir, configName)
		if _, err := os.Stat(path); err == nil {
			return loadConfig(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return defaultConfig(), nil
		}
		dir = parent
	}
}

func (cfg config) validate() error {
	valid := false
	for _, target := range emitTargets {
		if cfg.Emit.Target == target {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid emit target %q, want one of %v", cfg.Emit.Target, strings.Join(emitTargets, ", "))
	}
	if cfg.Emit.StackSize <= 0 {
		return fmt.Errorf("invalid emit stack-size %v", cfg.Emit.StackSize)
	}
	if cfg.Run.DepthLimit < 0 {
		return fmt.Errorf("invalid run depth-limit %v", cfg.Run.DepthLimit)
	}
	return nil
}

func (cfg config) vmOptions() []VMOption {
	return []VMOption{
		WithDepthLimit(cfg.Run.DepthLimit),
		WithStackLimit(cfg.Run.StackLimit),
	}
}

func (cfg config) emitOptions() []emit.Option {
	return []emit.Option{emit.WithStackSize(cfg.Emit.StackSize)}
}

// Package config holds the command line and config file settings of the recorder.
package config

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultRefreshMs is the tick interval used when none is given (about 60 fps)
const DefaultRefreshMs = 16.66

// Config is the full set of startup settings.
// Keys in the YAML file match the long flag names with underscores.
type Config struct {
	ShowMonsters     bool    `yaml:"show_monsters"`
	ShowCrowns       bool    `yaml:"show_crowns"`
	PID              int     `yaml:"mhw_pid"`
	RefreshMs        float64 `yaml:"refresh"`
	DumpMem          string  `yaml:"dump_mem"`
	LoadDump         string  `yaml:"load_dump"`
	ShowFrametime    bool    `yaml:"show_frametime"`
	LogLevel         string  `yaml:"log_level"`
	NoDirectMem      bool    `yaml:"no_direct_mem"`
	DebugAll         bool    `yaml:"debug_all"`
	IncludeAnonymous bool    `yaml:"include_anonymous"`
	HistoryDir       string  `yaml:"history"`
	LogFile          string  `yaml:"log_file"`

	// ConfigFile is where the YAML settings came from, if anywhere
	ConfigFile string `yaml:"-"`
}

// Live is the part of the configuration that can change while running
type Live struct {
	Refresh       time.Duration
	ShowCrowns    bool
	ShowFrametime bool
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		RefreshMs: DefaultRefreshMs,
		LogLevel:  "info",
		LogFile:   "hunt-recorder.log",
	}
}

// Load parses args (without the program name). Precedence is defaults, then
// the file named by --config, then the flags themselves.
func Load(args []string) (*Config, error) {
	probe := Default()
	fs := newFlagSet(&probe)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if probe.ConfigFile != "" {
		if err := readFile(probe.ConfigFile, &cfg); err != nil {
			return nil, err
		}
	}

	fs = newFlagSet(&cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if len(fs.Args()) > 0 {
		return nil, errors.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Usage returns the flag help text
func Usage() string {
	cfg := Default()
	return newFlagSet(&cfg).FlagUsages()
}

// newFlagSet binds every flag to cfg, using cfg's current values as defaults
func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("hunt-recorder", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.BoolVarP(&cfg.ShowMonsters, "show-monsters", "m", cfg.ShowMonsters, "show monster health bars")
	fs.BoolVarP(&cfg.ShowCrowns, "show-crowns", "c", cfg.ShowCrowns, "show crown sizes next to monsters")
	fs.IntVar(&cfg.PID, "mhw-pid", cfg.PID, "pid of the game process (skips discovery)")
	fs.Float64VarP(&cfg.RefreshMs, "refresh", "r", cfg.RefreshMs, "refresh interval in milliseconds")
	fs.StringVar(&cfg.DumpMem, "dump-mem", cfg.DumpMem, "write scanned regions to this directory")
	fs.StringVar(&cfg.LoadDump, "load-dump", cfg.LoadDump, "read regions from a dump directory instead of the game")
	fs.BoolVar(&cfg.ShowFrametime, "show-frametime", cfg.ShowFrametime, "show how long the last refresh took")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.NoDirectMem, "no-direct-mem", cfg.NoDirectMem, "read game memory a page at a time through a cache")
	fs.BoolVar(&cfg.DebugAll, "debug-all", cfg.DebugAll, "print every pattern match and exit")
	fs.BoolVar(&cfg.IncludeAnonymous, "include-anonymous", cfg.IncludeAnonymous, "also scan anonymous mappings")
	fs.StringVar(&cfg.HistoryDir, "history", cfg.HistoryDir, "record hunts into a database in this directory")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file path")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file, reloaded on change")

	return fs
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config %s", path)
	}
	return nil
}

// Validate checks option combinations
func (c *Config) Validate() error {
	if c.PID != 0 && c.LoadDump != "" {
		return errors.New("mhw_pid and load_dump are mutually exclusive")
	}
	if c.PID < 0 {
		return errors.Errorf("invalid mhw_pid %d", c.PID)
	}
	if c.DumpMem != "" && c.LoadDump != "" {
		return errors.New("dump_mem and load_dump are mutually exclusive")
	}
	if c.RefreshMs <= 0 {
		return errors.Errorf("refresh must be positive, got %v", c.RefreshMs)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Refresh returns the tick interval
func (c *Config) Refresh() time.Duration {
	return time.Duration(c.RefreshMs * float64(time.Millisecond))
}

// Level returns the configured log level; Validate has already checked it
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// Live extracts the runtime-adjustable settings
func (c *Config) Live() Live {
	return Live{
		Refresh:       c.Refresh(),
		ShowCrowns:    c.ShowCrowns,
		ShowFrametime: c.ShowFrametime,
	}
}

// RestartRequired lists settings that differ from other and only apply at startup
func (c *Config) RestartRequired(other *Config) []string {
	var changed []string
	if c.ShowMonsters != other.ShowMonsters {
		changed = append(changed, "show_monsters")
	}
	if c.PID != other.PID {
		changed = append(changed, "mhw_pid")
	}
	if c.DumpMem != other.DumpMem {
		changed = append(changed, "dump_mem")
	}
	if c.LoadDump != other.LoadDump {
		changed = append(changed, "load_dump")
	}
	if c.NoDirectMem != other.NoDirectMem {
		changed = append(changed, "no_direct_mem")
	}
	if c.IncludeAnonymous != other.IncludeAnonymous {
		changed = append(changed, "include_anonymous")
	}
	if c.HistoryDir != other.HistoryDir {
		changed = append(changed, "history")
	}
	return changed
}

// ParseLevel converts a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", name)
	}
	return level, nil
}

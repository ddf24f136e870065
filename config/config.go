package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gopkg.in/yaml.v3"

	"go-threadmusic/clock"
	"go-threadmusic/music"
	"go-threadmusic/sched"
)

// Defaults for a run
const (
	DefaultWorkers        = 4
	DefaultDurationSec    = 60
	DefaultPhases         = 3
	DefaultTempo          = 200
	DefaultTPQ            = 480
	DefaultBeatsPerBar    = 4
	DefaultSampleInterval = time.Millisecond
)

// Config is everything a run needs
type Config struct {
	Workers     int `yaml:"workers"`
	DurationSec int `yaml:"duration"`
	Phases      int `yaml:"phases"`

	Tempo       int `yaml:"tempo"`
	TPQ         int `yaml:"tpq"`
	BeatsPerBar int `yaml:"beats_per_bar"`

	// Scheduling detection
	Threshold      float64       `yaml:"threshold"`
	SampleInterval time.Duration `yaml:"sample_interval"`
	BusyWorkMin    int           `yaml:"busy_work_min"`
	BusyWorkMax    int           `yaml:"busy_work_max"`
	CPUClock       string        `yaml:"cpu_clock"`

	Kit  string `yaml:"kit"`
	Seed int64  `yaml:"seed,omitempty"`

	OutputDir string `yaml:"output_dir,omitempty"`
	DebugLog  string `yaml:"debug_log,omitempty"`
	Palette   string `yaml:"palette,omitempty"` // GIMP .gpl file for the monitor
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers:        DefaultWorkers,
		DurationSec:    DefaultDurationSec,
		Phases:         DefaultPhases,
		Tempo:          DefaultTempo,
		TPQ:            DefaultTPQ,
		BeatsPerBar:    DefaultBeatsPerBar,
		Threshold:      sched.DefaultThreshold,
		SampleInterval: DefaultSampleInterval,
		BusyWorkMin:    sched.DefaultBusyMin,
		BusyWorkMax:    sched.DefaultBusyMax,
		CPUClock:       sched.ClockProcess,
		Kit:            music.DefaultKit,
		OutputDir:      ".",
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-threadmusic"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the default config file, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file over the defaults. A missing file is not an
// error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("read config", fmt.Sprintf("Could not read config file %s", path)))
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("parse config", fmt.Sprintf("Config file %s is not valid YAML", path)))
	}

	return cfg, nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return fault.Wrap(err, fmsg.With("locate config dir"))
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as YAML, creating the directory if needed
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config dir"))
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("write config", fmt.Sprintf("Could not write config file %s", path)))
	}
	return nil
}

// Sanitize replaces degenerate values with defaults so a run can always start
func (c *Config) Sanitize() {
	d := DefaultConfig()

	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.DurationSec <= 0 {
		c.DurationSec = d.DurationSec
	}
	if c.Phases <= 0 {
		c.Phases = d.Phases
	}
	if c.Tempo <= 0 {
		c.Tempo = d.Tempo
	}
	if c.TPQ <= 0 || c.TPQ > 0x7FFF {
		c.TPQ = d.TPQ
	}
	if c.BeatsPerBar <= 0 {
		c.BeatsPerBar = d.BeatsPerBar
	}
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.SampleInterval <= 0 {
		c.SampleInterval = d.SampleInterval
	}
	if c.BusyWorkMin < 0 {
		c.BusyWorkMin = 0
	}
	if c.BusyWorkMax < c.BusyWorkMin {
		c.BusyWorkMax = c.BusyWorkMin
	}
	if c.CPUClock != sched.ClockProcess && c.CPUClock != sched.ClockThread {
		c.CPUClock = d.CPUClock
	}
	if _, ok := music.Kits[c.Kit]; !ok {
		c.Kit = d.Kit
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
}

// Duration is the requested run length
func (c *Config) Duration() time.Duration {
	return time.Duration(c.DurationSec) * time.Second
}

// ClockParams returns the musical constants shared by every worker
func (c *Config) ClockParams() clock.Params {
	return clock.Params{
		TPQ:         c.TPQ,
		Tempo:       c.Tempo,
		BeatsPerBar: c.BeatsPerBar,
		Phases:      c.Phases,
		Duration:    c.Duration(),
	}
}

// FileName encodes the run shape and a unique timestamp
func (c *Config) FileName(t time.Time) string {
	return fmt.Sprintf("thread_music_%dthreads_%dsec_%dphases_%d.mid", c.Workers, c.DurationSec, c.Phases, t.Unix())
}

// OutputPath is where the finished file is written
func (c *Config) OutputPath(t time.Time) string {
	return filepath.Join(c.OutputDir, c.FileName(t))
}

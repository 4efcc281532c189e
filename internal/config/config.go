package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"gridpilot/internal/gridworld"
	"gridpilot/internal/simulation"
)

// Frontend names accepted by the Frontend option.
const (
	FrontendTerminal = "terminal"
	FrontendWindow   = "window"
	FrontendHeadless = "headless"
)

// Config represents the application configuration.
type Config struct {
	Width   int     `toml:"width"`
	Height  int     `toml:"height"`
	Density float64 `toml:"density"`
	// Seed fixes the obstacle layouts; zero picks a time-based seed.
	Seed int64 `toml:"seed"`

	Frontend       string        `toml:"frontend"`
	TickInterval   time.Duration `toml:"tick_interval"`
	GoalPause      time.Duration `toml:"goal_pause"`
	ExhaustedPause time.Duration `toml:"exhausted_pause"`
	CellSize       int           `toml:"cell_size"`
	Sound          bool          `toml:"sound"`

	// Episodes and MaxEpisodeSteps only apply to the headless frontend.
	Episodes        int `toml:"episodes"`
	MaxEpisodeSteps int `toml:"max_episode_steps"`

	LogLevel string `toml:"log_level"`
	// LogFile receives logs; empty means stderr, except in terminal mode where logs are dropped.
	LogFile string `toml:"log_file"`

	// Warnings contains any warnings generated during config loading
	Warnings []string `toml:"-"`
}

// Default returns the configuration of the classic 30x30 world.
func Default() *Config {
	return &Config{
		Width:           30,
		Height:          30,
		Density:         0.15,
		Frontend:        FrontendTerminal,
		TickInterval:    simulation.DefaultPacing.Tick,
		GoalPause:       simulation.DefaultPacing.GoalPause,
		ExhaustedPause:  simulation.DefaultPacing.ExhaustedPause,
		CellSize:        24,
		Episodes:        100,
		MaxEpisodeSteps: 10000,
		LogLevel:        "info",
		Warnings:        make([]string, 0),
	}
}

// LoadFile decodes a TOML file over the defaults.
// Unknown keys are not fatal; they are reported in Warnings.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown config key %q", key.String()))
	}
	return cfg, nil
}

// RegisterFlags binds every option to a flag whose default is the current value.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "grid width in cells")
	fs.IntVar(&c.Height, "height", c.Height, "grid height in cells")
	fs.Float64Var(&c.Density, "density", c.Density, "obstacle density in [0, 0.9)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed for obstacle layouts (0 = time based)")
	fs.StringVar(&c.Frontend, "frontend", c.Frontend, "frontend: terminal, window or headless")
	fs.DurationVar(&c.TickInterval, "tick", c.TickInterval, "delay between autopilot moves")
	fs.DurationVar(&c.GoalPause, "goal-pause", c.GoalPause, "pause after reaching the goal")
	fs.DurationVar(&c.ExhaustedPause, "exhausted-pause", c.ExhaustedPause, "pause after the autopilot runs out of moves")
	fs.IntVar(&c.CellSize, "cell-size", c.CellSize, "cell size in pixels (window frontend)")
	fs.BoolVar(&c.Sound, "sound", c.Sound, "play chimes on goal and blocked moves")
	fs.IntVar(&c.Episodes, "episodes", c.Episodes, "episodes to play (headless frontend)")
	fs.IntVar(&c.MaxEpisodeSteps, "max-steps", c.MaxEpisodeSteps, "step limit per episode (headless frontend)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file")
}

// Parse builds the configuration from command-line arguments.
// A -config file is applied first and explicit flags override it.
func Parse(args []string, output io.Writer) (*Config, error) {
	cfg, path, err := parseOnto(Default(), args, output)
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg, _, err = parseOnto(fileCfg, args, output)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseOnto(cfg *Config, args []string, output io.Writer) (*Config, string, error) {
	fs := flag.NewFlagSet("simulation", flag.ContinueOnError)
	fs.SetOutput(output)
	path := fs.String("config", "", "TOML configuration file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	return cfg, *path, nil
}

// Validate checks the options before any component is built.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Density < 0 || c.Density >= gridworld.MaxDensity {
		return fmt.Errorf("density must be in [0, %.2f), got %.3f", gridworld.MaxDensity, c.Density)
	}
	switch c.Frontend {
	case FrontendTerminal, FrontendWindow, FrontendHeadless:
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.GoalPause < 0 || c.ExhaustedPause < 0 {
		return fmt.Errorf("pauses must not be negative")
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %d", c.CellSize)
	}
	if c.Frontend == FrontendHeadless && (c.Episodes <= 0 || c.MaxEpisodeSteps <= 0) {
		return fmt.Errorf("headless runs need positive episodes and max steps")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// SimulationOptions returns the options for simulation.New.
func (c *Config) SimulationOptions() simulation.Options {
	return simulation.Options{
		Width:   c.Width,
		Height:  c.Height,
		Density: c.Density,
		Seed:    c.Seed,
	}
}

// Pacing returns the loop delays.
func (c *Config) Pacing() simulation.Pacing {
	return simulation.Pacing{
		Tick:           c.TickInterval,
		GoalPause:      c.GoalPause,
		ExhaustedPause: c.ExhaustedPause,
	}
}

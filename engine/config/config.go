package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1siamBot/tileflow/engine/pathfind"
)

// Config holds everything the viewer and the bench read at startup.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Map         MapConfig         `yaml:"map"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Driver      DriverConfig      `yaml:"driver"`
	Agent       AgentConfig       `yaml:"agent"`
	Demo        DemoConfig        `yaml:"demo"`
	Bench       BenchConfig       `yaml:"bench"`
}

// MapConfig sizes the live cost map.
type MapConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	CellPixels int `yaml:"cell_pixels"` // on-screen size of a cell at zoom 1
}

// PathfindingConfig mirrors pathfind.Options.
type PathfindingConfig struct {
	TileSize        int   `yaml:"tile_size"`
	Sentinel        int32 `yaml:"sentinel"`
	HeuristicWeight int   `yaml:"heuristic_weight"`
	WallsBlock      bool  `yaml:"walls_block"`
}

// DriverConfig controls how many steps run per tick and how often ticks happen.
type DriverConfig struct {
	TickRate     float64 `yaml:"tick_rate"` // ticks per second
	StepsPerTick int     `yaml:"steps_per_tick"`
}

// AgentConfig tunes agent velocity blending.
type AgentConfig struct {
	Retention float64 `yaml:"retention"`
	Weight    float64 `yaml:"weight"`
	Jitter    float64 `yaml:"jitter"`
	Count     int     `yaml:"count"` // agents spawned per click in the viewer
}

// DemoConfig drives the seeded demo map generator.
type DemoConfig struct {
	Seed    int64   `yaml:"seed"`
	Density float64 `yaml:"density"` // share of cells seeding an obstacle blob
}

// BenchConfig drives cmd/flowbench.
type BenchConfig struct {
	Requests    int    `yaml:"requests"`
	Parallelism int    `yaml:"parallelism"`
	MetricsAddr string `yaml:"metrics_addr"` // empty disables the /metrics listener
	SnapshotDir string `yaml:"snapshot_dir"` // empty disables PNG output
}

// Default returns Config with the reference values.
func Default() Config {
	opts := pathfind.DefaultOptions()
	agent := pathfind.DefaultAgentParams()
	return Config{
		LogLevel: "info",
		Map: MapConfig{
			Width:      300,
			Height:     300,
			CellPixels: 4,
		},
		Pathfinding: PathfindingConfig{
			TileSize:        opts.TileSize,
			Sentinel:        opts.Sentinel,
			HeuristicWeight: opts.HeuristicWeight,
			WallsBlock:      opts.WallsBlock,
		},
		Driver: DriverConfig{
			TickRate:     60,
			StepsPerTick: 64,
		},
		Agent: AgentConfig{
			Retention: agent.Retention,
			Weight:    agent.Weight,
			Jitter:    agent.Jitter,
			Count:     20,
		},
		Demo: DemoConfig{
			Seed:    1,
			Density: 0.03,
		},
		Bench: BenchConfig{
			Requests:    16,
			Parallelism: 4,
		},
	}
}

// Load reads config from a YAML file on top of the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks ranges the rest of the program relies on.
func (c Config) Validate() error {
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map size %dx%d must be positive", c.Map.Width, c.Map.Height)
	}
	if c.Driver.TickRate <= 0 {
		return fmt.Errorf("tick rate %v must be positive", c.Driver.TickRate)
	}
	if c.Driver.StepsPerTick <= 0 {
		return fmt.Errorf("steps per tick %d must be positive", c.Driver.StepsPerTick)
	}
	if c.Bench.Requests < 0 {
		return fmt.Errorf("bench requests %d must not be negative", c.Bench.Requests)
	}
	if c.Bench.Parallelism <= 0 {
		return fmt.Errorf("bench parallelism %d must be positive", c.Bench.Parallelism)
	}
	return c.PathfindOptions().Validate()
}

// PathfindOptions converts the pathfinding section.
func (c Config) PathfindOptions() pathfind.Options {
	return pathfind.Options{
		TileSize:        c.Pathfinding.TileSize,
		Sentinel:        c.Pathfinding.Sentinel,
		HeuristicWeight: c.Pathfinding.HeuristicWeight,
		WallsBlock:      c.Pathfinding.WallsBlock,
	}
}

// AgentParams converts the agent section for a given cell size in world units.
func (c Config) AgentParams(cellSize float64) pathfind.AgentParams {
	return pathfind.AgentParams{
		CellSize:  cellSize,
		Retention: c.Agent.Retention,
		Weight:    c.Agent.Weight,
		Jitter:    c.Agent.Jitter,
	}
}

// Level converts LogLevel to slog.Level.
// Defaults to Info if invalid or empty.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

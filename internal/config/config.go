package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/strategy"
)

// ErrUnsupportedFormat is returned for a file extension Load does not know.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Duration is a time.Duration written as a Go duration string ("500ms").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML parses a scalar duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string", node.Line)
	}
	return d.UnmarshalText([]byte(node.Value))
}

// Race mirrors race.Config with file-friendly types.
type Race struct {
	TrackLength          float64             `yaml:"track_length" json:"track_length"`
	LaneCount            int                 `yaml:"lane_count" json:"lane_count"`
	ObstacleSpawnRate    float64             `yaml:"obstacle_spawn_rate" json:"obstacle_spawn_rate"`
	LaneChangeChance     float64             `yaml:"lane_change_chance" json:"lane_change_chance"`
	EventLogCapacity     int                 `yaml:"event_log_capacity" json:"event_log_capacity"`
	TickInterval         Duration            `yaml:"tick_interval" json:"tick_interval"`
	RenderFPS            int                 `yaml:"render_fps" json:"render_fps"`
	MovingObstacleChance float64             `yaml:"moving_obstacle_chance" json:"moving_obstacle_chance"`
	MaxObstacleSpeed     float64             `yaml:"max_obstacle_speed" json:"max_obstacle_speed"`
	DecisionTimeout      Duration            `yaml:"decision_timeout" json:"decision_timeout"`
	Cars                 []race.CarSpec      `yaml:"cars" json:"cars"`
	Obstacles            []race.ObstacleSpec `yaml:"obstacles" json:"obstacles"`
}

// File is a parsed configuration file.
type File struct {
	Race Race `yaml:"race" json:"race"`

	// Seed is nil when the file does not pin one.
	Seed *int64 `yaml:"seed" json:"seed"`

	// Strategy is a strategy.Kinds entry.
	Strategy string `yaml:"strategy" json:"strategy"`

	// MaxTicks stops a race that has not finished. Zero means no limit.
	MaxTicks uint64 `yaml:"max_ticks" json:"max_ticks"`
}

// DefaultFile returns the configuration used when no file is given.
func DefaultFile() File {
	d := race.DefaultConfig()
	return File{
		Race: Race{
			TrackLength:          d.TrackLength,
			LaneCount:            d.LaneCount,
			ObstacleSpawnRate:    d.ObstacleSpawnRate,
			LaneChangeChance:     d.LaneChangeChance,
			EventLogCapacity:     d.EventLogCapacity,
			TickInterval:         Duration(d.TickInterval),
			RenderFPS:            d.RenderFPS,
			MovingObstacleChance: d.MovingObstacleChance,
			MaxObstacleSpeed:     d.MaxObstacleSpeed,
			DecisionTimeout:      Duration(d.DecisionTimeout),
		},
		Strategy: strategy.KindRandom,
	}
}

// RaceConfig converts the race section to race.Config.
func (f File) RaceConfig() race.Config {
	r := f.Race
	return race.Config{
		TrackLength:          r.TrackLength,
		LaneCount:            r.LaneCount,
		ObstacleSpawnRate:    r.ObstacleSpawnRate,
		LaneChangeChance:     r.LaneChangeChance,
		EventLogCapacity:     r.EventLogCapacity,
		TickInterval:         time.Duration(r.TickInterval),
		RenderFPS:            r.RenderFPS,
		MovingObstacleChance: r.MovingObstacleChance,
		MaxObstacleSpeed:     r.MaxObstacleSpeed,
		DecisionTimeout:      time.Duration(r.DecisionTimeout),
		Cars:                 r.Cars,
		Obstacles:            r.Obstacles,
	}
}

// Validate checks the race section and the strategy kind.
func (f File) Validate() error {
	if err := f.RaceConfig().Validate(); err != nil {
		return err
	}
	if _, err := strategy.Factory(f.Strategy, 0, 0); err != nil {
		return err
	}
	return nil
}

// Load reads, parses and validates the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f, err := Parse(data, filepath.Ext(path), path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses data in the format named by ext (".yaml", ".yml" or ".cue")
// and validates the result. name is used in CUE error positions.
func Parse(data []byte, ext, name string) (*File, error) {
	var (
		f   *File
		err error
	)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		f, err = parseYAML(data)
	case ".cue":
		f, err = parseCUE(data, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func parseYAML(data []byte) (*File, error) {
	f := DefaultFile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		// An empty document leaves every default in place.
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &f, nil
}

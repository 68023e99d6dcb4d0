package race

import (
	"fmt"
	"math"
	"time"
)

// Defaults for every recognized option.
const (
	DefaultTrackLength          = 30.0
	DefaultLaneCount            = 4
	DefaultObstacleSpawnRate    = 0.1
	DefaultLaneChangeChance     = 0.05
	DefaultEventLogCapacity     = 100
	DefaultTickInterval         = 500 * time.Millisecond
	DefaultRenderFPS            = 30
	DefaultMovingObstacleChance = 0.0
	DefaultMaxObstacleSpeed     = 0.5
	DefaultDecisionTimeout      = 250 * time.Millisecond

	// MinCarSpeed and MaxCarSpeed bound randomly assigned speeds.
	MinCarSpeed = 0.5
	MaxCarSpeed = 2.0
)

// CarSpec places a car explicitly. A zero Speed draws a random speed.
type CarSpec struct {
	Lane  int     `json:"lane"`
	Speed float64 `json:"speed,omitempty"`
}

// ObstacleSpec places an obstacle before the first tick.
type ObstacleSpec struct {
	Lane     int     `json:"lane"`
	Position float64 `json:"position"`
}

// Config holds everything Initialize needs.
//
// RenderFPS is informational for the engine; the loop package consumes it.
// When Cars is empty the engine creates one car per lane.
type Config struct {
	TrackLength          float64        `json:"track_length"`
	LaneCount            int            `json:"lane_count"`
	ObstacleSpawnRate    float64        `json:"obstacle_spawn_rate"`
	LaneChangeChance     float64        `json:"lane_change_chance"`
	EventLogCapacity     int            `json:"event_log_capacity"`
	TickInterval         time.Duration  `json:"tick_interval"`
	RenderFPS            int            `json:"render_fps"`
	MovingObstacleChance float64        `json:"moving_obstacle_chance"`
	MaxObstacleSpeed     float64        `json:"max_obstacle_speed"`
	DecisionTimeout      time.Duration  `json:"decision_timeout"`
	Cars                 []CarSpec      `json:"cars,omitempty"`
	Obstacles            []ObstacleSpec `json:"obstacles,omitempty"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		TrackLength:          DefaultTrackLength,
		LaneCount:            DefaultLaneCount,
		ObstacleSpawnRate:    DefaultObstacleSpawnRate,
		LaneChangeChance:     DefaultLaneChangeChance,
		EventLogCapacity:     DefaultEventLogCapacity,
		TickInterval:         DefaultTickInterval,
		RenderFPS:            DefaultRenderFPS,
		MovingObstacleChance: DefaultMovingObstacleChance,
		MaxObstacleSpeed:     DefaultMaxObstacleSpeed,
		DecisionTimeout:      DefaultDecisionTimeout,
	}
}

// Track returns the track described by the configuration.
func (c Config) Track() Track {
	return Track{Length: c.TrackLength, Lanes: c.LaneCount}
}

// Validate checks every option and returns the first *ConfigError found.
// Values are never clamped.
func (c Config) Validate() error {
	if !finite(c.TrackLength) || c.TrackLength <= 0 {
		return newConfigError("track_length", "must be a positive finite number, got %v", c.TrackLength)
	}
	if c.LaneCount < 2 {
		return newConfigError("lane_count", "must be at least 2, got %d", c.LaneCount)
	}
	if err := checkProbability("obstacle_spawn_rate", c.ObstacleSpawnRate); err != nil {
		return err
	}
	if err := checkProbability("lane_change_chance", c.LaneChangeChance); err != nil {
		return err
	}
	if err := checkProbability("moving_obstacle_chance", c.MovingObstacleChance); err != nil {
		return err
	}
	if !finite(c.MaxObstacleSpeed) || c.MaxObstacleSpeed < 0 {
		return newConfigError("max_obstacle_speed", "must be a non-negative finite number, got %v", c.MaxObstacleSpeed)
	}
	if c.EventLogCapacity < 1 {
		return newConfigError("event_log_capacity", "must be at least 1, got %d", c.EventLogCapacity)
	}
	if c.TickInterval <= 0 {
		return newConfigError("tick_interval", "must be positive, got %s", c.TickInterval)
	}
	if c.RenderFPS <= 0 {
		return newConfigError("render_fps", "must be positive, got %d", c.RenderFPS)
	}
	if c.DecisionTimeout < 0 {
		return newConfigError("decision_timeout", "must not be negative, got %s", c.DecisionTimeout)
	}

	for i, car := range c.Cars {
		if car.Lane < 0 || car.Lane >= c.LaneCount {
			return newConfigError(indexed("cars", i, "lane"), "must be in [0, %d), got %d", c.LaneCount, car.Lane)
		}
		if !finite(car.Speed) || car.Speed < 0 {
			return newConfigError(indexed("cars", i, "speed"), "must be a positive finite number or 0 for random, got %v", car.Speed)
		}
	}

	for i, ob := range c.Obstacles {
		if ob.Lane < 0 || ob.Lane >= c.LaneCount {
			return newConfigError(indexed("obstacles", i, "lane"), "must be in [0, %d), got %d", c.LaneCount, ob.Lane)
		}
		if !finite(ob.Position) || ob.Position < 0 || ob.Position > c.TrackLength {
			return newConfigError(indexed("obstacles", i, "position"), "must be in [0, %v], got %v", c.TrackLength, ob.Position)
		}
	}

	return nil
}

func checkProbability(field string, p float64) error {
	if !finite(p) || p < 0 || p > 1 {
		return newConfigError(field, "must be a probability in [0, 1], got %v", p)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func indexed(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}

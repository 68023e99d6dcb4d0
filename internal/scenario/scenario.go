package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/laneracer/internal/config"
	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/strategy"
)

// Scenario is one scripted race with its expected results.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Seed feeds the engine and any random strategies.
	Seed int64 `yaml:"seed"`

	// Delta is the simulated time per tick. Default: 1s.
	Delta config.Duration `yaml:"delta"`

	// MaxTicks bounds the run. Default: 1000.
	MaxTicks uint64 `yaml:"max_ticks"`

	// Strategy drives cars without a script. Default: stay.
	Strategy string `yaml:"strategy"`

	// Race overrides configuration options; omitted options keep their
	// defaults. Cars and obstacles belong at the top level.
	Race config.Race `yaml:"race"`

	Cars       []Car               `yaml:"cars"`
	Obstacles  []race.ObstacleSpec `yaml:"obstacles"`
	Assertions []Assertion         `yaml:"assertions"`
}

// Car places one car and optionally scripts it.
type Car struct {
	Lane   int      `yaml:"lane"`
	Speed  float64  `yaml:"speed"`
	Script []string `yaml:"script"`
}

// Scenario defaults.
const (
	DefaultDelta    = time.Second
	DefaultMaxTicks = 1000
)

// Load reads, parses and validates a scenario file.
// Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	sc := Scenario{
		Delta:    config.Duration(DefaultDelta),
		MaxTicks: DefaultMaxTicks,
		Strategy: strategy.KindStay,
		Race:     config.DefaultFile().Race,
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// LoadDir loads every .yaml/.yml file in dir, sorted by file name. When
// filter is non-empty only scenarios whose name matches the glob are kept.
func LoadDir(dir, filter string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	var out []*Scenario
	for _, name := range names {
		sc, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if filter != "" {
			ok, err := filepath.Match(filter, sc.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, sc)
	}
	return out, nil
}

// Config returns the race configuration the scenario runs with.
func (s *Scenario) Config() race.Config {
	f := config.File{Race: s.Race}
	cfg := f.RaceConfig()
	cfg.Cars = make([]race.CarSpec, len(s.Cars))
	for i, c := range s.Cars {
		cfg.Cars[i] = race.CarSpec{Lane: c.Lane, Speed: c.Speed}
	}
	cfg.Obstacles = s.Obstacles
	return cfg
}

// factory returns the per-car strategy factory: scripts where given, the
// scenario strategy otherwise.
func (s *Scenario) factory() (race.StrategyFactory, error) {
	fallback, err := strategy.Factory(s.Strategy, s.Race.LaneChangeChance, s.Seed)
	if err != nil {
		return nil, err
	}
	scripts := map[race.CarID][]strategy.Step{}
	for i, c := range s.Cars {
		if len(c.Script) == 0 {
			continue
		}
		steps, err := strategy.ParseSteps(c.Script)
		if err != nil {
			return nil, fmt.Errorf("cars[%d].script: %w", i, err)
		}
		scripts[race.CarID(i+1)] = steps
	}
	return strategy.Scripted(scripts, fallback), nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Delta <= 0 {
		return fmt.Errorf("delta must be positive")
	}
	if len(s.Race.Cars) > 0 || len(s.Race.Obstacles) > 0 {
		return fmt.Errorf("race.cars and race.obstacles are not allowed; use top-level cars and obstacles")
	}
	if err := s.Config().Validate(); err != nil {
		return err
	}
	if _, err := s.factory(); err != nil {
		return err
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

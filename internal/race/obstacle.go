package race

import "fmt"

// ObstacleID identifies an obstacle. IDs come from a per-engine counter
// starting at 1.
type ObstacleID uint64

// ObstacleKind distinguishes stationary hazards from drifting ones.
type ObstacleKind uint8

const (
	ObstacleStatic ObstacleKind = iota
	ObstacleMoving
)

// String returns the lowercase kind name.
func (k ObstacleKind) String() string {
	switch k {
	case ObstacleStatic:
		return "static"
	case ObstacleMoving:
		return "moving"
	default:
		return fmt.Sprintf("obstacle(%d)", uint8(k))
	}
}

// MarshalText encodes the kind by name.
func (k ObstacleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ObstacleKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "static":
		*k = ObstacleStatic
	case "moving":
		*k = ObstacleMoving
	default:
		return fmt.Errorf("unknown obstacle kind %q", b)
	}
	return nil
}

var obstacleSymbols = []string{"🚧", "💥", "🛑"}

// Obstacle is a hazard occupying one lane. Static obstacles never move;
// moving ones drift toward the finish at a fixed speed.
type Obstacle struct {
	id       ObstacleID
	lane     int
	position float64
	kind     ObstacleKind
	speed    float64
	symbol   string
}

// ID returns the obstacle's identifier.
func (o *Obstacle) ID() ObstacleID { return o.id }

// Lane returns the lane the obstacle blocks.
func (o *Obstacle) Lane() int { return o.lane }

// Position returns the obstacle's distance along the track.
func (o *Obstacle) Position() float64 { return o.position }

// Kind reports whether the obstacle is static or moving.
func (o *Obstacle) Kind() ObstacleKind { return o.kind }

// Speed returns the drift speed; zero for static obstacles.
func (o *Obstacle) Speed() float64 { return o.speed }

// State returns the snapshot projection of the obstacle.
func (o *Obstacle) State() ObstacleState {
	return ObstacleState{
		ID:       o.id,
		Lane:     o.lane,
		Position: o.position,
		Kind:     o.kind,
		Speed:    o.speed,
		Symbol:   o.symbol,
	}
}

func (o *Obstacle) update(seconds float64) {
	if o.kind == ObstacleMoving {
		o.position += o.speed * seconds
	}
}

func (o *Obstacle) offTrack(track Track) bool {
	return !track.Contains(o.position)
}

// obstacleSource hands out obstacle IDs and draws spawn decisions from the
// engine's random source.
type obstacleSource struct {
	next ObstacleID
	rng  Rand
	cfg  Config
}

// maybeSpawn rolls the spawn probability once and returns a new obstacle at
// the spawn edge, or nil.
func (s *obstacleSource) maybeSpawn() *Obstacle {
	if s.rng.Float64() >= s.cfg.ObstacleSpawnRate {
		return nil
	}
	ob := s.place(s.rng.IntN(s.cfg.LaneCount), 0)
	if s.cfg.MovingObstacleChance > 0 && s.rng.Float64() < s.cfg.MovingObstacleChance {
		ob.kind = ObstacleMoving
		ob.speed = s.rng.Float64() * s.cfg.MaxObstacleSpeed
	}
	return ob
}

// place creates a static obstacle at an explicit location.
func (s *obstacleSource) place(lane int, position float64) *Obstacle {
	s.next++
	return &Obstacle{
		id:       s.next,
		lane:     lane,
		position: position,
		kind:     ObstacleStatic,
		symbol:   obstacleSymbols[int(s.next-1)%len(obstacleSymbols)],
	}
}

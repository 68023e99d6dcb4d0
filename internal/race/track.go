package race

// Track is the immutable race geometry.
type Track struct {
	Length float64 `json:"length"`
	Lanes  int     `json:"lanes"`
}

// ClampLane returns lane limited to [0, Lanes).
func (t Track) ClampLane(lane int) int {
	if lane < 0 {
		return 0
	}
	if lane >= t.Lanes {
		return t.Lanes - 1
	}
	return lane
}

// HasLane reports whether lane is a valid lane index.
func (t Track) HasLane(lane int) bool {
	return lane >= 0 && lane < t.Lanes
}

// Contains reports whether position lies within [0, Length].
func (t Track) Contains(position float64) bool {
	return position >= 0 && position <= t.Length
}

// LaneSet is a fixed-size membership table over the lanes of a track.
type LaneSet []bool

// NewLaneSet returns an empty set sized for lanes.
func NewLaneSet(lanes int) LaneSet {
	return make(LaneSet, lanes)
}

// Add marks lane as a member. Out of range lanes are ignored.
func (s LaneSet) Add(lane int) {
	if lane >= 0 && lane < len(s) {
		s[lane] = true
	}
}

// Has reports whether lane is a member.
func (s LaneSet) Has(lane int) bool {
	return lane >= 0 && lane < len(s) && s[lane]
}

// Members returns member lanes in ascending order.
func (s LaneSet) Members() []int {
	out := make([]int, 0, len(s))
	for lane, ok := range s {
		if ok {
			out = append(out, lane)
		}
	}
	return out
}

// Complement returns the lanes that are not members, in ascending order.
func (s LaneSet) Complement() []int {
	out := make([]int, 0, len(s))
	for lane, ok := range s {
		if !ok {
			out = append(out, lane)
		}
	}
	return out
}

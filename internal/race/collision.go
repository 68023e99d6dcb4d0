package race

import (
	"math"
	"slices"
)

// CollisionRadius is the proximity (exclusive) at which a car hits an
// obstacle in its lane.
const CollisionRadius = 1.0

// Collides reports whether a car at (lane, position) touches the obstacle.
// The predicate is symmetric in the two positions.
func Collides(carLane int, carPos float64, ob ObstacleState) bool {
	return carLane == ob.Lane && math.Abs(ob.Position-carPos) < CollisionRadius
}

// DetectCollisions returns the IDs of active cars that touch any obstacle,
// once per car, in ascending ID order. It does not mutate anything.
func DetectCollisions(cars []CarState, obstacles []ObstacleState) []CarID {
	var hit []CarID
	for _, car := range cars {
		if car.Status != StatusActive {
			continue
		}
		for _, ob := range obstacles {
			if Collides(car.Lane, car.Position, ob) {
				hit = append(hit, car.ID)
				break
			}
		}
	}
	slices.Sort(hit)
	return hit
}

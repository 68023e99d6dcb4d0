package race

import "math/rand/v2"

// Rand is the subset of *rand.Rand the simulation draws from. Every random
// decision goes through an injected Rand, never the global generator.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Random streams keep the engine's source independent from per-car sources
// derived from the same seed.
const (
	streamEngine uint64 = 0x6c616e6572616365
	streamCar    uint64 = 0x6361727374726174
)

// NewRand returns a PCG-backed source for seed and stream.
func NewRand(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), stream))
}

// CarRand returns the source a strategy for car id should own under seed.
func CarRand(seed int64, id CarID) *rand.Rand {
	return NewRand(seed, streamCar^uint64(id))
}

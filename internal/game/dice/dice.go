// Package dice rolls the dice expressions used by character creation: ability score
// generation and hit dice.
package dice

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// RollResult records one evaluated expression.
//
// Postcondition: Total() == sum(Kept) + Modifier.
type RollResult struct {
	Expression string
	// Rolled holds every die in roll order.
	Rolled []int
	// Kept holds the dice counted toward the total, highest first when a keep rule
	// applied and in roll order otherwise.
	Kept     []int
	Modifier int
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Kept {
		total += d
	}
	return total
}

// String renders the roll for logs and the console, e.g. "4d6kh3 -> [6 5 3] of [3 1 6 5] = 14".
func (r RollResult) String() string {
	s := fmt.Sprintf("%s -> %v", r.Expression, r.Kept)
	if len(r.Kept) != len(r.Rolled) {
		s += fmt.Sprintf(" of %v", r.Rolled)
	}
	if r.Modifier != 0 {
		s += fmt.Sprintf(" %+d", r.Modifier)
	}
	return fmt.Sprintf("%s = %d", s, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

type globalSource struct{}

// NewSource returns a Source backed by the runtime's randomly seeded generator.
func NewSource() Source { return globalSource{} }

func (globalSource) Intn(n int) int { return rand.IntN(n) }

// seededSource is a deterministic Source for tests and reproducible characters.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source. Two sources with the same seed produce
// the same sequence.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// fixedSource replays a fixed sequence of zero-based die faces, wrapping around.
type fixedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixedSource returns a Source that yields faces in order, each reduced modulo n.
// It exists for tests that need exact rolls.
//
// Precondition: faces must be non-empty.
func NewFixedSource(faces ...int) Source {
	if len(faces) == 0 {
		panic("dice: NewFixedSource precondition violated: faces must be non-empty")
	}
	return &fixedSource{faces: faces}
}

func (s *fixedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.faces[s.next%len(s.faces)]
	s.next++
	return ((v % n) + n) % n
}

package solver

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Strategy names accepted by NewSelector.
const (
	StrategyFirst  = "first"
	StrategyRandom = "random"
)

// Selector picks the next word to guess from a non-empty pool.
type Selector interface {
	Select(pool Pool) (string, error)
}

// FirstSelector always guesses the first remaining candidate.
type FirstSelector struct{}

// Select implements Selector.
func (FirstSelector) Select(pool Pool) (string, error) {
	if len(pool) == 0 {
		return "", &PoolExhaustedError{}
	}
	return pool[0], nil
}

// RandomSelector guesses a uniformly random candidate.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector creates a RandomSelector. A nil rng uses the global source.
func NewRandomSelector(rng *rand.Rand) *RandomSelector {
	return &RandomSelector{rng: rng}
}

// Select implements Selector.
func (s *RandomSelector) Select(pool Pool) (string, error) {
	if len(pool) == 0 {
		return "", &PoolExhaustedError{}
	}
	if s.rng == nil {
		return pool[rand.IntN(len(pool))], nil
	}
	return pool[s.rng.IntN(len(pool))], nil
}

// NewSelector returns the selector registered under name.
func NewSelector(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyFirst:
		return FirstSelector{}, nil
	case StrategyRandom:
		return NewRandomSelector(nil), nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", name)
	}
}

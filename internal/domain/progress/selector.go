package progress

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"ceramicflow/internal/domain/booking"
)

const (
	PolicyRandom     = "random"
	PolicyRoundRobin = "round_robin"
	PolicyBatch      = "batch"
)

// Selector picks which candidates advance on a tick. Candidates arrive ordered
// by artifact id.
type Selector interface {
	Select(candidates []booking.Candidate) []booking.Candidate
}

func NewSelector(policy string) (Selector, error) {
	switch policy {
	case "", PolicyRandom:
		return NewRandom(nil), nil
	case PolicyRoundRobin:
		return &RoundRobin{}, nil
	case PolicyBatch:
		return Batch{}, nil
	default:
		return nil, fmt.Errorf("unknown selection policy %q", policy)
	}
}

// Random picks one candidate uniformly.
type Random struct {
	intn func(n int) int
}

// NewRandom uses intn as the source of randomness, or math/rand when nil.
func NewRandom(intn func(n int) int) *Random {
	if intn == nil {
		intn = rand.IntN
	}
	return &Random{intn: intn}
}

func (r *Random) Select(candidates []booking.Candidate) []booking.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	return []booking.Candidate{candidates[r.intn(len(candidates))]}
}

// RoundRobin picks one candidate, cycling through artifact ids.
type RoundRobin struct {
	mu   sync.Mutex
	last int64
}

func (r *RoundRobin) Select(candidates []booking.Candidate) []booking.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pick := candidates[0]
	for _, c := range candidates {
		if c.ArtifactID > r.last {
			pick = c
			break
		}
	}
	r.last = pick.ArtifactID
	return []booking.Candidate{pick}
}

// Batch advances every candidate.
type Batch struct{}

func (Batch) Select(candidates []booking.Candidate) []booking.Candidate {
	return candidates
}

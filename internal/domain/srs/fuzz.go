package srs

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// minFuzzDays is the shortest interval eligible for jitter. Below it the
// jitter span rounds to zero or collides with the learning ladder.
const minFuzzDays = 3

// fuzzInterval jitters a day-scale interval so that cards introduced
// together drift apart instead of staying due on the same day forever. The
// generator is seeded from the card as it stood before the review, so
// replaying the same review always lands on the same day.
func fuzzInterval(days int, prior domain.Card, fuzzFactor float64, maximumInterval int) int {
	if days < minFuzzDays || fuzzFactor <= 0 {
		return days
	}

	span := int(math.Round(float64(days) * fuzzFactor))
	if span == 0 {
		return days
	}

	rng := rand.New(rand.NewPCG(fuzzSeeds(prior)))
	fuzzed := days + rng.IntN(2*span+1) - span

	if fuzzed < 2 {
		fuzzed = 2
	}
	if fuzzed > maximumInterval {
		fuzzed = maximumInterval
	}
	return fuzzed
}

// fuzzSeeds mixes the card ID with the pre-review due time and repetition
// count. Two cards never share a seed, and the same card re-seeds on every
// review.
func fuzzSeeds(prior domain.Card) (uint64, uint64) {
	id := prior.CardID
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	return hi ^ uint64(prior.Due.UnixNano()), lo ^ uint64(prior.Reps)
}

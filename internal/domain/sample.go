package domain

import (
	"math/rand"
	"sort"

	m "pymute.dev/pkg/pymute/internal/model"
)

// Subsample returns at most max mutants chosen pseudo-randomly with the
// given seed, preserving discovery order among the chosen. A non-positive
// max, or one covering the whole catalog, returns the input unchanged.
func Subsample(mutants []m.Mutant, max int, seed int64) []m.Mutant {
	if max <= 0 || max >= len(mutants) {
		return mutants
	}

	rng := rand.New(rand.NewSource(seed))

	chosen := rng.Perm(len(mutants))[:max]
	sort.Ints(chosen)

	sample := make([]m.Mutant, 0, max)
	for _, index := range chosen {
		sample = append(sample, mutants[index])
	}

	return sample
}

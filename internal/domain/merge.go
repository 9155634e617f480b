package domain

import (
	m "pymute.dev/pkg/pymute/internal/model"
)

// Merge combines a fresh discovery with the cached catalog. Identities
// already cached keep their cached entry (and status); newly discovered
// identities are appended with status NotRun. Cached entries no longer
// discovered are retained unpruned until the cache is cleaned manually.
// The operation is idempotent and never duplicates an identity.
func Merge(discovered, cached []m.Mutant) []m.Mutant {
	merged := make([]m.Mutant, len(cached))
	copy(merged, cached)

	index := make(map[m.Identity]int, len(cached))
	for i := range merged {
		index[merged[i].Identity()] = i
	}

	for _, mutant := range discovered {
		id := mutant.Identity()

		if at, ok := index[id]; ok {
			// Cache records carry no original line; backfill it from the
			// fresh scan so in-place reverts keep working.
			if merged[at].OriginalLine == "" {
				merged[at].OriginalLine = mutant.OriginalLine
			}

			continue
		}

		mutant.Status = m.StatusNotRun
		index[id] = len(merged)
		merged = append(merged, mutant)
	}

	return merged
}

// FilterUnresolved returns only the mutants that have never produced a
// verdict. Used by the skip-resolved fast path.
func FilterUnresolved(mutants []m.Mutant) []m.Mutant {
	unresolved := make([]m.Mutant, 0, len(mutants))

	for _, mutant := range mutants {
		if mutant.Status == m.StatusNotRun {
			unresolved = append(unresolved, mutant)
		}
	}

	return unresolved
}

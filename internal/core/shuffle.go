package core

import (
	"math/rand/v2"
	"strings"
)

// Shuffler partitions name lists into balanced random groups. It holds no
// room or connection state; the randomness source is pluggable so tests can
// inject a deterministic one.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler builds a shuffler over the given source. A nil source selects
// the shared, entropy-seeded generator.
func NewShuffler(src rand.Source) *Shuffler {
	s := &Shuffler{}
	if src != nil {
		s.rng = rand.New(src)
	}
	return s
}

// Teams shuffles names uniformly and slices them into contiguous groups of
// size. Blank names are discarded first; if nothing remains, a single empty
// group is returned. The final group may be smaller than size.
func (s *Shuffler) Teams(names []string, size int) [][]string {
	trimmed := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			trimmed = append(trimmed, n)
		}
	}
	if len(trimmed) == 0 {
		return [][]string{{}}
	}
	if size < 1 {
		size = 1
	}

	s.perm(trimmed)

	teams := make([][]string, 0, (len(trimmed)+size-1)/size)
	for start := 0; start < len(trimmed); start += size {
		end := min(start+size, len(trimmed))
		teams = append(teams, trimmed[start:end])
	}
	return teams
}

func (s *Shuffler) perm(names []string) {
	swap := func(i, j int) { names[i], names[j] = names[j], names[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(names), swap)
		return
	}
	rand.Shuffle(len(names), swap)
}

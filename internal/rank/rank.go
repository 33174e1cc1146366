// internal/rank/rank.go
//
// Read-only semantic rank oracle.
//
// Responsibilities:
//   - Hold the precomputed target→(word→rank) tables loaded at startup.
//   - Answer rank lookups for a (secret, word) pair.
//   - Supply the ascending nearest-neighbor list used for end-of-round reveals.
//   - Draw random target words for new rounds.
//
// The oracle is immutable after construction: loaders build the maps once and
// every accessor is a pure read, so it is safe to share across rooms without
// locking.
//
// Dataset invariants (enforced by New):
//   • every target has a rank table;
//   • every target's own word is present in its table at rank 1.
//
// A dataset violating these is a corrupt build artifact; New fails and the
// process should not start.

package rank

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
)

// Neighbor is one (word, rank) entry of a target's proximity table.
type Neighbor struct {
	Word string `json:"word"`
	Rank int    `json:"rank"`
}

// Oracle is the immutable rank lookup service.
type Oracle struct {
	targets   []string                  // normalized target words
	ranks     map[string]map[string]int // target → word → rank (1 = the target)
	neighbors map[string][]Neighbor     // target → table sorted ascending by rank
}

// New builds an Oracle from in-memory data, normalizing every word and
// validating the dataset invariants. Loaders and tests both come through here.
func New(targets []string, ranks map[string]map[string]int) (*Oracle, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("rank: empty target list")
	}

	o := &Oracle{
		ranks:     make(map[string]map[string]int, len(ranks)),
		neighbors: make(map[string][]Neighbor, len(ranks)),
	}

	for secret, table := range ranks {
		secret = Normalize(secret)
		normed := make(map[string]int, len(table))
		for w, r := range table {
			normed[Normalize(w)] = r
		}
		o.ranks[secret] = normed
	}

	for _, t := range targets {
		t = Normalize(t)
		table, ok := o.ranks[t]
		if !ok {
			return nil, fmt.Errorf("rank: target %q has no rank table", t)
		}
		if r, ok := table[t]; !ok || r != 1 {
			return nil, fmt.Errorf("rank: target %q is not rank 1 in its own table", t)
		}
		o.targets = append(o.targets, t)
	}

	// Precompute the sorted neighbor tables so reveals are a cheap slice.
	for secret, table := range o.ranks {
		ns := make([]Neighbor, 0, len(table))
		for w, r := range table {
			ns = append(ns, Neighbor{Word: w, Rank: r})
		}
		sort.Slice(ns, func(i, j int) bool {
			if ns[i].Rank != ns[j].Rank {
				return ns[i].Rank < ns[j].Rank
			}
			return ns[i].Word < ns[j].Word
		})
		o.neighbors[secret] = ns
	}

	return o, nil
}

// Rank returns the rank of word relative to secret (1 = the secret itself).
// The second return is false when the word is not in the secret's table or the
// secret is unknown. Callers pass normalized words; Rank normalizes again so a
// raw lookup is never wrong, just slightly slower.
func (o *Oracle) Rank(secret, word string) (int, bool) {
	table, ok := o.ranks[Normalize(secret)]
	if !ok {
		return 0, false
	}
	r, ok := table[Normalize(word)]
	return r, ok
}

// HasTarget reports whether secret has a rank table.
func (o *Oracle) HasTarget(secret string) bool {
	_, ok := o.ranks[Normalize(secret)]
	return ok
}

// Neighbors returns up to limit nearest words to secret, ascending by rank,
// excluding the secret itself. Returns nil for an unknown secret.
func (o *Oracle) Neighbors(secret string, limit int) []Neighbor {
	ns, ok := o.neighbors[Normalize(secret)]
	if !ok || limit <= 0 {
		return nil
	}
	out := make([]Neighbor, 0, limit)
	for _, n := range ns {
		if n.Rank == 1 {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Targets returns the normalized target words (do not mutate).
func (o *Oracle) Targets() []string { return o.targets }

// RandomTarget returns a cryptographically random target word.
func (o *Oracle) RandomTarget() string {
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(o.targets))))
	return o.targets[nBig.Int64()]
}

// Stats returns counts of loaded data: (targets, distinct ranked words).
func (o *Oracle) Stats() (targetCount int, wordCount int) {
	seen := make(map[string]struct{})
	for _, table := range o.ranks {
		for w := range table {
			seen[w] = struct{}{}
		}
	}
	return len(o.targets), len(seen)
}

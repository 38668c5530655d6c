package design

import (
	"maps"
	"slices"
)

// Candidates keeps legal design choices of every collection.
type Candidates struct {
	choices map[string][]Choice
}

// NewCandidates creates an empty candidate space.
func NewCandidates() *Candidates {
	return &Candidates{choices: make(map[string][]Choice)}
}

// Add appends legal choices for a collection. Duplicates are skipped.
func (c *Candidates) Add(collection string, choices ...Choice) {
	existing := c.choices[collection]
	for _, v := range choices {
		dup := slices.ContainsFunc(existing, func(e Choice) bool {
			return e.Equal(v)
		})
		if !dup {
			existing = append(existing, *v.clone())
		}
	}
	c.choices[collection] = existing
}

// For returns legal choices of a collection.
func (c *Candidates) For(collection string) []Choice {
	return c.choices[collection]
}

// Names returns sorted collection names of the candidate space.
func (c *Candidates) Names() []string {
	return slices.Sorted(maps.Keys(c.choices))
}

// Len returns the number of collections in the candidate space.
func (c *Candidates) Len() int {
	return len(c.choices)
}

// GetCandidates restricts the candidate space to exactly the given
// collections. Names without candidates are ignored.
func (c *Candidates) GetCandidates(names []string) *Candidates {
	res := NewCandidates()
	for _, v := range names {
		if ch, ok := c.choices[v]; ok {
			res.choices[v] = ch
		}
	}
	return res
}

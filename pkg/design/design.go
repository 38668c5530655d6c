// Package design provides the physical design of a database: a choice of
// shard key and index for every collection. This is a pure package.
package design

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Choice is a physical design of one collection.
type Choice struct {
	// ShardKey is the field the collection is sharded by. Empty means the
	// collection is not sharded.
	ShardKey string `json:"shard_key,omitempty" yaml:"shard_key,omitempty"`

	// Index contains keys of a compound index, leading key first. Empty
	// means no secondary index.
	Index []string `json:"index,omitempty" yaml:"index,omitempty"`
}

// Equal reports whether two choices describe the same design.
func (c Choice) Equal(other Choice) bool {
	return c.ShardKey == other.ShardKey && slices.Equal(c.Index, other.Index)
}

// String returns a compact human readable form of the choice.
func (c Choice) String() string {
	shard := c.ShardKey
	if shard == "" {
		shard = "-"
	}
	idx := "-"
	if len(c.Index) > 0 {
		idx = strings.Join(c.Index, ",")
	}
	return "shard:" + shard + " index:" + idx
}

func (c Choice) clone() *Choice {
	return &Choice{ShardKey: c.ShardKey, Index: slices.Clone(c.Index)}
}

// Design maps collection names to their chosen physical design. A collection
// without a choice is undecided (relaxed). A Design with all collections
// undecided is the maximal relaxation.
type Design struct {
	choices map[string]*Choice
}

// New creates a Design where all given collections are undecided.
func New(collections ...string) *Design {
	res := &Design{choices: make(map[string]*Choice, len(collections))}
	for _, v := range collections {
		res.choices[v] = nil
	}
	return res
}

// Set assigns a choice to a collection, adding the collection if needed.
func (d *Design) Set(collection string, c Choice) {
	d.choices[collection] = c.clone()
}

// Get returns the choice of a collection. The second value is false when
// the collection is unknown or undecided.
func (d *Design) Get(collection string) (Choice, bool) {
	c := d.choices[collection]
	if c == nil {
		return Choice{}, false
	}
	return *c.clone(), true
}

// Has reports whether the collection belongs to the design.
func (d *Design) Has(collection string) bool {
	_, ok := d.choices[collection]
	return ok
}

// Reset marks a collection as undecided.
func (d *Design) Reset(collection string) {
	if _, ok := d.choices[collection]; ok {
		d.choices[collection] = nil
	}
}

// IsRelaxed reports whether the collection is undecided.
func (d *Design) IsRelaxed(collection string) bool {
	return d.choices[collection] == nil
}

// Copy returns a deep clone of the design.
func (d *Design) Copy() *Design {
	res := &Design{choices: make(map[string]*Choice, len(d.choices))}
	for k, v := range d.choices {
		if v == nil {
			res.choices[k] = nil
			continue
		}
		res.choices[k] = v.clone()
	}
	return res
}

// Collections returns sorted names of all collections of the design.
func (d *Design) Collections() []string {
	return slices.Sorted(maps.Keys(d.choices))
}

// Undecided returns sorted names of relaxed collections.
func (d *Design) Undecided() []string {
	var res []string
	for _, k := range d.Collections() {
		if d.choices[k] == nil {
			res = append(res, k)
		}
	}
	return res
}

// Len returns the number of collections in the design.
func (d *Design) Len() int {
	return len(d.choices)
}

// Equal reports whether both designs have the same collections and
// choices.
func (d *Design) Equal(other *Design) bool {
	if len(d.choices) != len(other.choices) {
		return false
	}
	for k, v := range d.choices {
		ov, ok := other.choices[k]
		if !ok || (v == nil) != (ov == nil) {
			return false
		}
		if v != nil && !v.Equal(*ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the design as an object; undecided collections are
// null.
func (d *Design) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.choices)
}

// UnmarshalJSON decodes the object created by MarshalJSON.
func (d *Design) UnmarshalJSON(data []byte) error {
	choices := make(map[string]*Choice)
	if err := json.Unmarshal(data, &choices); err != nil {
		return err
	}
	d.choices = choices
	return nil
}

// MarshalYAML encodes the design as a mapping; undecided collections are
// null.
func (d *Design) MarshalYAML() (any, error) {
	return d.choices, nil
}

// UnmarshalYAML decodes the mapping created by MarshalYAML.
func (d *Design) UnmarshalYAML(value *yaml.Node) error {
	choices := make(map[string]*Choice)
	if err := value.Decode(&choices); err != nil {
		return err
	}
	d.choices = choices
	return nil
}

// Package workload describes a database workload: collections, candidate
// physical designs and weighted operations. This is a pure package.
package workload

import (
	"maps"
	"slices"

	"github.com/gnames/lnsdesign/pkg/design"
)

// OpKind is the type of a workload operation.
type OpKind string

const (
	OpQuery  OpKind = "query"
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// IsWrite reports whether the operation modifies documents.
func (k OpKind) IsWrite() bool {
	return k == OpInsert || k == OpUpdate || k == OpDelete
}

// Valid reports whether the kind is one of known operation kinds.
func (k OpKind) Valid() bool {
	return k == OpQuery || k.IsWrite()
}

// Operation is a weighted operation of the workload.
type Operation struct {
	// Collection the operation touches.
	Collection string
	// Kind of the operation.
	Kind OpKind
	// Fields used by the operation predicate.
	Fields []string
	// Weight is the relative frequency of the operation.
	Weight float64
}

// Collection keeps statistics of a collection.
type Collection struct {
	Name     string
	DocCount int
}

// Workload is the input of the design search.
type Workload struct {
	// Collections by name.
	Collections map[string]Collection
	// Candidates are legal design choices of every collection.
	Candidates *design.Candidates
	// Operations of the workload.
	Operations []Operation
}

// New creates an empty workload.
func New() *Workload {
	return &Workload{
		Collections: make(map[string]Collection),
		Candidates:  design.NewCandidates(),
	}
}

// Names returns sorted collection names.
func (w *Workload) Names() []string {
	return slices.Sorted(maps.Keys(w.Collections))
}

// OperationsOf returns operations of one collection.
func (w *Workload) OperationsOf(collection string) []Operation {
	var res []Operation
	for _, v := range w.Operations {
		if v.Collection == collection {
			res = append(res, v)
		}
	}
	return res
}

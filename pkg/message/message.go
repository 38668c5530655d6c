// Package message defines messages exchanged between the orchestrator and
// search workers, and the channel abstraction that carries them.
//
// Message is a sum type: every kind is a separate struct implementing the
// sealed Message interface. Receivers dispatch with a type switch.
package message

import (
	"time"

	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/design"
)

// Kind enumerates message kinds.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindInit
	KindLoad
	KindExecute
	KindStop
	KindEmpty
	KindSearchProgress
	KindExecuteCompleted
)

var kindNames = map[Kind]string{
	KindUnrecognized:     "UNRECOGNIZED",
	KindInit:             "INIT",
	KindLoad:             "LOAD",
	KindExecute:          "EXECUTE",
	KindStop:             "STOP",
	KindEmpty:            "EMPTY",
	KindSearchProgress:   "SEARCH_PROGRESS",
	KindExecuteCompleted: "EXECUTE_COMPLETED",
}

// String returns the wire header of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnrecognized]
}

// KindFromHeader converts a wire header to Kind. Unknown headers give
// KindUnrecognized.
func KindFromHeader(h string) Kind {
	for k, v := range kindNames {
		if v == h {
			return k
		}
	}
	return KindUnrecognized
}

// Message is implemented by all message kinds.
type Message interface {
	Kind() Kind
	isMessage()
}

// Init starts a worker. It carries the configuration and the identifier
// the worker uses in its upstream messages.
type Init struct {
	Config   *config.Config `json:"config"`
	WorkerID string         `json:"worker_id"`
}

// Load asks the worker to prepare its problem.
type Load struct{}

// Execute asks the worker to run the search.
type Execute struct{}

// Stop is accepted by workers but has no effect.
type Stop struct{}

// Empty is a no-op message.
type Empty struct{}

// SearchProgress is sent by a search worker before every subproblem.
type SearchProgress struct {
	// RelaxedNames are the collections relaxed in this iteration.
	RelaxedNames []string `json:"relaxed_names"`
	// SubBudget is the time allowance of the subproblem.
	SubBudget time.Duration `json:"sub_budget"`
	// Relaxed is a snapshot of the relaxed design.
	Relaxed *design.Design `json:"relaxed"`
	// UsedTime is the solver time the worker consumed so far.
	UsedTime time.Duration `json:"used_time"`
	// StallTime is the time since the last improvement.
	StallTime time.Duration `json:"stall_time"`
	// WorkerID identifies the sender.
	WorkerID string `json:"worker_id"`
}

// ExecuteCompleted is sent by a worker when its search terminates.
type ExecuteCompleted struct {
	WorkerID string `json:"worker_id"`
}

// Unrecognized stands for a message with an unknown header. It is created
// by decoders only.
type Unrecognized struct {
	Header string `json:"header"`
}

func (Init) Kind() Kind             { return KindInit }
func (Load) Kind() Kind             { return KindLoad }
func (Execute) Kind() Kind          { return KindExecute }
func (Stop) Kind() Kind             { return KindStop }
func (Empty) Kind() Kind            { return KindEmpty }
func (SearchProgress) Kind() Kind   { return KindSearchProgress }
func (ExecuteCompleted) Kind() Kind { return KindExecuteCompleted }
func (Unrecognized) Kind() Kind     { return KindUnrecognized }

func (Init) isMessage()             {}
func (Load) isMessage()             {}
func (Execute) isMessage()          {}
func (Stop) isMessage()             {}
func (Empty) isMessage()            {}
func (SearchProgress) isMessage()   {}
func (ExecuteCompleted) isMessage() {}
func (Unrecognized) isMessage()     {}

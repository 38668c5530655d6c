package lns

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

// ErrInvalidArgument is wrapped by errors about impossible sample sizes.
var ErrInvalidArgument = errors.New("invalid argument")

func InvalidArgumentError(k, n int) error {
	msg := "Cannot sample <em>%d</em> out of <em>%d</em> collections"
	vars := []any{k, n}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SearchInvalidArgumentError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: sample %d of %d: %w",
			fn.Name(), k, n, ErrInvalidArgument),
	}
}

func SolverFailureError(workerID string, err error) error {
	msg := "Subproblem solver failed for worker <em>%s</em>"
	vars := []any{workerID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SearchSolverFailureError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: solver failure: %w",
			fn.Name(), err),
	}
}

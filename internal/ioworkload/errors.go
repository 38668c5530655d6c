package ioworkload

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

func FileNotFoundError(path string, err error) error {
	msg := "Workload file <em>%s</em> does not exist"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WorkloadFileNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: workload file not found: %w",
			fn.Name(), err),
	}
}

func OpenError(path string, err error) error {
	msg := "Cannot open workload database <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WorkloadOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open workload %s: %w",
			fn.Name(), path, err),
	}
}

func ReadError(table string, err error) error {
	msg := "Cannot read workload table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WorkloadReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read table %s: %w",
			fn.Name(), table, err),
	}
}

func WriteError(path string, err error) error {
	msg := "Cannot write workload to <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WorkloadWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write workload %s: %w",
			fn.Name(), path, err),
	}
}

func NoCandidatesError(collection string) error {
	msg := "Collection <em>%s</em> has no candidate designs"
	vars := []any{collection}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WorkloadNoCandidatesError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: no candidates for %s",
			fn.Name(), collection),
	}
}

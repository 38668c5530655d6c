package ioworker

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

var ErrNotLoaded = errors.New("workload is not loaded")

func NotLoadedError(workerID string) error {
	msg := "Worker <em>%s</em> received EXECUTE before LOAD"
	vars := []any{workerID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WorkerNotLoadedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), ErrNotLoaded),
	}
}

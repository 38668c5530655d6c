package ioorchestrator

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

func NoDesignError(runID string) error {
	msg := "Search run <em>%s</em> did not produce a design"
	vars := []any{runID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SearchNoCollectionsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: no design in run %s", fn.Name(), runID),
	}
}

package iostore

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

func NotConnectedError() error {
	msg := "Cannot save search run without database connection"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: not connected to database", fn.Name()),
	}
}

func SaveRunError(runID string, err error) error {
	msg := "Cannot save search run <em>%s</em>"
	vars := []any{runID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBSaveRunError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot save run %s: %w",
			fn.Name(), runID, err),
	}
}

package iocost

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

// ErrCacheNotOpen is returned when the cost cache is used before Open.
var ErrCacheNotOpen = errors.New("cost cache is not open")

// CacheOpenError is returned when Badger cannot open the cost cache.
type CacheOpenError struct {
	error
	gnlib.MessageBase
}

// NewCacheOpenError creates an error for a cost cache that cannot be
// opened.
func NewCacheOpenError(dir string, err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Open Cost Cache</title>
<warn>Failed to open the cost cache at %s.</warn>

<em>How to fix:</em>
  1. Make sure no other lnsdesign process uses the same cache
  2. Remove the directory and try again
  3. Check free disk space
`,
		Vars: []any{dir},
	}

	return CacheOpenError{
		error:       fmt.Errorf("failed to open cost cache %s: %w", dir, err),
		MessageBase: msgBase,
	}
}

func CacheDirError(dir string, err error) error {
	msg := "Cannot prepare cost cache directory <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CostCacheOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot prepare %s: %w",
			fn.Name(), dir, err),
	}
}

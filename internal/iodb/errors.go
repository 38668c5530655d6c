package iodb

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/gnames/lnsdesign/pkg/errcode"
)

// ErrNotConnected is wrapped by errors of operations that need a
// connection pool.
var ErrNotConnected = errors.New("not connected to database")

// ConnectionError is returned when database connection fails.
type ConnectionError struct {
	error
	gnlib.MessageBase
}

// NewConnectionError creates a connection error with user-friendly message.
func NewConnectionError(host string, port int, database, user string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Database Connection Failed</title>

<warning>Could not connect to PostgreSQL database.</warning>

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>

  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>

  3. Check your configuration file:
     <em>~/.config/lnsdesign/config.yaml</em>

  4. Review connection settings:
     Host: %s
     Port: %d
     Database: %s
     User: %s
`,
		[]any{
			host, port,
			host, user,
			host, port, database, user,
		},
	)

	return ConnectionError{
		error:       fmt.Errorf("failed to connect to %s:%d/%s: %w", host, port, database, cause),
		MessageBase: userBase,
	}
}

func NotConnectedError() error {
	msg := "Database operation attempted without connection"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), ErrNotConnected),
	}
}

func TableCheckError(table string, err error) error {
	msg := "Cannot check table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBTableCheckError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot check table %s: %w",
			fn.Name(), table, err),
	}
}

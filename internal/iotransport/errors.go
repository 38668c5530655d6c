package iotransport

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/errcode"
	"github.com/gnames/lnsdesign/pkg/message"
)

func NoWorkerError(kind message.Kind) error {
	msg := "Received <em>%s</em> before INIT"
	vars := []any{kind.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TransportNoWorkerError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s without initialized worker",
			fn.Name(), kind),
	}
}

func UnknownBenchmarkError(name string, err error) error {
	msg := "Unknown benchmark <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TransportUnknownBenchmarkError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}

func ChannelError(err error) error {
	msg := "Message channel failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TransportChannelError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: channel failure: %w", fn.Name(), err),
	}
}

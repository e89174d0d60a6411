package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/dop251/goja"
)

// ScriptResult is what a driver script leaves behind.
type ScriptResult struct {
	// Value is the completion value of the script, exported to Go.
	Value any
	// Remaining holds outputs the script never read.
	Remaining []int64
	// RunErr is the machine's error once its input was closed, if any.
	RunErr error
}

// RunScript drives program with a JavaScript host. The script sees:
//
//	send(v, ...)         queue input values
//	sendText(s)          queue s as ASCII, newline terminated
//	recv()               next output, or null once the machine stopped
//	exchange(n, v, ...)  send the values, then read n outputs
//	text(values)         decode ASCII output values
//	close()              close the input
//	print(...)           write a line to out
//
// When the script returns, the input is closed and the rest of the output
// collected.
func RunScript(ctx context.Context, program []int64, src string, capacity int, out io.Writer) (*ScriptResult, error) {
	c, err := NewController(ctx, program, capacity)
	if err != nil {
		return nil, err
	}
	m := c.Machine()
	vm := goja.New()

	throw := func(err error) {
		panic(vm.NewGoError(err))
	}
	ints := func(args []goja.Value) []int64 {
		values := make([]int64, 0, len(args))
		for _, a := range args {
			switch arr := a.Export().(type) {
			case []any:
				for _, x := range arr {
					values = append(values, vm.ToValue(x).ToInteger())
				}
			case []int64:
				values = append(values, arr...)
			default:
				values = append(values, a.ToInteger())
			}
		}
		return values
	}

	vm.Set("send", func(call goja.FunctionCall) goja.Value {
		for _, v := range ints(call.Arguments) {
			if err := m.In.Send(ctx, v); err != nil {
				throw(err)
			}
		}
		return goja.Undefined()
	})
	vm.Set("sendText", func(call goja.FunctionCall) goja.Value {
		for _, v := range EncodeASCII(call.Argument(0).String()) {
			if err := m.In.Send(ctx, v); err != nil {
				throw(err)
			}
		}
		return goja.Undefined()
	})
	vm.Set("recv", func(call goja.FunctionCall) goja.Value {
		v, err := m.Out.Recv(ctx)
		if errors.Is(err, vmerrors.ErrChannelClosed) {
			return goja.Null()
		}
		if err != nil {
			throw(err)
		}
		return vm.ToValue(v)
	})
	vm.Set("exchange", func(call goja.FunctionCall) goja.Value {
		n := int(call.Argument(0).ToInteger())
		values, err := c.Exchange(ctx, n, ints(call.Arguments[min(1, len(call.Arguments)):])...)
		if err != nil {
			throw(err)
		}
		return vm.ToValue(values)
	})
	vm.Set("text", func(call goja.FunctionCall) goja.Value {
		s, _ := DecodeASCII(ints(call.Arguments))
		return vm.ToValue(s)
	})
	vm.Set("close", func(call goja.FunctionCall) goja.Value {
		m.In.Close()
		return goja.Undefined()
	})
	vm.Set("print", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
		return goja.Undefined()
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	value, scriptErr := vm.RunString(src)
	if scriptErr != nil {
		c.Close()
		log.Debug(log.HostMonitoring, "script failed", "err", scriptErr)
		return nil, fmt.Errorf("script: %w", scriptErr)
	}

	res := &ScriptResult{Value: value.Export()}
	res.Remaining, res.RunErr = c.Outputs(ctx)
	return res, nil
}

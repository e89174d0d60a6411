package host

import (
	"context"
	"errors"

	"github.com/colorfulnotion/intcode/log"
)

// Repeat keeps m running: every time the program halts it is reloaded and
// run again on the same channels. fn drives the machine through m.In and
// m.Out; when fn returns the machine is stopped and fn's error returned. A
// run that fails ends the loop, closes both channel ends, cancels fn's
// context and takes precedence over fn's result.
func Repeat(ctx context.Context, m *Machine, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() {
		err := m.repeat(ctx)
		if err != nil {
			cancel()
		}
		loopErr <- err
	}()

	err := fn(ctx)
	cancel()
	if lerr := <-loopErr; lerr != nil && !errors.Is(lerr, context.Canceled) {
		return lerr
	}
	return err
}

func (m *Machine) repeat(ctx context.Context) error {
	for {
		if err := m.VM.Run(ctx); err != nil {
			m.stop()
			return err
		}
		m.runs.Add(1)
		if err := m.VM.Reload(); err != nil {
			m.stop()
			return err
		}
		log.Trace(log.HostMonitoring, "restarted", "id", m.VM.Identifier, "runs", m.runs.Load())
	}
}

// Package host wires Intcode machines to channels and to each other.
package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
)

// Sink is an outbound end the machine owns and closes when it stops.
type Sink interface {
	intcode.Output
	Close() error
}

// Machine is a VM together with the channel ends the host uses to drive it.
// In and Out are nil when the machine is wired to other machines instead.
type Machine struct {
	VM  *intcode.VM
	In  *intcode.Sender
	Out *intcode.Receiver

	sink  Sink
	inbox *intcode.Receiver
	runs atomic.Uint64
	once sync.Once
	done chan struct{}
	err  error
}

// NewIO returns a machine with a fresh inbound and outbound channel of the
// given capacity. A negative capacity selects intcode.DefaultChannelCapacity.
func NewIO(capacity int) *Machine {
	inTx, inRx := intcode.NewChannel(capacity)
	outTx, outRx := intcode.NewChannel(capacity)
	m := Wire(inRx, outTx)
	m.inbox = inRx
	m.In = inTx
	m.Out = outRx
	return m
}

// Wire returns a machine reading from in and writing to out. out is closed
// when the machine stops, which downstream readers see as end-of-stream.
func Wire(in intcode.Input, out Sink) *Machine {
	return &Machine{
		VM:   intcode.New(in, out),
		sink: out,
		done: make(chan struct{}),
	}
}

// Load loads program into the VM.
func (m *Machine) Load(program []int64) error {
	return m.VM.LoadProgram(program)
}

// Run executes the loaded program on the calling goroutine and closes the
// outbound end afterwards, whether or not the run succeeded. A machine from
// NewIO also closes its inbound end, so host sends fail instead of
// blocking on a machine that will never read them.
func (m *Machine) Run(ctx context.Context) error {
	err := m.VM.Run(ctx)
	m.runs.Add(1)
	m.stop()
	return err
}

// Start runs the machine on its own goroutine. Use Wait for the result.
func (m *Machine) Start(ctx context.Context) {
	m.once.Do(func() {
		go func() {
			m.err = m.Run(ctx)
			close(m.done)
		}()
	})
}

// Wait blocks until a machine started with Start has stopped.
func (m *Machine) Wait() error {
	<-m.done
	return m.err
}

// Runs is the number of completed runs, counting restarts under Repeat.
func (m *Machine) Runs() uint64 {
	return m.runs.Load()
}

// stop releases both channel ends the machine owns.
func (m *Machine) stop() {
	if m.inbox != nil {
		m.inbox.Close()
	}
	if m.sink == nil {
		return
	}
	if err := m.sink.Close(); err != nil {
		log.Warn(log.HostMonitoring, "close output", "id", m.VM.Identifier, "err", err)
	}
}

// Feed queues inputs and closes the input. The machine must have been
// created with enough capacity, or be running, for the sends to complete.
func (m *Machine) Feed(ctx context.Context, inputs ...int64) error {
	for _, v := range inputs {
		if err := m.In.Send(ctx, v); err != nil {
			return fmt.Errorf("queue input: %w", err)
		}
	}
	return m.In.Close()
}

// Collect starts the machine, drains its output and waits for it to stop.
// Outputs written before a failure are returned along with the error.
func (m *Machine) Collect(ctx context.Context) ([]int64, error) {
	m.Start(ctx)
	out, derr := m.Out.Drain(ctx)
	if err := m.Wait(); err != nil {
		return out, err
	}
	return out, derr
}

// InputCapacity is a channel capacity large enough to queue inputs up front.
func InputCapacity(inputs int) int {
	if inputs > intcode.DefaultChannelCapacity {
		return inputs
	}
	return intcode.DefaultChannelCapacity
}

// RunProgram runs program once with inputs queued up front and returns
// every value it writes.
func RunProgram(ctx context.Context, program []int64, inputs ...int64) ([]int64, error) {
	m := NewIO(InputCapacity(len(inputs)))
	if err := m.Load(program); err != nil {
		return nil, err
	}
	if err := m.Feed(ctx, inputs...); err != nil {
		return nil, err
	}
	return m.Collect(ctx)
}

package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Controller drives a running machine in lockstep: the host writes some
// inputs, then reads a known number of outputs.
type Controller struct {
	m *Machine
}

// NewController loads program into a fresh machine and starts it.
func NewController(ctx context.Context, program []int64, capacity int) (*Controller, error) {
	m := NewIO(capacity)
	if err := m.Load(program); err != nil {
		return nil, err
	}
	m.Start(ctx)
	return &Controller{m: m}, nil
}

// Machine returns the controlled machine.
func (c *Controller) Machine() *Machine { return c.m }

// Exchange sends inputs and then reads exactly n outputs. If the machine
// stops before taking the inputs or producing the outputs, the run error
// is returned; a clean halt gives vmerrors.ErrChannelClosed.
func (c *Controller) Exchange(ctx context.Context, n int, inputs ...int64) ([]int64, error) {
	for _, v := range inputs {
		err := c.m.In.Send(ctx, v)
		if errors.Is(err, vmerrors.ErrChannelClosed) {
			if werr := c.m.Wait(); werr != nil {
				return nil, werr
			}
		}
		if err != nil {
			return nil, fmt.Errorf("send input: %w", err)
		}
	}
	out := make([]int64, 0, n)
	for len(out) < n {
		v, err := c.m.Out.Recv(ctx)
		if errors.Is(err, vmerrors.ErrChannelClosed) {
			if werr := c.m.Wait(); werr != nil {
				return out, werr
			}
			return out, fmt.Errorf("machine halted after %d of %d outputs: %w", len(out), n, err)
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Outputs closes the input, drains what the machine still writes and
// waits for it to stop.
func (c *Controller) Outputs(ctx context.Context) ([]int64, error) {
	c.m.In.Close()
	out, derr := c.m.Out.Drain(ctx)
	if derr != nil {
		return out, derr
	}
	return out, c.m.Wait()
}

// Close abandons the machine: its input is closed and its output receiver
// dropped, so a blocked machine fails instead of hanging.
func (c *Controller) Close() error {
	c.m.In.Close()
	c.m.Out.Close()
	return nil
}

package intcode

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// DefaultChannelCapacity is the buffer size used when wiring VMs together.
const DefaultChannelCapacity = 50

// Input is what an Input instruction reads from.
type Input interface {
	Recv(ctx context.Context) (int64, error)
}

// Output is what an Output instruction writes to.
type Output interface {
	Send(ctx context.Context, v int64) error
}

// channel is the bounded FIFO shared by one or more Senders and a Receiver.
type channel struct {
	buf      chan int64
	senders  atomic.Int32
	sendDone chan struct{} // closed once every Sender is closed
	recvDone chan struct{} // closed once the Receiver is closed
	recvOnce sync.Once
}

// Sender is the write end of a channel. Clone hands out further write
// handles; the channel reports end-of-stream once all of them are closed.
type Sender struct {
	ch     *channel
	closed atomic.Bool
}

// Receiver is the read end of a channel.
type Receiver struct {
	ch *channel
}

// NewChannel returns both ends of a channel buffering up to capacity values.
// A negative capacity selects DefaultChannelCapacity; zero gives an
// unbuffered handoff.
func NewChannel(capacity int) (*Sender, *Receiver) {
	if capacity < 0 {
		capacity = DefaultChannelCapacity
	}
	ch := &channel{
		buf:      make(chan int64, capacity),
		sendDone: make(chan struct{}),
		recvDone: make(chan struct{}),
	}
	ch.senders.Store(1)
	return &Sender{ch: ch}, &Receiver{ch: ch}
}

// Send enqueues v, blocking while the buffer is full. It fails with
// vmerrors.ErrChannelClosed when this handle or the receiver is closed.
func (s *Sender) Send(ctx context.Context, v int64) error {
	if s.closed.Load() {
		return vmerrors.ErrChannelClosed
	}
	select {
	case <-s.ch.recvDone:
		return vmerrors.ErrChannelClosed
	default:
	}
	select {
	case s.ch.buf <- v:
		return nil
	case <-s.ch.recvDone:
		return vmerrors.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clone returns another write handle on the same channel. Cloning a closed
// handle yields a closed handle.
func (s *Sender) Clone() *Sender {
	if s.closed.Load() {
		c := &Sender{ch: s.ch}
		c.closed.Store(true)
		return c
	}
	s.ch.senders.Add(1)
	return &Sender{ch: s.ch}
}

// Close releases this handle. Closing twice is a no-op.
func (s *Sender) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.ch.senders.Add(-1) == 0 {
		close(s.ch.sendDone)
	}
	return nil
}

// Recv dequeues the oldest value, blocking while the buffer is empty and a
// sender is still open. Buffered values are still delivered after the last
// sender closes; after that Recv returns vmerrors.ErrChannelClosed.
func (r *Receiver) Recv(ctx context.Context) (int64, error) {
	select {
	case v := <-r.ch.buf:
		return v, nil
	default:
	}
	select {
	case v := <-r.ch.buf:
		return v, nil
	case <-r.ch.sendDone:
		select {
		case v := <-r.ch.buf:
			return v, nil
		default:
			return 0, vmerrors.ErrChannelClosed
		}
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// TryRecv returns a buffered value without blocking. ok is false when
// nothing is buffered.
func (r *Receiver) TryRecv() (v int64, ok bool) {
	select {
	case v = <-r.ch.buf:
		return v, true
	default:
		return 0, false
	}
}

// Drain receives until end-of-stream and returns everything read.
func (r *Receiver) Drain(ctx context.Context) ([]int64, error) {
	var out []int64
	for {
		v, err := r.Recv(ctx)
		if err == vmerrors.ErrChannelClosed {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Close tells senders nobody is listening; their next Send fails.
func (r *Receiver) Close() error {
	r.ch.recvOnce.Do(func() { close(r.ch.recvDone) })
	return nil
}

// Len is the number of buffered values.
func (r *Receiver) Len() int { return len(r.ch.buf) }

// Cap is the buffer capacity.
func (r *Receiver) Cap() int { return cap(r.ch.buf) }

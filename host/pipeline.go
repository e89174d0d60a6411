package host

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/log"
	"golang.org/x/sync/errgroup"
)

var ErrNoOutput = errors.New("amplifier chain produced no output")

// tap forwards to a Sender and remembers what went through it.
type tap struct {
	*intcode.Sender
	mu    sync.Mutex
	count int
	last  int64
}

func (t *tap) Send(ctx context.Context, v int64) error {
	if err := t.Sender.Send(ctx, v); err != nil {
		return err
	}
	t.mu.Lock()
	t.count++
	t.last = v
	t.mu.Unlock()
	return nil
}

func (t *tap) snapshot() (int, int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count, t.last
}

// Stage is the outcome of one amplifier in a chain.
type Stage struct {
	Name    string
	Phase   int64
	Steps   uint64
	State   intcode.OperationState
	Outputs int
	Last    int64
	Err     error
}

// AmplifierRun describes one pass over an amplifier chain.
type AmplifierRun struct {
	Phases   []int64
	Signal   int64
	Feedback bool
	Output   int64
	Stages   []Stage
}

func stageName(i int) string {
	if i < 26 {
		return fmt.Sprintf("amp-%c", 'a'+i)
	}
	return fmt.Sprintf("amp-%d", i)
}

// RunAmplifiers runs one copy of program per phase, each amplifier's output
// feeding the next one's input. Every amplifier first reads its phase and
// the first one then reads signal. With feedback the last amplifier feeds
// the first and the chain runs until every copy halts.
func RunAmplifiers(ctx context.Context, program []int64, phases []int64, signal int64, feedback bool) (*AmplifierRun, error) {
	n := len(phases)
	if n == 0 {
		return nil, errors.New("amplifier chain needs at least one phase")
	}

	// links[i] feeds amplifier i; the host keeps one sender per link for
	// priming and releases it before the chain runs.
	txs := make([]*intcode.Sender, n+1)
	rxs := make([]*intcode.Receiver, n+1)
	for i := range txs {
		txs[i], rxs[i] = intcode.NewChannel(intcode.DefaultChannelCapacity)
	}

	taps := make([]*tap, n)
	amps := make([]*Machine, n)
	for i := 0; i < n; i++ {
		next := i + 1
		if feedback && next == n {
			next = 0
		}
		taps[i] = &tap{Sender: txs[next].Clone()}
		amps[i] = Wire(rxs[i], taps[i])
		amps[i].VM.Identifier = stageName(i)
		if err := amps[i].Load(program); err != nil {
			return nil, err
		}
	}

	for i, phase := range phases {
		if err := txs[i].Send(ctx, phase); err != nil {
			return nil, fmt.Errorf("prime %s: %w", stageName(i), err)
		}
	}
	if err := txs[0].Send(ctx, signal); err != nil {
		return nil, fmt.Errorf("inject signal: %w", err)
	}
	for _, tx := range txs {
		tx.Close()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, amp := range amps {
		amp := amp
		g.Go(func() error { return amp.Run(gctx) })
	}
	if !feedback {
		g.Go(func() error {
			_, err := rxs[n].Drain(gctx)
			return err
		})
	}
	runErr := g.Wait()

	run := &AmplifierRun{
		Phases:   append([]int64(nil), phases...),
		Signal:   signal,
		Feedback: feedback,
		Stages:   make([]Stage, n),
	}
	for i, amp := range amps {
		count, last := taps[i].snapshot()
		run.Stages[i] = Stage{
			Name:    stageName(i),
			Phase:   phases[i],
			Steps:   amp.VM.Steps(),
			State:   amp.VM.State(),
			Outputs: count,
			Last:    last,
		}
	}
	if runErr != nil {
		for i := range run.Stages {
			if run.Stages[i].State == intcode.Failed {
				run.Stages[i].Err = runErr
			}
		}
		return run, runErr
	}

	count, last := taps[n-1].snapshot()
	if count == 0 {
		return run, ErrNoOutput
	}
	run.Output = last
	log.Debug(log.HostMonitoring, "amplifiers done", "phases", phases, "feedback", feedback, "output", last)
	return run, nil
}

// Amplify returns the last value written by the last amplifier.
func Amplify(ctx context.Context, program []int64, phases []int64, signal int64, feedback bool) (int64, error) {
	run, err := RunAmplifiers(ctx, program, phases, signal, feedback)
	if err != nil {
		return 0, err
	}
	return run.Output, nil
}

// MaxSignal tries every ordering of phaseOptions and returns the highest
// output together with the ordering that produced it. Ties go to the
// ordering Permutations lists first.
func MaxSignal(ctx context.Context, program []int64, phaseOptions []int64, signal int64, feedback bool) (int64, []int64, error) {
	sweep, err := SignalSweep(ctx, program, phaseOptions, signal, feedback)
	if err != nil {
		return 0, nil, err
	}
	best := sweep.Best()
	return best.Output, best.Phases, nil
}

// SignalSweep runs the chain once per ordering of phaseOptions. Orderings
// run concurrently, bounded by GOMAXPROCS.
func SignalSweep(ctx context.Context, program []int64, phaseOptions []int64, signal int64, feedback bool) (Sweep, error) {
	orders := Permutations(phaseOptions)
	sweep := make(Sweep, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, order := range orders {
		i, order := i, order
		g.Go(func() error {
			out, err := Amplify(gctx, program, order, signal, feedback)
			if err != nil {
				return fmt.Errorf("phases %v: %w", order, err)
			}
			sweep[i] = SweepPoint{Phases: order, Output: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sweep, nil
}

// Permutations returns every ordering of xs in lexicographic order of
// position. The input is not modified.
func Permutations(xs []int64) [][]int64 {
	if len(xs) == 0 {
		return [][]int64{{}}
	}
	var out [][]int64
	for i := range xs {
		rest := make([]int64, 0, len(xs)-1)
		rest = append(rest, xs[:i]...)
		rest = append(rest, xs[i+1:]...)
		for _, p := range Permutations(rest) {
			out = append(out, append([]int64{xs[i]}, p...))
		}
	}
	return out
}

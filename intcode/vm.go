package intcode

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// OperationState is the lifecycle stage of a VM.
type OperationState uint32

const (
	Preinit OperationState = iota // constructed, nothing loaded
	Ready                         // program loaded, registers reset
	Running                       // inside Run
	Exited                        // halted normally
	Failed                        // Run returned an error
)

func (s OperationState) String() string {
	switch s {
	case Preinit:
		return "preinit"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// cancelCheckInterval is how many instructions run between context checks
// when the program is not blocked on I/O.
const cancelCheckInterval = 4096

// VM is one Intcode machine. A VM is driven by a single goroutine; only
// State, Steps and Identifier may be read while Run is in progress.
type VM struct {
	mem          *Memory
	program      []int64
	pc           int64
	relativeBase int64
	state        atomic.Uint32
	steps        atomic.Uint64

	in  Input
	out Output

	// Identifier names the machine in logs and traces.
	Identifier string
	// Trace logs every decoded instruction on the vm module.
	Trace bool
}

// New returns a VM reading Input instructions from in and writing Output
// instructions to out. Either may be nil for programs that never use it;
// a nil end behaves as a closed channel.
func New(in Input, out Output) *VM {
	return &VM{
		mem: NewMemory(nil),
		in:  in,
		out: out,
	}
}

// Load parses program text into memory and resets the registers.
func (vm *VM) Load(text string) error {
	program, err := ParseProgram(text)
	if err != nil {
		return err
	}
	return vm.LoadProgram(program)
}

// LoadProgram loads an already parsed program. The slice is copied.
func (vm *VM) LoadProgram(program []int64) error {
	if vm.State() == Running {
		return fmt.Errorf("load while running: %w", vmerrors.ErrNotReady)
	}
	vm.program = append(vm.program[:0], program...)
	vm.mem = NewMemory(vm.program)
	vm.pc = 0
	vm.relativeBase = 0
	vm.steps.Store(0)
	vm.state.Store(uint32(Ready))
	log.Trace(log.VMMonitoring, "loaded", "id", vm.Identifier, "words", len(program))
	return nil
}

// Reload restores the most recently loaded program, discarding memory
// changes made by previous runs.
func (vm *VM) Reload() error {
	if vm.State() == Preinit {
		return fmt.Errorf("reload before load: %w", vmerrors.ErrNotReady)
	}
	return vm.LoadProgram(vm.program)
}

// Run executes from the program counter until Halt or an error. The context
// is checked at every channel operation and periodically in between.
func (vm *VM) Run(ctx context.Context) (err error) {
	if !vm.state.CompareAndSwap(uint32(Ready), uint32(Running)) {
		return fmt.Errorf("run in state %s: %w", vm.State(), vmerrors.ErrNotReady)
	}
	ctx, span := startRunSpan(ctx, vm)
	defer func() { endRunSpan(span, vm, err) }()

	for {
		if vm.steps.Load()%cancelCheckInterval == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return vm.fail(fmt.Errorf("run cancelled at pc %d: %w", vm.pc, cerr))
			}
		}
		inst, err := Decode(vm.mem, vm.pc)
		if err != nil {
			log.Warn(log.VMMonitoring, "decode failed", "id", vm.Identifier, "pc", vm.pc, "err", err)
			return vm.fail(err)
		}
		if vm.Trace {
			log.Trace(log.VMMonitoring, inst.String(), "id", vm.Identifier, "pc", vm.pc, "rb", vm.relativeBase)
		}
		vm.steps.Add(1)
		if inst.Opcode == HALT {
			vm.state.Store(uint32(Exited))
			log.Debug(log.VMMonitoring, "halted", "id", vm.Identifier, "pc", vm.pc, "steps", vm.steps.Load())
			return nil
		}
		if err := vm.step(ctx, inst); err != nil {
			return vm.fail(err)
		}
	}
}

func (vm *VM) fail(err error) error {
	vm.state.Store(uint32(Failed))
	if !errors.Is(err, context.Canceled) {
		log.Debug(log.VMMonitoring, "run failed", "id", vm.Identifier, "pc", vm.pc, "err", err)
	}
	return err
}

// State reports the lifecycle stage.
func (vm *VM) State() OperationState {
	return OperationState(vm.state.Load())
}

// Steps is the number of instructions executed since the last load.
func (vm *VM) Steps() uint64 {
	return vm.steps.Load()
}

// PC is the current program counter.
func (vm *VM) PC() int64 { return vm.pc }

// RelativeBase is the current relative base register.
func (vm *VM) RelativeBase() int64 { return vm.relativeBase }

// Read returns the memory cell at addr. Intended for use before or after Run.
func (vm *VM) Read(addr int64) (int64, error) {
	return vm.mem.Read(addr)
}

// Write patches the memory cell at addr. Intended for use before or after Run.
func (vm *VM) Write(addr, value int64) error {
	return vm.mem.Write(addr, value)
}

// Dump renders memory as comma separated text.
func (vm *VM) Dump() string {
	return vm.mem.Dump()
}

// Memory exposes the memory image for inspection.
func (vm *VM) Memory() *Memory {
	return vm.mem
}

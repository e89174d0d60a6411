package intcode

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs text to completion with inputs pre-queued and returns the VM
// and everything it wrote.
func execute(t *testing.T, text string, inputs ...int64) (*VM, []int64, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inTx, inRx := NewChannel(len(inputs))
	outTx, outRx := NewChannel(1024)
	for _, v := range inputs {
		require.NoError(t, inTx.Send(ctx, v))
	}
	require.NoError(t, inTx.Close())

	vm := New(inRx, outTx)
	require.NoError(t, vm.Load(text))
	runErr := vm.Run(ctx)
	require.NoError(t, outTx.Close())
	out, err := outRx.Drain(ctx)
	require.NoError(t, err)
	return vm, out, runErr
}

func TestVMArithmeticDumps(t *testing.T) {
	cases := []struct {
		program string
		want    string
	}{
		{"1,0,0,0,99", "2,0,0,0,99"},
		{"2,3,0,3,99", "2,3,0,6,99"},
		{"2,4,4,5,99,0", "2,4,4,5,99,9801"},
		{"1,1,1,4,99,5,6,0,99", "30,1,1,4,2,5,6,0,99"},
		{"1002,4,3,4,33", "1002,4,3,4,99"},
		{"1101,100,-1,4,0", "1101,100,-1,4,99"},
	}
	for _, tc := range cases {
		vm, out, err := execute(t, tc.program)
		require.NoError(t, err, tc.program)
		assert.Empty(t, out)
		assert.Equal(t, tc.want, vm.Dump(), tc.program)
		assert.Equal(t, Exited, vm.State())
	}
}

func TestVMQuine(t *testing.T) {
	program := "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
	want, err := ParseProgram(program)
	require.NoError(t, err)

	_, out, err := execute(t, program)
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestVMLargeNumbers(t *testing.T) {
	_, out, err := execute(t, "1102,34915192,34915192,7,4,7,99,0")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, strconv.FormatInt(out[0], 10), 16)

	_, out, err = execute(t, "104,1125899906842624,99")
	require.NoError(t, err)
	assert.Equal(t, []int64{1125899906842624}, out)
}

func TestVMComparisons(t *testing.T) {
	cases := []struct {
		program string
		input   int64
		want    int64
	}{
		{"3,9,8,9,10,9,4,9,99,-1,8", 8, 1},
		{"3,9,8,9,10,9,4,9,99,-1,8", 7, 0},
		{"3,9,7,9,10,9,4,9,99,-1,8", 5, 1},
		{"3,9,7,9,10,9,4,9,99,-1,8", 9, 0},
		{"3,3,1108,-1,8,3,4,3,99", 8, 1},
		{"3,3,1107,-1,8,3,4,3,99", 8, 0},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 0, 0},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", 5, 1},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", 0, 0},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", -3, 1},
	}
	for _, tc := range cases {
		_, out, err := execute(t, tc.program, tc.input)
		require.NoError(t, err, tc.program)
		assert.Equal(t, []int64{tc.want}, out, "%s <- %d", tc.program, tc.input)
	}
}

func TestVMCompareToEight(t *testing.T) {
	program := "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
		"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"
	for input, want := range map[int64]int64{7: 999, 8: 1000, 9: 1001} {
		_, out, err := execute(t, program, input)
		require.NoError(t, err)
		assert.Equal(t, []int64{want}, out)
	}
}

func TestVMRelativeBase(t *testing.T) {
	outTx, outRx := NewChannel(4)
	vm := New(nil, outTx)
	require.NoError(t, vm.Load("109,2000,109,19,204,-34,99"))
	require.NoError(t, vm.Write(1985, 42))
	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, int64(2019), vm.RelativeBase())

	v, ok := outRx.TryRecv()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
}

func TestVMMemoryGrowsOnWrite(t *testing.T) {
	vm, out, err := execute(t, "1101,5,6,1000,4,1000,99")
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, out)
	assert.GreaterOrEqual(t, vm.Memory().Len(), 1001)
}

func TestVMFarAddress(t *testing.T) {
	_, out, err := execute(t, "1101,5,6,1152921504606846976,4,1152921504606846976,99")
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, out)
}

func TestVMEcho(t *testing.T) {
	_, out, err := execute(t, "3,0,4,0,99", 314)
	require.NoError(t, err)
	assert.Equal(t, []int64{314}, out)
}

func TestVMErrors(t *testing.T) {
	cases := []struct {
		program string
		target  error
	}{
		{"98,0,99", vmerrors.ErrOpcodeParse},
		{"301,0,0,0,99", vmerrors.ErrAddressingMode},
		{"11101,1,1,0,99", vmerrors.ErrImmediateDestination},
		{"1,-1,0,0,99", vmerrors.ErrNegativeAddress},
		{"109,-5,1201,0,0,0,99", vmerrors.ErrNegativeAddress},
		{"1105,1,-2", vmerrors.ErrNegativeAddress},
		{"3,0,99", vmerrors.ErrInvalidInput},
	}
	for _, tc := range cases {
		vm, _, err := execute(t, tc.program)
		require.Error(t, err, tc.program)
		assert.True(t, errors.Is(err, tc.target), "%s: %v", tc.program, err)
		assert.Equal(t, Failed, vm.State(), tc.program)
	}
}

func TestVMInvalidInputReportsPC(t *testing.T) {
	_, out, err := execute(t, "3,9,4,9,3,9,4,9,99,0", 1)
	var ierr *InvalidInputError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, int64(4), ierr.PC)
	assert.Equal(t, []int64{1}, out)
}

func TestVMOutputClosed(t *testing.T) {
	outTx, outRx := NewChannel(1)
	require.NoError(t, outRx.Close())

	vm := New(nil, outTx)
	require.NoError(t, vm.Load("104,7,99"))
	err := vm.Run(context.Background())
	var oerr *OutputClosedError
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, int64(7), oerr.Value)

	vm = New(nil, nil)
	require.NoError(t, vm.Load("104,7,99"))
	assert.True(t, errors.Is(vm.Run(context.Background()), vmerrors.ErrOutputClosed))
}

func TestVMLifecycle(t *testing.T) {
	vm := New(nil, nil)
	assert.Equal(t, Preinit, vm.State())
	assert.True(t, errors.Is(vm.Run(context.Background()), vmerrors.ErrNotReady))
	assert.True(t, errors.Is(vm.Reload(), vmerrors.ErrNotReady))

	require.NoError(t, vm.Load("1,0,0,0,99"))
	assert.Equal(t, Ready, vm.State())

	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, Exited, vm.State())
	assert.Equal(t, uint64(2), vm.Steps())
	assert.Equal(t, int64(4), vm.PC())

	// a halted machine must be reloaded before it runs again
	assert.True(t, errors.Is(vm.Run(context.Background()), vmerrors.ErrNotReady))
}

func TestVMReloadIsDeterministic(t *testing.T) {
	vm := New(nil, nil)
	require.NoError(t, vm.Load("1,0,0,0,99"))
	require.NoError(t, vm.Run(context.Background()))
	first := vm.Dump()

	require.NoError(t, vm.Reload())
	assert.Equal(t, "1,0,0,0,99", vm.Dump())
	assert.Equal(t, uint64(0), vm.Steps())
	require.NoError(t, vm.Run(context.Background()))
	assert.Equal(t, first, vm.Dump())
}

func TestVMMultiStep(t *testing.T) {
	vm := New(nil, nil)
	require.NoError(t, vm.Load("1,9,10,3,2,3,11,0,99,30,40,50"))
	require.NoError(t, vm.Run(context.Background()))
	v, err := vm.Read(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), v)
}

func TestVMCancelBusyLoop(t *testing.T) {
	vm := New(nil, nil)
	require.NoError(t, vm.Load("1105,1,0"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := vm.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "%v", err)
	assert.Equal(t, Failed, vm.State())
	assert.Greater(t, vm.Steps(), uint64(0))
}

func TestVMBlocksOnInput(t *testing.T) {
	inTx, inRx := NewChannel(0)
	outTx, outRx := NewChannel(1)
	vm := New(inRx, outTx)
	require.NoError(t, vm.Load("3,0,1001,0,1,0,4,0,99"))

	done := make(chan error, 1)
	go func() { done <- vm.Run(context.Background()) }()

	require.Eventually(t, func() bool { return vm.State() == Running }, time.Second, time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("run returned before input: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, inTx.Send(context.Background(), 41))
	require.NoError(t, <-done)
	v, ok := outRx.TryRecv()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
}

func TestVMCancelWhileBlocked(t *testing.T) {
	_, inRx := NewChannel(1)
	vm := New(inRx, nil)
	require.NoError(t, vm.Load("3,0,99"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := vm.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "%v", err)
	assert.False(t, errors.Is(err, vmerrors.ErrInvalidInput))
}

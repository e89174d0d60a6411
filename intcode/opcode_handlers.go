package intcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// step executes one non-halt instruction and moves the program counter.
func (vm *VM) step(ctx context.Context, inst Instruction) error {
	switch inst.Opcode {
	case ADD, MULTIPLY, LESS_THAN, EQUALS:
		return vm.HandleThreeParams(inst)
	case INPUT:
		return vm.HandleInput(ctx, inst)
	case OUTPUT:
		return vm.HandleOutput(ctx, inst)
	case JUMP_IF_TRUE, JUMP_IF_FALSE:
		return vm.HandleJump(inst)
	case ADJUST_RELATIVE_BASE:
		return vm.HandleAdjustRelativeBase(inst)
	default:
		// Decode only returns opcodes present in shapes.
		return &OpcodeParseError{Word: inst.Word, PC: inst.PC}
	}
}

// value resolves a read-access parameter.
func (vm *VM) value(p Parameter) (int64, error) {
	switch p.Mode {
	case Immediate:
		return p.Value, nil
	case Position:
		return vm.mem.Read(p.Value)
	case Relative:
		return vm.mem.Read(vm.relativeBase + p.Value)
	}
	return 0, fmt.Errorf("parameter mode %d: %w", p.Mode, vmerrors.ErrAddressingMode)
}

// address resolves the write-access parameter i of inst.
func (vm *VM) address(inst Instruction, i int) (int64, error) {
	p := inst.Params[i]
	switch p.Mode {
	case Position:
		return p.Value, nil
	case Relative:
		return vm.relativeBase + p.Value, nil
	}
	return 0, &ImmediateDestinationError{Word: inst.Word, PC: inst.PC}
}

func (vm *VM) operands2(inst Instruction) (a, b int64, err error) {
	if a, err = vm.value(inst.Params[0]); err != nil {
		return 0, 0, err
	}
	if b, err = vm.value(inst.Params[1]); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// HandleThreeParams executes add, multiply, less-than and equals.
func (vm *VM) HandleThreeParams(inst Instruction) error {
	a, b, err := vm.operands2(inst)
	if err != nil {
		return err
	}
	dst, err := vm.address(inst, 2)
	if err != nil {
		return err
	}
	var result int64
	switch inst.Opcode {
	case ADD:
		result = a + b
	case MULTIPLY:
		result = a * b
	case LESS_THAN:
		result = boolToInt(a < b)
	case EQUALS:
		result = boolToInt(a == b)
	}
	if err := vm.mem.Write(dst, result); err != nil {
		return err
	}
	vm.pc += inst.Len()
	return nil
}

// HandleInput blocks until the inbound channel yields a value.
func (vm *VM) HandleInput(ctx context.Context, inst Instruction) error {
	dst, err := vm.address(inst, 0)
	if err != nil {
		return err
	}
	if vm.in == nil {
		return &InvalidInputError{PC: inst.PC}
	}
	v, err := vm.in.Recv(ctx)
	if errors.Is(err, vmerrors.ErrChannelClosed) {
		return &InvalidInputError{PC: inst.PC}
	}
	if err != nil {
		return fmt.Errorf("input at pc %d: %w", inst.PC, err)
	}
	if err := vm.mem.Write(dst, v); err != nil {
		return err
	}
	vm.pc += inst.Len()
	return nil
}

// HandleOutput blocks until the outbound channel accepts the value.
func (vm *VM) HandleOutput(ctx context.Context, inst Instruction) error {
	v, err := vm.value(inst.Params[0])
	if err != nil {
		return err
	}
	if vm.out == nil {
		return &OutputClosedError{PC: inst.PC, Value: v}
	}
	err = vm.out.Send(ctx, v)
	if errors.Is(err, vmerrors.ErrChannelClosed) {
		return &OutputClosedError{PC: inst.PC, Value: v}
	}
	if err != nil {
		return fmt.Errorf("output at pc %d: %w", inst.PC, err)
	}
	vm.pc += inst.Len()
	return nil
}

// HandleJump executes jump-if-true and jump-if-false. A taken jump sets the
// program counter directly.
func (vm *VM) HandleJump(inst Instruction) error {
	cond, target, err := vm.operands2(inst)
	if err != nil {
		return err
	}
	taken := cond != 0
	if inst.Opcode == JUMP_IF_FALSE {
		taken = !taken
	}
	if taken {
		vm.pc = target
	} else {
		vm.pc += inst.Len()
	}
	return nil
}

// HandleAdjustRelativeBase adds its operand to the relative base.
func (vm *VM) HandleAdjustRelativeBase(inst Instruction) error {
	v, err := vm.value(inst.Params[0])
	if err != nil {
		return err
	}
	vm.relativeBase += v
	vm.pc += inst.Len()
	return nil
}

package intcode

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// ProgramParseError reports a program token that is not a signed integer.
type ProgramParseError struct {
	Token string
	Index int
	Err   error
}

func (e *ProgramParseError) Error() string {
	return fmt.Sprintf("P1|ProgramParseError: token %d %q is not a base-10 integer", e.Index, e.Token)
}

func (e *ProgramParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{vmerrors.ErrProgramParse}
	}
	return []error{vmerrors.ErrProgramParse, e.Err}
}

// OpcodeParseError reports an instruction word with an unknown opcode.
type OpcodeParseError struct {
	Word int64
	PC   int64
}

func (e *OpcodeParseError) Error() string {
	return fmt.Sprintf("D1|OpcodeParseError: word %d at pc %d has no opcode %d", e.Word, e.PC, e.Word%100)
}

func (e *OpcodeParseError) Unwrap() error { return vmerrors.ErrOpcodeParse }

// AddressingModeError reports a mode digit outside {0, 1, 2}.
type AddressingModeError struct {
	Word  int64
	PC    int64
	Param int
	Digit int64
}

func (e *AddressingModeError) Error() string {
	return fmt.Sprintf("D2|AddressingModeError: word %d at pc %d has mode digit %d for parameter %d", e.Word, e.PC, e.Digit, e.Param)
}

func (e *AddressingModeError) Unwrap() error { return vmerrors.ErrAddressingMode }

// ImmediateDestinationError reports a write-class instruction whose
// destination parameter is in immediate mode.
type ImmediateDestinationError struct {
	Word int64
	PC   int64
}

func (e *ImmediateDestinationError) Error() string {
	return fmt.Sprintf("D3|ImmediateDestinationError: word %d at pc %d writes to an immediate", e.Word, e.PC)
}

func (e *ImmediateDestinationError) Unwrap() error { return vmerrors.ErrImmediateDestination }

// NegativeAddressError reports a read or write below address zero.
type NegativeAddressError struct {
	Addr int64
}

func (e *NegativeAddressError) Error() string {
	return fmt.Sprintf("M1|NegativeAddressError: address %d", e.Addr)
}

func (e *NegativeAddressError) Unwrap() error { return vmerrors.ErrNegativeAddress }

// InvalidInputError reports an Input instruction reading from an inbound
// channel that is closed and drained.
type InvalidInputError struct {
	PC int64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("IO1|InvalidInputError: input at pc %d from closed channel", e.PC)
}

func (e *InvalidInputError) Unwrap() error { return vmerrors.ErrInvalidInput }

// OutputClosedError reports an Output instruction whose outbound receiver
// has gone away.
type OutputClosedError struct {
	PC    int64
	Value int64
}

func (e *OutputClosedError) Error() string {
	return fmt.Sprintf("IO2|OutputClosedError: output %d at pc %d to closed channel", e.Value, e.PC)
}

func (e *OutputClosedError) Unwrap() error { return vmerrors.ErrOutputClosed }

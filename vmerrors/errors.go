package vmerrors

import (
	"errors"
	"strings"
)

// Program (P) Errors
var (
	ErrProgramParse = errors.New("P1|ProgramParseError: A program token is not a base-10 signed integer.")
)

// Decode (D) Errors
var (
	ErrOpcodeParse          = errors.New("D1|OpcodeParseError: Instruction word does not name a known opcode.")
	ErrAddressingMode       = errors.New("D2|AddressingModeError: Parameter mode digit is not 0, 1 or 2.")
	ErrImmediateDestination = errors.New("D3|ImmediateDestinationError: Write destination uses immediate mode.")
)

// Memory (M) Errors
var (
	ErrNegativeAddress = errors.New("M1|NegativeAddressError: Memory access at a negative address.")
)

// Input/Output (IO) Errors
var (
	ErrInvalidInput  = errors.New("IO1|InvalidInputError: Input requested from a closed and empty channel.")
	ErrOutputClosed  = errors.New("IO2|OutputClosedError: Output sent to a channel with no receiver.")
	ErrChannelClosed = errors.New("IO3|ChannelClosed: Channel is closed.")
)

// State (S) Errors
var (
	ErrNotReady = errors.New("S1|NotReady: Run requires a freshly loaded machine.")
)

// Library (L) Errors
var (
	ErrProgramNotFound = errors.New("L1|ProgramNotFound: No stored program has that name or hash.")
	ErrInvalidName     = errors.New("L2|InvalidName: Program names must be non-empty and must not look like a hash.")
)

// parts splits a "CODE|Name: description" message. Messages without a
// code come back whole as the name.
func parts(err error) (code, name, desc string) {
	msg := err.Error()
	code, rest, ok := strings.Cut(msg, "|")
	if !ok {
		return "", msg, ""
	}
	name, desc, ok = strings.Cut(rest, ":")
	if !ok {
		return "", msg, ""
	}
	return strings.TrimSpace(code), strings.TrimSpace(name), strings.TrimSpace(desc)
}

// GetErrorName returns the Name part of err, or "No Error" for nil.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	_, name, _ := parts(err)
	return name
}

func GetErrorNames(errs []error) []string {
	names := make([]string, len(errs))
	for i, err := range errs {
		names[i] = GetErrorName(err)
	}
	return names
}

// GetErrorCode returns the CODE part of err, or "" when it has none.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	code, _, _ := parts(err)
	return code
}

// GetErrorCodeWithName returns "CODE_Name", e.g. "IO1_InvalidInputError".
func GetErrorCodeWithName(err error) string {
	if err == nil {
		return ""
	}
	code, name, _ := parts(err)
	if code == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc returns the description after the name.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	_, _, desc := parts(err)
	return desc
}

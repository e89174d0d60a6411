// Intcode Disassembler - renders memory images as human-readable listings

package intcode

import (
	"fmt"
	"strings"
)

// OpcodeNames maps opcode values to their string names
var OpcodeNames = map[int64]string{
	ADD:                  "add",
	MULTIPLY:             "mul",
	INPUT:                "in",
	OUTPUT:               "out",
	JUMP_IF_TRUE:         "jnz",
	JUMP_IF_FALSE:        "jz",
	LESS_THAN:            "lt",
	EQUALS:               "eq",
	ADJUST_RELATIVE_BASE: "arb",
	HALT:                 "halt",
}

func opcode_str(opcode int64) string {
	if name, ok := OpcodeNames[opcode]; ok {
		return name
	}
	return fmt.Sprintf("op%d", opcode)
}

// String renders a parameter: [a] for position, rb+n for relative, plain
// numbers for immediates.
func (p Parameter) String() string {
	switch p.Mode {
	case Position:
		return fmt.Sprintf("[%d]", p.Value)
	case Relative:
		if p.Value < 0 {
			return fmt.Sprintf("[rb%d]", p.Value)
		}
		return fmt.Sprintf("[rb+%d]", p.Value)
	default:
		return fmt.Sprintf("%d", p.Value)
	}
}

func (inst Instruction) String() string {
	if len(inst.Params) == 0 {
		return opcode_str(inst.Opcode)
	}
	parts := make([]string, len(inst.Params))
	for i, p := range inst.Params {
		parts[i] = p.String()
	}
	return opcode_str(inst.Opcode) + " " + strings.Join(parts, ", ")
}

// DisassembledLine is one entry of a listing.
type DisassembledLine struct {
	Addr int64
	Inst *Instruction // nil for data words
	Word int64
}

func (l DisassembledLine) String() string {
	if l.Inst == nil {
		return fmt.Sprintf("%6d  data %d", l.Addr, l.Word)
	}
	return fmt.Sprintf("%6d  %s", l.Addr, l.Inst.String())
}

// Disassemble performs a linear sweep over program. Words that do not
// decode are emitted as single data lines. Code and data share memory, so
// the listing is a best effort view, not a control flow analysis.
func Disassemble(program []int64) []DisassembledLine {
	view := words(program)
	var lines []DisassembledLine
	for pc := int64(0); pc < int64(len(program)); {
		inst, err := Decode(view, pc)
		if err != nil || pc+inst.Len() > int64(len(program)) {
			lines = append(lines, DisassembledLine{Addr: pc, Word: program[pc]})
			pc++
			continue
		}
		lines = append(lines, DisassembledLine{Addr: pc, Inst: &inst, Word: program[pc]})
		pc += inst.Len()
	}
	return lines
}

// DisassembleText is Disassemble joined into a printable listing.
func DisassembleText(program []int64) string {
	var sb strings.Builder
	for _, l := range Disassemble(program) {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

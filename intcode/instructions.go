package intcode

// Intcode Instructions
// The opcode is the low two decimal digits of the instruction word; the
// remaining digits are per-parameter addressing modes, lowest first.

// Arithmetic and comparison (three parameters, the last a destination).
const (
	ADD       = 1
	MULTIPLY  = 2
	LESS_THAN = 7
	EQUALS    = 8
)

// Input/Output and relative base (one parameter).
const (
	INPUT                = 3
	OUTPUT               = 4
	ADJUST_RELATIVE_BASE = 9
)

// Jumps (two parameters: condition, target).
const (
	JUMP_IF_TRUE  = 5
	JUMP_IF_FALSE = 6
)

// Halt (no parameters).
const (
	HALT = 99
)

// AddressingMode says how a parameter's raw value is interpreted.
type AddressingMode uint8

const (
	Position  AddressingMode = 0 // value is an address
	Immediate AddressingMode = 1 // value is the operand
	Relative  AddressingMode = 2 // value plus relative base is an address
)

func (m AddressingMode) String() string {
	switch m {
	case Position:
		return "pos"
	case Immediate:
		return "imm"
	case Relative:
		return "rel"
	default:
		return "mode?"
	}
}

// Parameter is one decoded operand word together with its addressing mode.
type Parameter struct {
	Value int64
	Mode  AddressingMode
}

// Instruction is a fully decoded instruction. Params holds exactly
// ParamCount(Opcode) entries.
type Instruction struct {
	Opcode int64
	Params []Parameter
	PC     int64 // address of the instruction word
	Word   int64 // raw instruction word
}

// Len is the number of memory words the instruction occupies.
func (inst Instruction) Len() int64 {
	return int64(1 + len(inst.Params))
}

// instructionShape describes the operand layout of one opcode.
type instructionShape struct {
	params int
	// index of the destination parameter, or -1 when the instruction does
	// not write memory
	dst int
}

var shapes = map[int64]instructionShape{
	ADD:                  {params: 3, dst: 2},
	MULTIPLY:             {params: 3, dst: 2},
	INPUT:                {params: 1, dst: 0},
	OUTPUT:               {params: 1, dst: -1},
	JUMP_IF_TRUE:         {params: 2, dst: -1},
	JUMP_IF_FALSE:        {params: 2, dst: -1},
	LESS_THAN:            {params: 3, dst: 2},
	EQUALS:               {params: 3, dst: 2},
	ADJUST_RELATIVE_BASE: {params: 1, dst: -1},
	HALT:                 {params: 0, dst: -1},
}

// ParamCount returns how many parameter words follow the instruction word
// for opcode, and false when the opcode is unknown.
func ParamCount(opcode int64) (int, bool) {
	s, ok := shapes[opcode]
	return s.params, ok
}

package intcode

// wordReader is the memory view the decoder needs.
type wordReader interface {
	Read(addr int64) (int64, error)
}

// Decode reads the instruction at pc. The returned Instruction's Len tells
// the caller how far to advance the program counter.
//
// Mode digits beyond the opcode's parameter count are ignored; a mode digit
// other than 0, 1 or 2 on a consumed parameter is an error.
func Decode(mem wordReader, pc int64) (Instruction, error) {
	word, err := mem.Read(pc)
	if err != nil {
		return Instruction{}, err
	}
	opcode := word % 100
	shape, ok := shapes[opcode]
	if !ok {
		return Instruction{}, &OpcodeParseError{Word: word, PC: pc}
	}

	inst := Instruction{
		Opcode: opcode,
		PC:     pc,
		Word:   word,
	}
	if shape.params == 0 {
		return inst, nil
	}

	inst.Params = make([]Parameter, shape.params)
	modes := word / 100
	for k := 0; k < shape.params; k++ {
		digit := modes % 10
		modes /= 10
		if digit < 0 || digit > int64(Relative) {
			return Instruction{}, &AddressingModeError{Word: word, PC: pc, Param: k, Digit: digit}
		}
		v, err := mem.Read(pc + 1 + int64(k))
		if err != nil {
			return Instruction{}, err
		}
		inst.Params[k] = Parameter{Value: v, Mode: AddressingMode(digit)}
	}

	if shape.dst >= 0 && inst.Params[shape.dst].Mode == Immediate {
		return Instruction{}, &ImmediateDestinationError{Word: word, PC: pc}
	}
	return inst, nil
}

// words is a read-only view over a memory snapshot that never grows.
type words []int64

func (w words) Read(addr int64) (int64, error) {
	if addr < 0 {
		return 0, &NegativeAddressError{Addr: addr}
	}
	if addr >= int64(len(w)) {
		return 0, nil
	}
	return w[addr], nil
}

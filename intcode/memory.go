package intcode

import (
	"strconv"
	"strings"
)

const (
	// DenseLimit is the number of cells kept in one contiguous slice.
	// Addresses at or above it live in pages allocated on first write.
	DenseLimit = 1 << 20
	PageSize   = 4096
)

type page [PageSize]int64

// Memory is the VM's flat, growable address space. Every address at or
// above zero is valid; cells never written read as zero.
type Memory struct {
	cells []int64
	pages map[int64]*page // far cells, keyed by addr / PageSize
}

// ParseProgram parses comma separated base-10 integers. Whitespace around
// the whole text and around each token is ignored.
func ParseProgram(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ProgramParseError{Token: "", Index: 0}
	}
	tokens := strings.Split(text, ",")
	program := make([]int64, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, &ProgramParseError{Token: tok, Index: i, Err: err}
		}
		program[i] = v
	}
	return program, nil
}

// NewMemory returns a memory image holding a copy of program.
func NewMemory(program []int64) *Memory {
	cells := make([]int64, len(program))
	copy(cells, program)
	return &Memory{cells: cells}
}

// Load replaces the memory contents with the parsed program text.
func (m *Memory) Load(text string) error {
	program, err := ParseProgram(text)
	if err != nil {
		return err
	}
	m.cells = program
	m.pages = nil
	return nil
}

// grow makes addr addressable, at least doubling the backing array so
// repeated far writes stay amortised.
func (m *Memory) grow(addr int64) {
	if addr < int64(len(m.cells)) {
		return
	}
	if addr < int64(cap(m.cells)) {
		old := len(m.cells)
		m.cells = m.cells[:addr+1]
		clear(m.cells[old:])
		return
	}
	n := int64(cap(m.cells)) * 2
	if n <= addr {
		n = addr + 1
	}
	cells := make([]int64, addr+1, n)
	copy(cells, m.cells)
	m.cells = cells
}

// Read returns the value at addr, growing memory when addr is past the end.
// A far address that was never written reads as zero without allocating.
func (m *Memory) Read(addr int64) (int64, error) {
	if addr < 0 {
		return 0, &NegativeAddressError{Addr: addr}
	}
	if m.far(addr) {
		if pg := m.pages[addr/PageSize]; pg != nil {
			return pg[addr%PageSize], nil
		}
		return 0, nil
	}
	m.grow(addr)
	return m.cells[addr], nil
}

// Write stores value at addr, growing memory when addr is past the end.
func (m *Memory) Write(addr int64, value int64) error {
	if addr < 0 {
		return &NegativeAddressError{Addr: addr}
	}
	if m.far(addr) {
		if m.pages == nil {
			m.pages = make(map[int64]*page)
		}
		pg := m.pages[addr/PageSize]
		if pg == nil {
			pg = new(page)
			m.pages[addr/PageSize] = pg
		}
		pg[addr%PageSize] = value
		return nil
	}
	m.grow(addr)
	m.cells[addr] = value
	return nil
}

// far reports whether addr is paged. A program longer than DenseLimit
// keeps all of its own cells dense.
func (m *Memory) far(addr int64) bool {
	return addr >= DenseLimit && addr >= int64(len(m.cells))
}

// Pages is the number of far pages allocated above DenseLimit.
func (m *Memory) Pages() int {
	return len(m.pages)
}

// Len is the current number of cells in the dense region. Snapshot and
// Dump cover the same region; far pages are not included.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Snapshot returns a copy of the current contents.
func (m *Memory) Snapshot() []int64 {
	out := make([]int64, len(m.cells))
	copy(out, m.cells)
	return out
}

// Dump renders the memory as comma separated decimal text.
func (m *Memory) Dump() string {
	var sb strings.Builder
	for i, v := range m.cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}

package cpu

import (
	"iter"
)

// Statement is a line of assembled code with its source location and generated bytes.
type Statement struct {
	LineNo     int            // Source line.
	Address    uint16         // Address of the first byte.
	Words      []string       // Source words, after equate expansion.
	Bytes      []byte         // Generated bytes.
	LinkLabel  string         // Label to resolve after the pass, if any.
	LinkMode   AddressingMode // MODE_RELATIVE or MODE_ABSOLUTE.
	LinkOffset int            // Index into Bytes of the linked value.
}

// Program is an assembled listing.
type Program struct {
	Statements []Statement
}

// Debug locates the statement that generated a byte.
type Debug struct {
	*Statement
	Index int
}

func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= st.Address && int(addr) < int(st.Address)+len(st.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr - st.Address),
			}
			break
		}
	}

	return
}

// Origin is the address of the first generated byte, or RESET_PC for an
// empty program.
func (prog *Program) Origin() uint16 {
	for _, st := range prog.Statements {
		if len(st.Bytes) > 0 {
			return st.Address
		}
	}

	return RESET_PC
}

// Bytes iterates over every generated byte and its address.
func (prog *Program) Bytes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, value uint8) bool) {
		for _, st := range prog.Statements {
			for n, value := range st.Bytes {
				if !yield(st.Address+uint16(n), value) {
					return
				}
			}
		}
	}
}

// Segments iterates over runs of contiguous bytes.
func (prog *Program) Segments() iter.Seq2[uint16, []byte] {
	return func(yield func(addr uint16, data []byte) bool) {
		var start uint16
		var data []byte
		for _, st := range prog.Statements {
			if len(st.Bytes) == 0 {
				continue
			}
			if len(data) > 0 && int(start)+len(data) != int(st.Address) {
				if !yield(start, data) {
					return
				}
				data = nil
			}
			if len(data) == 0 {
				start = st.Address
			}
			data = append(data, st.Bytes...)
		}
		if len(data) > 0 {
			yield(start, data)
		}
	}
}

// Binary returns a single image from the lowest to the highest generated
// address, with gaps zero filled.
func (prog *Program) Binary() (origin uint16, bins []byte) {
	low := MEMORY_SIZE
	high := 0
	for addr := range prog.Bytes() {
		low = min(low, int(addr))
		high = max(high, int(addr)+1)
	}
	if low >= high {
		origin = RESET_PC
		return
	}

	origin = uint16(low)
	bins = make([]byte, high-low)
	for addr, value := range prog.Bytes() {
		bins[int(addr)-low] = value
	}

	return
}

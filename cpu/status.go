package cpu

import (
	"strings"
)

// Flag is a single bit of the status register.
type Flag uint8

const (
	FLAG_CARRY     = Flag(1 << 0) // C
	FLAG_ZERO      = Flag(1 << 1) // Z
	FLAG_INTERRUPT = Flag(1 << 2) // I
	FLAG_DECIMAL   = Flag(1 << 3) // D
	FLAG_BREAK     = Flag(1 << 4) // B
	FLAG_STUB      = Flag(1 << 5) // always set
	FLAG_OVERFLOW  = Flag(1 << 6) // V
	FLAG_NEGATIVE  = Flag(1 << 7) // N
)

// Status is the processor status register.
type Status uint8

// STATUS_RESET is the status after construction: only the stub bit set.
const STATUS_RESET = Status(FLAG_STUB)

// Has returns true if the flag is set.
func (st Status) Has(flag Flag) bool {
	return (uint8(st) & uint8(flag)) != 0
}

// Set forces a flag to a value.
func (st *Status) Set(flag Flag, value bool) {
	if value {
		*st |= Status(flag)
	} else {
		*st &^= Status(flag)
	}
}

// String renders the flags as NV-BDIZC, upper case when set.
func (st Status) String() string {
	var s strings.Builder

	for _, bit := range []struct {
		flag Flag
		name rune
	}{
		{FLAG_NEGATIVE, 'N'},
		{FLAG_OVERFLOW, 'V'},
		{FLAG_STUB, '-'},
		{FLAG_BREAK, 'B'},
		{FLAG_DECIMAL, 'D'},
		{FLAG_INTERRUPT, 'I'},
		{FLAG_ZERO, 'Z'},
		{FLAG_CARRY, 'C'},
	} {
		switch {
		case bit.flag == FLAG_STUB:
			s.WriteRune(bit.name)
		case st.Has(bit.flag):
			s.WriteRune(bit.name)
		default:
			s.WriteRune(bit.name - 'A' + 'a')
		}
	}

	return s.String()
}

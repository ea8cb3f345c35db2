package io

import (
	"fmt"
	"io"
	"strings"
)

const (
	MEMORY_SIZE = 0x10000 // Size of the address space.
	DUMP_WIDTH  = 16      // Bytes per Dump line.
)

// Dump writes memory from 'from' to 'to', inclusive, as a hex listing that
// Tape can read back. Lines hold up to DUMP_WIDTH bytes, aligned to
// DUMP_WIDTH boundaries.
func Dump(w io.Writer, mem Reader, from, to uint16) (err error) {
	if to < from {
		err = ErrDumpRange
		return
	}

	addr := int(from)
	for addr <= int(to) {
		end := min((addr/DUMP_WIDTH+1)*DUMP_WIDTH, int(to)+1)

		var line strings.Builder
		fmt.Fprintf(&line, "%04X:", addr)
		for ; addr < end; addr++ {
			fmt.Fprintf(&line, " %02X", mem.Read(uint16(addr)))
		}
		line.WriteString("\n")

		_, err = io.WriteString(w, line.String())
		if err != nil {
			return
		}
	}

	return
}

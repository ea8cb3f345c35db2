// Package io provides memory image sources and sinks for the m65 emulator.
// It includes raw binary images (Rom), hex listings (Tape), directories of
// page images (Depot), and a hex Dump of live memory.
package io

import (
	"iter"
)

// Loader accepts bytes into memory. *cpu.Cpu is a Loader.
type Loader interface {
	// Load copies data into memory starting at addr.
	Load(addr uint16, data []byte)
}

// Reader reads back memory. *cpu.Cpu is a Reader.
type Reader interface {
	// Read returns the byte at addr.
	Read(addr uint16) uint8
}

// Image is a set of memory segments.
type Image interface {
	// Segments iterates over each segment's address and bytes.
	Segments() iter.Seq2[uint16, []byte]
}

// LoadImage copies all segments of an image into a loader, returning the
// number of bytes loaded.
func LoadImage(loader Loader, image Image) (count int) {
	for addr, data := range image.Segments() {
		loader.Load(addr, data)
		count += len(data)
	}

	return
}

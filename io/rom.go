package io

import (
	"io"
	"iter"
)

// Rom is a single raw binary image.
type Rom struct {
	Origin uint16 // Load address of the first byte.
	Data   []byte
}

var _ Image = (*Rom)(nil)

// Unmarshal reads the entire image from a reader.
func (rom *Rom) Unmarshal(r io.Reader) (err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if int(rom.Origin)+len(data) > MEMORY_SIZE {
		err = ErrImageSize
		return
	}

	rom.Data = data
	return
}

// Segments yields the image, if not empty.
func (rom *Rom) Segments() iter.Seq2[uint16, []byte] {
	return func(yield func(addr uint16, data []byte) bool) {
		if len(rom.Data) == 0 {
			return
		}
		yield(rom.Origin, rom.Data)
	}
}

package io

import (
	"bufio"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Record is a single line of a hex listing.
type Record struct {
	Address uint16
	Data    []byte
}

// Tape is a hex listing image. Each line is an address, a colon, and hex
// bytes, as written by Dump:
//
//	0600: A9 01 8D 00 02
//
// Blank lines and text after ';' are ignored.
type Tape struct {
	Records []Record
}

var _ Image = (*Tape)(nil)

// Unmarshal parses a hex listing.
func (tc *Tape) Unmarshal(r io.Reader) (err error) {
	scanner := bufio.NewScanner(r)

	var lineno int
	var line string
	defer func() {
		if err != nil {
			err = &ErrTapeLine{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		lineno++
		line = scanner.Text()

		text := strings.TrimSpace(strings.Split(line, ";")[0])
		if len(text) == 0 {
			continue
		}

		addr_text, bytes_text, ok := strings.Cut(text, ":")
		if !ok {
			err = ErrTapeAddress
			return
		}

		var addr uint64
		addr, err = strconv.ParseUint(strings.TrimSpace(addr_text), 16, 16)
		if err != nil {
			err = ErrTapeAddress
			return
		}

		rec := Record{Address: uint16(addr)}
		for _, word := range strings.Fields(bytes_text) {
			var value uint64
			value, err = strconv.ParseUint(word, 16, 8)
			if err != nil {
				err = ErrTapeByte
				return
			}
			rec.Data = append(rec.Data, uint8(value))
		}

		if int(rec.Address)+len(rec.Data) > MEMORY_SIZE {
			err = ErrImageSize
			return
		}

		tc.Records = append(tc.Records, rec)
	}

	err = scanner.Err()
	return
}

// Segments yields each non-empty record.
func (tc *Tape) Segments() iter.Seq2[uint16, []byte] {
	return func(yield func(addr uint16, data []byte) bool) {
		for _, rec := range tc.Records {
			if len(rec.Data) == 0 {
				continue
			}
			if !yield(rec.Address, rec.Data) {
				return
			}
		}
	}
}

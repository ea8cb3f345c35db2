package io

import (
	"errors"

	"github.com/ezrec/m65/translate"
)

var f = translate.From

var (
	// Image errors
	ErrImageSize   = errors.New(f("image exceeds memory"))
	ErrTapeAddress = errors.New(f("tape address missing"))
	ErrTapeByte    = errors.New(f("tape byte invalid"))
	ErrDumpRange   = errors.New(f("dump range invalid"))
)

// ErrTapeLine indicates the location of a tape syntax error.
type ErrTapeLine struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrTapeLine) Error() string {
	return f("tape line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrTapeLine) Unwrap() error {
	return err.Err
}

// ErrDepotName reports a depot image whose name is not a hex origin.
type ErrDepotName string

func (err ErrDepotName) Error() string {
	return f("depot image '%v' is not named XXXX.bin", string(err))
}

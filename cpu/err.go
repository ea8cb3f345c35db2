package cpu

import (
	"errors"

	"github.com/ezrec/m65/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrUndefined = errors.New(f("opcode undefined"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOriginSyntax       = errors.New(f(".org syntax"))
	ErrOriginBackwards    = errors.New(f(".org before current address"))
	ErrDataMissing        = errors.New(f("data missing"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrModeInvalid        = errors.New(f("addressing mode invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrOpcode reports an opcode byte with no defined operation.
type ErrOpcode struct {
	Pc     uint16
	Opcode uint8
}

func (eo *ErrOpcode) Error() string {
	return f("undefined opcode 0x%02x at 0x%04x", eo.Opcode, eo.Pc)
}

func (eo *ErrOpcode) Unwrap() error {
	return ErrUndefined
}

// ErrOperandMismatch is the panic value raised when an operation receives an
// operand its handler cannot use. It means the catalog and the engine disagree.
type ErrOperandMismatch struct {
	Operation Operation
	Mode      AddressingMode
	Operand   Operand
}

func (err ErrOperandMismatch) Error() string {
	return f("operand %T invalid for %v %v", err.Operand, err.Operation, err.Mode)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrBranchRange struct {
	Label    string
	Distance int
}

func (err ErrBranchRange) Error() string {
	return f("branch to %v out of range (%v bytes)", err.Label, err.Distance)
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}

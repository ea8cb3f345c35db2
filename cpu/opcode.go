package cpu

import (
	"fmt"
)

// Operation is an instruction mnemonic.
type Operation int

//go:generate go tool stringer -linecomment -type=Operation,AddressingMode

const (
	OP_UNDEFINED = Operation(iota) // ???
	OP_ADC                         // ADC
	OP_AND                         // AND
	OP_ASL                         // ASL
	OP_BCC                         // BCC
	OP_BCS                         // BCS
	OP_BEQ                         // BEQ
	OP_BIT                         // BIT
	OP_BMI                         // BMI
	OP_BNE                         // BNE
	OP_BPL                         // BPL
	OP_BVC                         // BVC
	OP_BVS                         // BVS
	OP_CLC                         // CLC
	OP_CLD                         // CLD
	OP_CLI                         // CLI
	OP_CLV                         // CLV
	OP_CMP                         // CMP
	OP_CPX                         // CPX
	OP_CPY                         // CPY
	OP_DEC                         // DEC
	OP_DEX                         // DEX
	OP_DEY                         // DEY
	OP_EOR                         // EOR
	OP_INC                         // INC
	OP_INX                         // INX
	OP_INY                         // INY
	OP_JMP                         // JMP
	OP_JSR                         // JSR
	OP_LDA                         // LDA
	OP_LDX                         // LDX
	OP_LDY                         // LDY
	OP_LSR                         // LSR
	OP_NOP                         // NOP
	OP_ORA                         // ORA
	OP_PHA                         // PHA
	OP_PHP                         // PHP
	OP_PLA                         // PLA
	OP_PLP                         // PLP
	OP_ROL                         // ROL
	OP_ROR                         // ROR
	OP_RTS                         // RTS
	OP_SBC                         // SBC
	OP_SEC                         // SEC
	OP_SED                         // SED
	OP_SEI                         // SEI
	OP_STA                         // STA
	OP_STX                         // STX
	OP_STY                         // STY
	OP_TAX                         // TAX
	OP_TAY                         // TAY
	OP_TSX                         // TSX
	OP_TXA                         // TXA
	OP_TXS                         // TXS
	OP_TYA                         // TYA
)

const op_count = OP_TYA + 1

// IsBranch returns true for the eight conditional relative branches.
func (op Operation) IsBranch() bool {
	switch op {
	case OP_BCC, OP_BCS, OP_BEQ, OP_BNE, OP_BMI, OP_BPL, OP_BVC, OP_BVS:
		return true
	}
	return false
}

// AddressingMode selects how the operand bytes of an instruction are resolved.
type AddressingMode int

const (
	MODE_IMPLIED     = AddressingMode(iota) // implied
	MODE_ACCUMULATOR                        // A
	MODE_IMMEDIATE                          // #imm
	MODE_ZERO_PAGE                          // zp
	MODE_ZERO_PAGE_X                        // zp,X
	MODE_ZERO_PAGE_Y                        // zp,Y
	MODE_RELATIVE                           // rel
	MODE_ABSOLUTE                           // abs
	MODE_ABSOLUTE_X                         // abs,X
	MODE_ABSOLUTE_Y                         // abs,Y
	MODE_INDIRECT                           // (abs)
	MODE_INDIRECT_X                         // (zp,X)
	MODE_INDIRECT_Y                         // (zp),Y
)

// OperandBytes returns the number of bytes following the opcode.
func (mode AddressingMode) OperandBytes() uint16 {
	switch mode {
	case MODE_IMPLIED, MODE_ACCUMULATOR:
		return 0
	case MODE_ABSOLUTE, MODE_ABSOLUTE_X, MODE_ABSOLUTE_Y, MODE_INDIRECT:
		return 2
	default:
		return 1
	}
}

// CycleKind qualifies a cycle count.
type CycleKind int

const (
	CYCLES_EXACT  = CycleKind(0) // Always Count cycles.
	CYCLES_PAGE   = CycleKind(1) // One more if a page boundary is crossed.
	CYCLES_BRANCH = CycleKind(2) // Depends on the branch outcome.
)

// Cycles is the informational timing of an opcode. Execution ignores it.
type Cycles struct {
	Count int
	Kind  CycleKind
}

func (cy Cycles) String() string {
	switch cy.Kind {
	case CYCLES_PAGE:
		return fmt.Sprintf("%d+", cy.Count)
	case CYCLES_BRANCH:
		return fmt.Sprintf("%d*", cy.Count)
	}
	return fmt.Sprintf("%d", cy.Count)
}

// Opcode is one entry of the opcode catalog.
type Opcode struct {
	Operation Operation
	Mode      AddressingMode
	Cycles    Cycles
}

// Defined returns false for the undefined opcode sentinel.
func (oc Opcode) Defined() bool {
	return oc.Operation != OP_UNDEFINED
}

// Length is the total instruction length in bytes.
func (oc Opcode) Length() uint16 {
	return 1 + oc.Mode.OperandBytes()
}

func (oc Opcode) String() string {
	return fmt.Sprintf("%v %v (%v cycles)", oc.Operation, oc.Mode, oc.Cycles)
}

func exact(n int) Cycles  { return Cycles{Count: n, Kind: CYCLES_EXACT} }
func page(n int) Cycles   { return Cycles{Count: n, Kind: CYCLES_PAGE} }
func branch(n int) Cycles { return Cycles{Count: n, Kind: CYCLES_BRANCH} }

// _definitions is the single source for the opcode catalog and the
// assembler's reverse lookup.
var _definitions = map[uint8]Opcode{
	0x69: {OP_ADC, MODE_IMMEDIATE, exact(2)},
	0x65: {OP_ADC, MODE_ZERO_PAGE, exact(3)},
	0x75: {OP_ADC, MODE_ZERO_PAGE_X, exact(4)},
	0x6d: {OP_ADC, MODE_ABSOLUTE, exact(4)},
	0x7d: {OP_ADC, MODE_ABSOLUTE_X, page(4)},
	0x79: {OP_ADC, MODE_ABSOLUTE_Y, page(4)},
	0x61: {OP_ADC, MODE_INDIRECT_X, exact(6)},
	0x71: {OP_ADC, MODE_INDIRECT_Y, page(5)},

	0x29: {OP_AND, MODE_IMMEDIATE, exact(2)},
	0x25: {OP_AND, MODE_ZERO_PAGE, exact(3)},
	0x35: {OP_AND, MODE_ZERO_PAGE_X, exact(4)},
	0x2d: {OP_AND, MODE_ABSOLUTE, exact(4)},
	0x3d: {OP_AND, MODE_ABSOLUTE_X, page(4)},
	0x39: {OP_AND, MODE_ABSOLUTE_Y, page(4)},
	0x21: {OP_AND, MODE_INDIRECT_X, exact(6)},
	0x31: {OP_AND, MODE_INDIRECT_Y, page(5)},

	0x0a: {OP_ASL, MODE_ACCUMULATOR, exact(2)},
	0x06: {OP_ASL, MODE_ZERO_PAGE, exact(5)},
	0x16: {OP_ASL, MODE_ZERO_PAGE_X, exact(6)},
	0x0e: {OP_ASL, MODE_ABSOLUTE, exact(6)},
	0x1e: {OP_ASL, MODE_ABSOLUTE_X, exact(7)},

	0x90: {OP_BCC, MODE_RELATIVE, branch(2)},
	0xb0: {OP_BCS, MODE_RELATIVE, branch(2)},
	0xf0: {OP_BEQ, MODE_RELATIVE, branch(2)},
	0x30: {OP_BMI, MODE_RELATIVE, branch(2)},
	0xd0: {OP_BNE, MODE_RELATIVE, branch(2)},
	0x10: {OP_BPL, MODE_RELATIVE, branch(2)},
	0x50: {OP_BVC, MODE_RELATIVE, branch(2)},
	0x70: {OP_BVS, MODE_RELATIVE, branch(2)},

	0x24: {OP_BIT, MODE_ZERO_PAGE, exact(3)},
	0x2c: {OP_BIT, MODE_ABSOLUTE, exact(4)},

	0x18: {OP_CLC, MODE_IMPLIED, exact(2)},
	0xd8: {OP_CLD, MODE_IMPLIED, exact(2)},
	0x58: {OP_CLI, MODE_IMPLIED, exact(2)},
	0xb8: {OP_CLV, MODE_IMPLIED, exact(2)},
	0x38: {OP_SEC, MODE_IMPLIED, exact(2)},
	0xf8: {OP_SED, MODE_IMPLIED, exact(2)},
	0x78: {OP_SEI, MODE_IMPLIED, exact(2)},

	0xc9: {OP_CMP, MODE_IMMEDIATE, exact(2)},
	0xc5: {OP_CMP, MODE_ZERO_PAGE, exact(3)},
	0xd5: {OP_CMP, MODE_ZERO_PAGE_X, exact(4)},
	0xcd: {OP_CMP, MODE_ABSOLUTE, exact(4)},
	0xdd: {OP_CMP, MODE_ABSOLUTE_X, page(4)},
	0xd9: {OP_CMP, MODE_ABSOLUTE_Y, page(4)},
	0xc1: {OP_CMP, MODE_INDIRECT_X, exact(6)},
	0xd1: {OP_CMP, MODE_INDIRECT_Y, page(5)},

	0xe0: {OP_CPX, MODE_IMMEDIATE, exact(2)},
	0xe4: {OP_CPX, MODE_ZERO_PAGE, exact(3)},
	0xec: {OP_CPX, MODE_ABSOLUTE, exact(4)},

	0xc0: {OP_CPY, MODE_IMMEDIATE, exact(2)},
	0xc4: {OP_CPY, MODE_ZERO_PAGE, exact(3)},
	0xcc: {OP_CPY, MODE_ABSOLUTE, exact(4)},

	0xc6: {OP_DEC, MODE_ZERO_PAGE, exact(5)},
	0xd6: {OP_DEC, MODE_ZERO_PAGE_X, exact(6)},
	0xce: {OP_DEC, MODE_ABSOLUTE, exact(6)},
	0xde: {OP_DEC, MODE_ABSOLUTE_X, exact(7)},
	0xca: {OP_DEX, MODE_IMPLIED, exact(2)},
	0x88: {OP_DEY, MODE_IMPLIED, exact(2)},

	0x49: {OP_EOR, MODE_IMMEDIATE, exact(2)},
	0x45: {OP_EOR, MODE_ZERO_PAGE, exact(3)},
	0x55: {OP_EOR, MODE_ZERO_PAGE_X, exact(4)},
	0x4d: {OP_EOR, MODE_ABSOLUTE, exact(4)},
	0x5d: {OP_EOR, MODE_ABSOLUTE_X, page(4)},
	0x59: {OP_EOR, MODE_ABSOLUTE_Y, page(4)},
	0x41: {OP_EOR, MODE_INDIRECT_X, exact(6)},
	0x51: {OP_EOR, MODE_INDIRECT_Y, page(5)},

	0xe6: {OP_INC, MODE_ZERO_PAGE, exact(5)},
	0xf6: {OP_INC, MODE_ZERO_PAGE_X, exact(6)},
	0xee: {OP_INC, MODE_ABSOLUTE, exact(6)},
	0xfe: {OP_INC, MODE_ABSOLUTE_X, exact(7)},
	0xe8: {OP_INX, MODE_IMPLIED, exact(2)},
	0xc8: {OP_INY, MODE_IMPLIED, exact(2)},

	0x4c: {OP_JMP, MODE_ABSOLUTE, exact(3)},
	0x6c: {OP_JMP, MODE_INDIRECT, exact(5)},
	0x20: {OP_JSR, MODE_ABSOLUTE, exact(6)},
	0x60: {OP_RTS, MODE_IMPLIED, exact(6)},

	0xa9: {OP_LDA, MODE_IMMEDIATE, exact(2)},
	0xa5: {OP_LDA, MODE_ZERO_PAGE, exact(3)},
	0xb5: {OP_LDA, MODE_ZERO_PAGE_X, exact(4)},
	0xad: {OP_LDA, MODE_ABSOLUTE, exact(4)},
	0xbd: {OP_LDA, MODE_ABSOLUTE_X, page(4)},
	0xb9: {OP_LDA, MODE_ABSOLUTE_Y, page(4)},
	0xa1: {OP_LDA, MODE_INDIRECT_X, exact(6)},
	0xb1: {OP_LDA, MODE_INDIRECT_Y, page(5)},

	0xa2: {OP_LDX, MODE_IMMEDIATE, exact(2)},
	0xa6: {OP_LDX, MODE_ZERO_PAGE, exact(3)},
	0xb6: {OP_LDX, MODE_ZERO_PAGE_Y, exact(4)},
	0xae: {OP_LDX, MODE_ABSOLUTE, exact(4)},
	0xbe: {OP_LDX, MODE_ABSOLUTE_Y, page(4)},

	0xa0: {OP_LDY, MODE_IMMEDIATE, exact(2)},
	0xa4: {OP_LDY, MODE_ZERO_PAGE, exact(3)},
	0xb4: {OP_LDY, MODE_ZERO_PAGE_X, exact(4)},
	0xac: {OP_LDY, MODE_ABSOLUTE, exact(4)},
	0xbc: {OP_LDY, MODE_ABSOLUTE_X, page(4)},

	0x4a: {OP_LSR, MODE_ACCUMULATOR, exact(2)},
	0x46: {OP_LSR, MODE_ZERO_PAGE, exact(5)},
	0x56: {OP_LSR, MODE_ZERO_PAGE_X, exact(6)},
	0x4e: {OP_LSR, MODE_ABSOLUTE, exact(6)},
	0x5e: {OP_LSR, MODE_ABSOLUTE_X, exact(7)},

	0xea: {OP_NOP, MODE_IMPLIED, exact(2)},

	0x09: {OP_ORA, MODE_IMMEDIATE, exact(2)},
	0x05: {OP_ORA, MODE_ZERO_PAGE, exact(3)},
	0x15: {OP_ORA, MODE_ZERO_PAGE_X, exact(4)},
	0x0d: {OP_ORA, MODE_ABSOLUTE, exact(4)},
	0x1d: {OP_ORA, MODE_ABSOLUTE_X, page(4)},
	0x19: {OP_ORA, MODE_ABSOLUTE_Y, page(4)},
	0x01: {OP_ORA, MODE_INDIRECT_X, exact(6)},
	0x11: {OP_ORA, MODE_INDIRECT_Y, page(5)},

	0x48: {OP_PHA, MODE_IMPLIED, exact(3)},
	0x08: {OP_PHP, MODE_IMPLIED, exact(3)},
	0x68: {OP_PLA, MODE_IMPLIED, exact(4)},
	0x28: {OP_PLP, MODE_IMPLIED, exact(4)},

	0x2a: {OP_ROL, MODE_ACCUMULATOR, exact(2)},
	0x26: {OP_ROL, MODE_ZERO_PAGE, exact(5)},
	0x36: {OP_ROL, MODE_ZERO_PAGE_X, exact(6)},
	0x2e: {OP_ROL, MODE_ABSOLUTE, exact(6)},
	0x3e: {OP_ROL, MODE_ABSOLUTE_X, exact(7)},

	0x6a: {OP_ROR, MODE_ACCUMULATOR, exact(2)},
	0x66: {OP_ROR, MODE_ZERO_PAGE, exact(5)},
	0x76: {OP_ROR, MODE_ZERO_PAGE_X, exact(6)},
	0x6e: {OP_ROR, MODE_ABSOLUTE, exact(6)},
	0x7e: {OP_ROR, MODE_ABSOLUTE_X, exact(7)},

	0xe9: {OP_SBC, MODE_IMMEDIATE, exact(2)},
	0xe5: {OP_SBC, MODE_ZERO_PAGE, exact(3)},
	0xf5: {OP_SBC, MODE_ZERO_PAGE_X, exact(4)},
	0xed: {OP_SBC, MODE_ABSOLUTE, exact(4)},
	0xfd: {OP_SBC, MODE_ABSOLUTE_X, page(4)},
	0xf9: {OP_SBC, MODE_ABSOLUTE_Y, page(4)},
	0xe1: {OP_SBC, MODE_INDIRECT_X, exact(6)},
	0xf1: {OP_SBC, MODE_INDIRECT_Y, page(5)},

	0x85: {OP_STA, MODE_ZERO_PAGE, exact(3)},
	0x95: {OP_STA, MODE_ZERO_PAGE_X, exact(4)},
	0x8d: {OP_STA, MODE_ABSOLUTE, exact(4)},
	0x9d: {OP_STA, MODE_ABSOLUTE_X, exact(5)},
	0x99: {OP_STA, MODE_ABSOLUTE_Y, exact(5)},
	0x81: {OP_STA, MODE_INDIRECT_X, exact(6)},
	0x91: {OP_STA, MODE_INDIRECT_Y, exact(6)},

	0x86: {OP_STX, MODE_ZERO_PAGE, exact(3)},
	0x96: {OP_STX, MODE_ZERO_PAGE_Y, exact(4)},
	0x8e: {OP_STX, MODE_ABSOLUTE, exact(4)},

	0x84: {OP_STY, MODE_ZERO_PAGE, exact(3)},
	0x94: {OP_STY, MODE_ZERO_PAGE_X, exact(4)},
	0x8c: {OP_STY, MODE_ABSOLUTE, exact(4)},

	0xaa: {OP_TAX, MODE_IMPLIED, exact(2)},
	0xa8: {OP_TAY, MODE_IMPLIED, exact(2)},
	0xba: {OP_TSX, MODE_IMPLIED, exact(2)},
	0x8a: {OP_TXA, MODE_IMPLIED, exact(2)},
	0x9a: {OP_TXS, MODE_IMPLIED, exact(2)},
	0x98: {OP_TYA, MODE_IMPLIED, exact(2)},
}

// opcodeKey indexes the reverse lookup.
type opcodeKey struct {
	op   Operation
	mode AddressingMode
}

var (
	_opcodes [256]Opcode
	_reverse = make(map[opcodeKey]uint8, len(_definitions))
)

func init() {
	for code := range _opcodes {
		_opcodes[code] = Opcode{Operation: OP_UNDEFINED, Mode: MODE_IMPLIED}
	}
	for code, def := range _definitions {
		_opcodes[code] = def
		_reverse[opcodeKey{def.Operation, def.Mode}] = code
	}
}

// OpcodeOf returns the catalog entry for an opcode byte.
func OpcodeOf(code uint8) Opcode {
	return _opcodes[code]
}

// Lookup returns the opcode byte for an operation in an addressing mode.
func Lookup(op Operation, mode AddressingMode) (code uint8, ok bool) {
	code, ok = _reverse[opcodeKey{op, mode}]
	return
}

// OperationOf returns the operation for an upper or lower case mnemonic.
func OperationOf(mnemonic string) (op Operation, ok bool) {
	if len(mnemonic) != 3 {
		return
	}
	upper := []byte(mnemonic)
	for n, c := range upper {
		if c >= 'a' && c <= 'z' {
			upper[n] = c - 'a' + 'A'
		}
	}
	for n := OP_ADC; n < op_count; n++ {
		if n.String() == string(upper) {
			return n, true
		}
	}
	return
}

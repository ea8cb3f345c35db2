package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeCatalog(t *testing.T) {
	assert := assert.New(t)

	defined := 0
	for code := range 256 {
		oc := OpcodeOf(uint8(code))
		if !oc.Defined() {
			assert.Equal(MODE_IMPLIED, oc.Mode, "0x%02x", code)
			continue
		}
		defined++

		back, ok := Lookup(oc.Operation, oc.Mode)
		assert.True(ok, "0x%02x", code)
		assert.Equal(uint8(code), back, "0x%02x", code)
		assert.True(oc.Length() >= 1 && oc.Length() <= 3, "0x%02x", code)
	}

	assert.Equal(149, defined)
}

func TestOpcodeOf(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code   uint8
		op     Operation
		mode   AddressingMode
		length uint16
		cycles string
	}){
		{0xa9, OP_LDA, MODE_IMMEDIATE, 2, "2"},
		{0xbd, OP_LDA, MODE_ABSOLUTE_X, 3, "4+"},
		{0x96, OP_STX, MODE_ZERO_PAGE_Y, 2, "4"},
		{0xd0, OP_BNE, MODE_RELATIVE, 2, "2*"},
		{0x6c, OP_JMP, MODE_INDIRECT, 3, "5"},
		{0x0a, OP_ASL, MODE_ACCUMULATOR, 1, "2"},
		{0x81, OP_STA, MODE_INDIRECT_X, 2, "6"},
		{0xb1, OP_LDA, MODE_INDIRECT_Y, 2, "5+"},
		{0x60, OP_RTS, MODE_IMPLIED, 1, "6"},
		{0x00, OP_UNDEFINED, MODE_IMPLIED, 1, "0"},
		{0x40, OP_UNDEFINED, MODE_IMPLIED, 1, "0"},
		{0xff, OP_UNDEFINED, MODE_IMPLIED, 1, "0"},
	}

	for _, entry := range table {
		oc := OpcodeOf(entry.code)
		assert.Equal(entry.op, oc.Operation, "0x%02x", entry.code)
		assert.Equal(entry.mode, oc.Mode, "0x%02x", entry.code)
		assert.Equal(entry.length, oc.Length(), "0x%02x", entry.code)
		assert.Equal(entry.cycles, oc.Cycles.String(), "0x%02x", entry.code)
	}
}

func TestOperationOf(t *testing.T) {
	assert := assert.New(t)

	op, ok := OperationOf("lda")
	assert.True(ok)
	assert.Equal(OP_LDA, op)

	op, ok = OperationOf("TyA")
	assert.True(ok)
	assert.Equal(OP_TYA, op)

	_, ok = OperationOf("BRK")
	assert.False(ok)

	_, ok = OperationOf("???")
	assert.False(ok)

	assert.Equal("LDA", OP_LDA.String())
	assert.Equal("Operation(999)", Operation(999).String())
	assert.Equal("(zp),Y", MODE_INDIRECT_Y.String())
	assert.True(OP_BVS.IsBranch())
	assert.False(OP_JMP.IsBranch())

	for op := OP_ADC; op < op_count; op++ {
		found, ok := OperationOf(op.String())
		assert.True(ok, "%v", op)
		assert.Equal(op, found)
	}
	assert.Equal("???", OP_UNDEFINED.String())
	assert.Equal("implied", MODE_IMPLIED.String())
	assert.Equal("AddressingMode(-1)", AddressingMode(-1).String())
}

func TestOpcodeLookupMissing(t *testing.T) {
	assert := assert.New(t)

	_, ok := Lookup(OP_STA, MODE_IMMEDIATE)
	assert.False(ok)

	_, ok = Lookup(OP_LDX, MODE_ZERO_PAGE_X)
	assert.False(ok)

	_, ok = Lookup(OP_UNDEFINED, MODE_IMPLIED)
	assert.False(ok)
}

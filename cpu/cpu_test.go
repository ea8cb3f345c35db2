package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// run loads code at RESET_PC and executes a number of instructions.
func run(t *testing.T, cpu *Cpu, code []byte, ticks int) {
	t.Helper()

	cpu.Load(RESET_PC, code)
	cpu.Pc = RESET_PC
	for range ticks {
		err := cpu.Tick()
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.Equal(uint16(RESET_PC), cpu.Pc)
	assert.Equal(uint8(RESET_SP), cpu.Sp)
	assert.Equal(STATUS_RESET, cpu.Status)
	assert.Equal(uint8(0b00100000), uint8(cpu.Status))

	cpu.A = 1
	cpu.Memory[0x1234] = 0x56
	cpu.Ticks = 3
	cpu.Reset()
	assert.Equal(uint8(0), cpu.A)
	assert.Equal(uint8(0), cpu.Memory[0x1234])
	assert.Equal(0, cpu.Ticks)

	text := cpu.String()
	assert.True(strings.Contains(text, "pc: 0600"), text)
	assert.True(strings.Contains(text, "status: 00100000 nv-bdizc"), text)

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}
	assert.Equal("0x0600", defines["RESET_PC"])
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Load(0xfffe, []byte{1, 2, 3, 4})
	assert.Equal(uint8(1), cpu.Memory[0xfffe])
	assert.Equal(uint8(2), cpu.Memory[0xffff])
	assert.Equal(uint8(0), cpu.Memory[0x0000])

	cpu.Write(0xffff, 0x12)
	cpu.Write(0x0000, 0x34)
	assert.Equal(uint16(0x3412), cpu.ReadWord(0xffff))
}

func TestCpuLoadFlags(t *testing.T) {
	assert := assert.New(t)

	for _, code := range []uint8{0xa9, 0xa2, 0xa0} {
		for v := range 256 {
			cpu := NewCpu()
			run(t, cpu, []byte{code, uint8(v)}, 1)

			var reg uint8
			switch code {
			case 0xa9:
				reg = cpu.A
			case 0xa2:
				reg = cpu.X
			case 0xa0:
				reg = cpu.Y
			}
			assert.Equal(uint8(v), reg)
			assert.Equal(v == 0, cpu.Flag(FLAG_ZERO))
			assert.Equal(v&0x80 != 0, cpu.Flag(FLAG_NEGATIVE))
			assert.Equal(uint16(RESET_PC+2), cpu.Pc)
		}
	}
}

func TestCpuLoadImmediateX(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	run(t, cpu, []byte{0xa2, 0xff}, 1)
	assert.Equal(uint8(0xff), cpu.X)
	assert.False(cpu.Flag(FLAG_ZERO))
	assert.True(cpu.Flag(FLAG_NEGATIVE))
	assert.Equal(uint8(0b10100000), uint8(cpu.Status))
	assert.Equal(1, cpu.Ticks)
}

func TestCpuStoreZeroPageY(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.X = 0x71
	cpu.Y = 0x22
	status := cpu.Status
	run(t, cpu, []byte{0x96, 0x33}, 1)
	assert.Equal(uint8(0x71), cpu.Memory[0x0055])
	assert.Equal(status, cpu.Status)
}

func TestCpuTransfer(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.A = 0x80
	run(t, cpu, []byte{
		0xaa, // TAX
		0xa8, // TAY
		0xba, // TSX
	}, 2)
	assert.Equal(uint8(0x80), cpu.X)
	assert.Equal(uint8(0x80), cpu.Y)
	assert.True(cpu.Flag(FLAG_NEGATIVE))

	assert.NoError(cpu.Tick())
	assert.Equal(uint8(0xff), cpu.X)

	// TXS has no flag effect.
	cpu.X = 0x00
	cpu.Status = STATUS_RESET
	cpu.Load(cpu.Pc, []byte{0x9a})
	assert.NoError(cpu.Tick())
	assert.Equal(uint8(0x00), cpu.Sp)
	assert.Equal(STATUS_RESET, cpu.Status)
}

func TestCpuIncrementWrap(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		code     []byte
		initial  uint8
		result   uint8
		zero     bool
		negative bool
	}){
		{"inx", []byte{0xe8}, 0xff, 0x00, true, false},
		{"iny", []byte{0xc8}, 0x7f, 0x80, false, true},
		{"dex", []byte{0xca}, 0x00, 0xff, false, true},
		{"dey", []byte{0x88}, 0x01, 0x00, true, false},
		{"inc", []byte{0xe6, 0x10}, 0xff, 0x00, true, false},
		{"dec", []byte{0xce, 0x00, 0x20}, 0x00, 0xff, false, true},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.X = entry.initial
		cpu.Y = entry.initial
		cpu.Memory[0x0010] = entry.initial
		cpu.Memory[0x2000] = entry.initial
		run(t, cpu, entry.code, 1)

		var result uint8
		switch entry.name {
		case "inx", "dex":
			result = cpu.X
		case "iny", "dey":
			result = cpu.Y
		case "inc":
			result = cpu.Memory[0x0010]
		case "dec":
			result = cpu.Memory[0x2000]
		}
		assert.Equal(entry.result, result, entry.name)
		assert.Equal(entry.zero, cpu.Flag(FLAG_ZERO), entry.name)
		assert.Equal(entry.negative, cpu.Flag(FLAG_NEGATIVE), entry.name)
	}
}

func TestCpuShift(t *testing.T) {
	assert := assert.New(t)

	// ASL A
	cpu := NewCpu()
	cpu.A = 0x81
	run(t, cpu, []byte{0x0a}, 1)
	assert.Equal(uint8(0x02), cpu.A)
	assert.True(cpu.Flag(FLAG_CARRY))
	assert.False(cpu.Flag(FLAG_NEGATIVE))
	assert.Equal(uint16(RESET_PC+1), cpu.Pc)

	// ASL zp writes back to memory
	cpu = NewCpu()
	cpu.Memory[0x0040] = 0x40
	run(t, cpu, []byte{0x06, 0x40}, 1)
	assert.Equal(uint8(0x80), cpu.Memory[0x0040])
	assert.False(cpu.Flag(FLAG_CARRY))
	assert.True(cpu.Flag(FLAG_NEGATIVE))

	// ASL of 0x80 is zero with carry
	cpu = NewCpu()
	cpu.A = 0x80
	run(t, cpu, []byte{0x0a}, 1)
	assert.Equal(uint8(0x00), cpu.A)
	assert.True(cpu.Flag(FLAG_CARRY))
	assert.True(cpu.Flag(FLAG_ZERO))

	// LSR A
	cpu = NewCpu()
	cpu.A = 0x03
	run(t, cpu, []byte{0x4a}, 1)
	assert.Equal(uint8(0x01), cpu.A)
	assert.True(cpu.Flag(FLAG_CARRY))

	// SEC; ROL A
	cpu = NewCpu()
	cpu.A = 0x80
	run(t, cpu, []byte{0x38, 0x2a}, 2)
	assert.Equal(uint8(0x01), cpu.A)
	assert.True(cpu.Flag(FLAG_CARRY))

	// SEC; ROR A
	cpu = NewCpu()
	cpu.A = 0x02
	run(t, cpu, []byte{0x38, 0x6a}, 2)
	assert.Equal(uint8(0x81), cpu.A)
	assert.False(cpu.Flag(FLAG_CARRY))
	assert.True(cpu.Flag(FLAG_NEGATIVE))
}

func TestCpuCompare(t *testing.T) {
	assert := assert.New(t)

	for lhs := range 256 {
		for rhs := range 256 {
			cpu := NewCpu()
			cpu.A = uint8(lhs)
			run(t, cpu, []byte{0xc9, uint8(rhs)}, 1)

			assert.Equal(lhs >= rhs, cpu.Flag(FLAG_CARRY))
			assert.Equal(lhs == rhs, cpu.Flag(FLAG_ZERO))
			assert.Equal(uint8(lhs-rhs)&0x80 != 0, cpu.Flag(FLAG_NEGATIVE))
			assert.Equal(uint8(lhs), cpu.A)
		}
	}
}

func TestCpuCompareXY(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.X = 0x10
	cpu.Y = 0x10
	cpu.Memory[0x0020] = 0x20
	run(t, cpu, []byte{
		0xe0, 0x10, // CPX #$10
		0xc4, 0x20, // CPY $20
	}, 1)
	assert.True(cpu.Flag(FLAG_ZERO))
	assert.True(cpu.Flag(FLAG_CARRY))

	assert.NoError(cpu.Tick())
	assert.False(cpu.Flag(FLAG_ZERO))
	assert.False(cpu.Flag(FLAG_CARRY))
	assert.True(cpu.Flag(FLAG_NEGATIVE))
}

func TestCpuLogic(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.A = 0xf0
	run(t, cpu, []byte{
		0x29, 0x3c, // AND #$3C
		0x09, 0x01, // ORA #$01
		0x49, 0xff, // EOR #$FF
	}, 1)
	assert.Equal(uint8(0x30), cpu.A)

	assert.NoError(cpu.Tick())
	assert.Equal(uint8(0x31), cpu.A)

	assert.NoError(cpu.Tick())
	assert.Equal(uint8(0xce), cpu.A)
	assert.True(cpu.Flag(FLAG_NEGATIVE))

	// BIT
	cpu = NewCpu()
	cpu.A = 0x01
	cpu.Memory[0x0010] = 0xc0
	run(t, cpu, []byte{0x24, 0x10}, 1)
	assert.True(cpu.Flag(FLAG_ZERO))
	assert.True(cpu.Flag(FLAG_NEGATIVE))
	assert.True(cpu.Flag(FLAG_OVERFLOW))
	assert.Equal(uint8(0x01), cpu.A)
}

func TestCpuArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		code     []byte
		a        uint8
		carry    bool
		result   uint8
		c, v, z  bool
	}){
		{"adc", []byte{0x69, 0x01}, 0x01, false, 0x02, false, false, false},
		{"adc carry in", []byte{0x69, 0x01}, 0x01, true, 0x03, false, false, false},
		{"adc carry out", []byte{0x69, 0x01}, 0xff, false, 0x00, true, false, true},
		{"adc overflow", []byte{0x69, 0x01}, 0x7f, false, 0x80, false, true, false},
		{"sbc", []byte{0xe9, 0x01}, 0x03, true, 0x02, true, false, false},
		{"sbc borrow", []byte{0xe9, 0x01}, 0x00, true, 0xff, false, false, false},
		{"sbc overflow", []byte{0xe9, 0x01}, 0x80, true, 0x7f, true, true, false},
	}

	for _, entry := range table {
		cpu := NewCpu()
		cpu.A = entry.a
		cpu.Status.Set(FLAG_CARRY, entry.carry)
		run(t, cpu, entry.code, 1)
		assert.Equal(entry.result, cpu.A, entry.name)
		assert.Equal(entry.c, cpu.Flag(FLAG_CARRY), entry.name)
		assert.Equal(entry.v, cpu.Flag(FLAG_OVERFLOW), entry.name)
		assert.Equal(entry.z, cpu.Flag(FLAG_ZERO), entry.name)
	}
}

func TestCpuFlags(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	run(t, cpu, []byte{
		0x38, // SEC
		0xf8, // SED
		0x78, // SEI
	}, 3)
	assert.Equal(uint8(0b00101101), uint8(cpu.Status))

	cpu.Status.Set(FLAG_OVERFLOW, true)
	cpu.Load(cpu.Pc, []byte{
		0x18, // CLC
		0xd8, // CLD
		0x58, // CLI
		0xb8, // CLV
	})
	for range 4 {
		assert.NoError(cpu.Tick())
	}
	assert.Equal(STATUS_RESET, cpu.Status)
}

func TestCpuStack(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.A = 0x42
	cpu.Status.Set(FLAG_CARRY, true)
	run(t, cpu, []byte{
		0x48,       // PHA
		0x08,       // PHP
		0xa9, 0x00, // LDA #$00
		0x18, // CLC
		0x28, // PLP
		0x68, // PLA
	}, 2)
	assert.Equal(uint8(0x42), cpu.Memory[0x01ff])
	assert.Equal(uint8(0b00100001), cpu.Memory[0x01fe])
	assert.Equal(uint8(0xfd), cpu.Sp)

	for range 4 {
		assert.NoError(cpu.Tick())
	}
	assert.Equal(uint8(0x42), cpu.A)
	assert.True(cpu.Flag(FLAG_CARRY))
	assert.Equal(uint8(0xff), cpu.Sp)

	// PLP keeps the stub bit.
	cpu = NewCpu()
	cpu.Push(0x00)
	run(t, cpu, []byte{0x28}, 1)
	assert.Equal(STATUS_RESET, cpu.Status)
}

func TestCpuBranch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code uint8
		flag Flag
		when bool
	}){
		{0x90, FLAG_CARRY, false},
		{0xb0, FLAG_CARRY, true},
		{0xd0, FLAG_ZERO, false},
		{0xf0, FLAG_ZERO, true},
		{0x10, FLAG_NEGATIVE, false},
		{0x30, FLAG_NEGATIVE, true},
		{0x50, FLAG_OVERFLOW, false},
		{0x70, FLAG_OVERFLOW, true},
	}

	for _, entry := range table {
		for _, set := range []bool{false, true} {
			cpu := NewCpu()
			cpu.Status.Set(entry.flag, set)
			status := cpu.Status
			run(t, cpu, []byte{entry.code, 0x10}, 1)

			if set == entry.when {
				assert.Equal(uint16(RESET_PC+2+0x10), cpu.Pc, "%02x", entry.code)
			} else {
				assert.Equal(uint16(RESET_PC+2), cpu.Pc, "%02x", entry.code)
			}
			assert.Equal(status, cpu.Status, "%02x", entry.code)
		}
	}

	// Backward branch
	cpu := NewCpu()
	run(t, cpu, []byte{0xd0, 0xfe}, 1)
	assert.Equal(uint16(RESET_PC), cpu.Pc)
}

func TestCpuJump(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	run(t, cpu, []byte{0x4c, 0x34, 0x12}, 1)
	assert.Equal(uint16(0x1234), cpu.Pc)

	cpu = NewCpu()
	cpu.Load(0x0300, []byte{0x00, 0x40})
	run(t, cpu, []byte{0x6c, 0x00, 0x03}, 1)
	assert.Equal(uint16(0x4000), cpu.Pc)
}

func TestCpuSubroutine(t *testing.T) {
	assert := assert.New(t)

	for _, site := range []uint16{0x0000, 0x0600, 0x12fe, 0xfffd} {
		for _, target := range []uint16{0x0000, 0x0200, 0x8000, 0xffff} {
			cpu := NewCpu()
			cpu.Load(site, []byte{0x20, uint8(target), uint8(target >> 8)})
			cpu.Pc = site
			assert.NoError(cpu.Tick())
			assert.Equal(target, cpu.Pc)
			assert.Equal(uint8(0xfd), cpu.Sp)
			assert.Equal(site+2, cpu.ReadWord(0x01fe))

			cpu.Write(target, 0x60)
			assert.NoError(cpu.Tick())
			assert.Equal(site+3, cpu.Pc, "site %04x target %04x", site, target)
			assert.Equal(uint8(0xff), cpu.Sp)
		}
	}
}

func TestCpuNop(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	run(t, cpu, []byte{0xea}, 1)
	assert.Equal(uint16(RESET_PC+1), cpu.Pc)
	assert.Equal(STATUS_RESET, cpu.Status)
}

func TestCpuUndefined(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.A = 0x12
	cpu.Load(RESET_PC, []byte{0x02})
	before := *cpu

	err := cpu.Tick()
	assert.Error(err)
	assert.True(errors.Is(err, ErrUndefined))

	var eo *ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(uint8(0x02), eo.Opcode)
	assert.Equal(uint16(RESET_PC), eo.Pc)

	assert.Equal(before.Pc, cpu.Pc)
	assert.Equal(before.A, cpu.A)
	assert.Equal(before.Status, cpu.Status)
	assert.Equal(before.Ticks, cpu.Ticks)
}

func TestCpuOperandMismatch(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	dec := Decoded{
		Pc:        RESET_PC,
		Opcode:    0x85,
		Operation: OP_STA,
		Mode:      MODE_IMMEDIATE,
		Operand:   ConstantOperand{Value: 1},
		Length:    2,
	}

	assert.PanicsWithValue(ErrOperandMismatch{
		Operation: OP_STA,
		Mode:      MODE_IMMEDIATE,
		Operand:   ConstantOperand{Value: 1},
	}, func() { _ = cpu.Execute(dec) })

	dec = Decoded{
		Operation: OP_NOP,
		Mode:      MODE_ACCUMULATOR,
		Operand:   AccumulatorOperand{},
		Length:    1,
	}
	assert.Panics(func() { _ = cpu.Execute(dec) })
}

func TestCpuEveryOpcode(t *testing.T) {
	assert := assert.New(t)

	for code := range 256 {
		cpu := NewCpu()
		cpu.Load(RESET_PC, []byte{uint8(code), 0x10, 0x02})
		oc := OpcodeOf(uint8(code))

		assert.NotPanics(func() {
			err := cpu.Tick()
			if oc.Defined() {
				assert.NoError(err, "0x%02x", code)
			} else {
				assert.ErrorIs(err, ErrUndefined, "0x%02x", code)
			}
		}, "0x%02x", code)
	}
}

package cpu

import (
	"log"
)

// Execute applies a single decoded instruction to the CPU state.
//
// Non-control-flow instructions advance Pc by the decoded length; jumps,
// taken branches, and subroutine calls and returns assign Pc directly.
// An undefined operation returns an *ErrOpcode without touching the state.
// An operand the operation cannot use panics with ErrOperandMismatch.
func (cpu *Cpu) Execute(dec Decoded) (err error) {
	if dec.Operation == OP_UNDEFINED {
		err = &ErrOpcode{Pc: dec.Pc, Opcode: dec.Opcode}
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", dec.Pc, dec)
	}

	next_pc := cpu.Pc + dec.Length

	switch dec.Operation {
	// Loads and stores
	case OP_LDA:
		cpu.A = cpu.setNZ(cpu.value(dec))
	case OP_LDX:
		cpu.X = cpu.setNZ(cpu.value(dec))
	case OP_LDY:
		cpu.Y = cpu.setNZ(cpu.value(dec))
	case OP_STA:
		cpu.Write(cpu.address(dec), cpu.A)
	case OP_STX:
		cpu.Write(cpu.address(dec), cpu.X)
	case OP_STY:
		cpu.Write(cpu.address(dec), cpu.Y)

	// Transfers
	case OP_TAX:
		cpu.implied(dec)
		cpu.X = cpu.setNZ(cpu.A)
	case OP_TAY:
		cpu.implied(dec)
		cpu.Y = cpu.setNZ(cpu.A)
	case OP_TXA:
		cpu.implied(dec)
		cpu.A = cpu.setNZ(cpu.X)
	case OP_TYA:
		cpu.implied(dec)
		cpu.A = cpu.setNZ(cpu.Y)
	case OP_TSX:
		cpu.implied(dec)
		cpu.X = cpu.setNZ(cpu.Sp)
	case OP_TXS:
		cpu.implied(dec)
		cpu.Sp = cpu.X

	// Counters
	case OP_INX:
		cpu.implied(dec)
		cpu.X = cpu.setNZ(cpu.X + 1)
	case OP_INY:
		cpu.implied(dec)
		cpu.Y = cpu.setNZ(cpu.Y + 1)
	case OP_DEX:
		cpu.implied(dec)
		cpu.X = cpu.setNZ(cpu.X - 1)
	case OP_DEY:
		cpu.implied(dec)
		cpu.Y = cpu.setNZ(cpu.Y - 1)
	case OP_INC:
		addr := cpu.address(dec)
		cpu.Write(addr, cpu.setNZ(cpu.Read(addr)+1))
	case OP_DEC:
		addr := cpu.address(dec)
		cpu.Write(addr, cpu.setNZ(cpu.Read(addr)-1))

	// Shifts and rotates
	case OP_ASL:
		cpu.modify(dec, func(value uint8) uint8 {
			cpu.Status.Set(FLAG_CARRY, value&0x80 != 0)
			return value << 1
		})
	case OP_LSR:
		cpu.modify(dec, func(value uint8) uint8 {
			cpu.Status.Set(FLAG_CARRY, value&0x01 != 0)
			return value >> 1
		})
	case OP_ROL:
		cpu.modify(dec, func(value uint8) uint8 {
			carry := cpu.carry()
			cpu.Status.Set(FLAG_CARRY, value&0x80 != 0)
			return value<<1 | carry
		})
	case OP_ROR:
		cpu.modify(dec, func(value uint8) uint8 {
			carry := cpu.carry()
			cpu.Status.Set(FLAG_CARRY, value&0x01 != 0)
			return value>>1 | carry<<7
		})

	// Logic and arithmetic
	case OP_AND:
		cpu.A = cpu.setNZ(cpu.A & cpu.value(dec))
	case OP_ORA:
		cpu.A = cpu.setNZ(cpu.A | cpu.value(dec))
	case OP_EOR:
		cpu.A = cpu.setNZ(cpu.A ^ cpu.value(dec))
	case OP_BIT:
		value := cpu.Read(cpu.address(dec))
		cpu.Status.Set(FLAG_ZERO, cpu.A&value == 0)
		cpu.Status.Set(FLAG_NEGATIVE, value&0x80 != 0)
		cpu.Status.Set(FLAG_OVERFLOW, value&0x40 != 0)
	case OP_ADC:
		cpu.A = cpu.add(cpu.value(dec))
	case OP_SBC:
		cpu.A = cpu.add(^cpu.value(dec))

	// Compares
	case OP_CMP:
		cpu.compare(cpu.A, cpu.value(dec))
	case OP_CPX:
		cpu.compare(cpu.X, cpu.value(dec))
	case OP_CPY:
		cpu.compare(cpu.Y, cpu.value(dec))

	// Flags
	case OP_CLC:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_CARRY, false)
	case OP_SEC:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_CARRY, true)
	case OP_CLD:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_DECIMAL, false)
	case OP_SED:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_DECIMAL, true)
	case OP_CLI:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_INTERRUPT, false)
	case OP_SEI:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_INTERRUPT, true)
	case OP_CLV:
		cpu.implied(dec)
		cpu.Status.Set(FLAG_OVERFLOW, false)

	// Stack
	case OP_PHA:
		cpu.implied(dec)
		cpu.Push(cpu.A)
	case OP_PHP:
		cpu.implied(dec)
		cpu.Push(uint8(cpu.Status))
	case OP_PLA:
		cpu.implied(dec)
		cpu.A = cpu.setNZ(cpu.Pull())
	case OP_PLP:
		cpu.implied(dec)
		cpu.Status = Status(cpu.Pull()) | Status(FLAG_STUB)

	// Branches
	case OP_BCC:
		next_pc = cpu.branch(dec, next_pc, FLAG_CARRY, false)
	case OP_BCS:
		next_pc = cpu.branch(dec, next_pc, FLAG_CARRY, true)
	case OP_BNE:
		next_pc = cpu.branch(dec, next_pc, FLAG_ZERO, false)
	case OP_BEQ:
		next_pc = cpu.branch(dec, next_pc, FLAG_ZERO, true)
	case OP_BPL:
		next_pc = cpu.branch(dec, next_pc, FLAG_NEGATIVE, false)
	case OP_BMI:
		next_pc = cpu.branch(dec, next_pc, FLAG_NEGATIVE, true)
	case OP_BVC:
		next_pc = cpu.branch(dec, next_pc, FLAG_OVERFLOW, false)
	case OP_BVS:
		next_pc = cpu.branch(dec, next_pc, FLAG_OVERFLOW, true)

	// Jumps and subroutines
	case OP_JMP:
		next_pc = cpu.address(dec)
	case OP_JSR:
		target := cpu.address(dec)
		cpu.PushWord(next_pc - 1)
		next_pc = target
	case OP_RTS:
		cpu.implied(dec)
		next_pc = cpu.PullWord() + 1

	case OP_NOP:
		cpu.implied(dec)

	default:
		panic("unknown operation")
	}

	cpu.Pc = next_pc
	cpu.Ticks++

	return
}

// mismatch panics: the catalog assigned a mode this operation cannot use.
func mismatch(dec Decoded) {
	panic(ErrOperandMismatch{Operation: dec.Operation, Mode: dec.Mode, Operand: dec.Operand})
}

// implied checks that an operation has no operand.
func (cpu *Cpu) implied(dec Decoded) {
	if _, ok := dec.Operand.(NoOperand); !ok {
		mismatch(dec)
	}
}

// value reads a constant or memory operand.
func (cpu *Cpu) value(dec Decoded) (value uint8) {
	switch op := dec.Operand.(type) {
	case ConstantOperand:
		value = op.Value
	case AddressOperand:
		value = cpu.Read(op.Address)
	default:
		mismatch(dec)
	}
	return
}

// address returns a memory operand's effective address.
func (cpu *Cpu) address(dec Decoded) (addr uint16) {
	op, ok := dec.Operand.(AddressOperand)
	if !ok {
		mismatch(dec)
	}
	addr = op.Address
	return
}

// modify applies a read-modify-write to the accumulator or memory, setting
// Zero and Negative from the result.
func (cpu *Cpu) modify(dec Decoded, fn func(value uint8) uint8) {
	switch op := dec.Operand.(type) {
	case AccumulatorOperand:
		cpu.A = cpu.setNZ(fn(cpu.A))
	case AddressOperand:
		cpu.Write(op.Address, cpu.setNZ(fn(cpu.Read(op.Address))))
	default:
		mismatch(dec)
	}
}

// setNZ sets Zero and Negative from a new value, and returns it.
func (cpu *Cpu) setNZ(value uint8) uint8 {
	cpu.Status.Set(FLAG_ZERO, value == 0)
	cpu.Status.Set(FLAG_NEGATIVE, value&0x80 != 0)
	return value
}

func (cpu *Cpu) carry() uint8 {
	if cpu.Flag(FLAG_CARRY) {
		return 1
	}
	return 0
}

// compare sets the flags of reg - value without storing the difference.
func (cpu *Cpu) compare(reg uint8, value uint8) {
	cpu.Status.Set(FLAG_CARRY, reg >= value)
	cpu.Status.Set(FLAG_ZERO, reg == value)
	cpu.Status.Set(FLAG_NEGATIVE, (reg-value)&0x80 != 0)
}

// add is a binary add with carry. The decimal flag is ignored.
func (cpu *Cpu) add(value uint8) uint8 {
	sum := uint16(cpu.A) + uint16(value) + uint16(cpu.carry())
	result := uint8(sum)
	cpu.Status.Set(FLAG_CARRY, sum > 0xff)
	cpu.Status.Set(FLAG_OVERFLOW, (^(cpu.A^value))&(cpu.A^result)&0x80 != 0)
	return cpu.setNZ(result)
}

// branch returns the target when the flag matches, otherwise next_pc.
func (cpu *Cpu) branch(dec Decoded, next_pc uint16, flag Flag, when bool) uint16 {
	target := cpu.address(dec)
	if cpu.Flag(flag) == when {
		return target
	}
	return next_pc
}

package cpu

import (
	"fmt"
)

// Operand is the resolved operand of a decoded instruction. It is one of
// NoOperand, AccumulatorOperand, ConstantOperand, or AddressOperand.
type Operand interface {
	operand()
}

// NoOperand is the operand of implied mode instructions.
type NoOperand struct{}

// AccumulatorOperand selects the accumulator as the operand.
type AccumulatorOperand struct{}

// ConstantOperand is an immediate byte.
type ConstantOperand struct {
	Value uint8
}

// AddressOperand is an effective memory address.
type AddressOperand struct {
	Address uint16
}

func (NoOperand) operand()          {}
func (AccumulatorOperand) operand() {}
func (ConstantOperand) operand()    {}
func (AddressOperand) operand()     {}

// Decoded is an instruction resolved against the current CPU state.
type Decoded struct {
	Pc        uint16         // Address the opcode was fetched from.
	Opcode    uint8          // Opcode byte.
	Operation Operation      // Catalog operation.
	Mode      AddressingMode // Catalog addressing mode.
	Raw       uint16         // Operand bytes as written, before resolution.
	Operand   Operand        // Resolved operand.
	Length    uint16         // Opcode plus operand bytes.
}

// Decode resolves the instruction at Pc. The CPU state is not modified.
func (cpu *Cpu) Decode() (dec Decoded) {
	pc := cpu.Pc
	code := cpu.Read(pc)
	def := OpcodeOf(code)

	dec = Decoded{
		Pc:        pc,
		Opcode:    code,
		Operation: def.Operation,
		Mode:      def.Mode,
		Length:    def.Length(),
	}

	arg := cpu.Read(pc + 1)
	word := cpu.ReadWord(pc + 1)

	switch def.Mode {
	case MODE_IMPLIED:
		dec.Operand = NoOperand{}
	case MODE_ACCUMULATOR:
		dec.Operand = AccumulatorOperand{}
	case MODE_IMMEDIATE:
		dec.Raw = uint16(arg)
		dec.Operand = ConstantOperand{Value: arg}
	case MODE_ZERO_PAGE:
		dec.Raw = uint16(arg)
		dec.Operand = AddressOperand{Address: uint16(arg)}
	case MODE_ZERO_PAGE_X:
		dec.Raw = uint16(arg)
		dec.Operand = AddressOperand{Address: uint16(arg + cpu.X)}
	case MODE_ZERO_PAGE_Y:
		dec.Raw = uint16(arg)
		dec.Operand = AddressOperand{Address: uint16(arg + cpu.Y)}
	case MODE_RELATIVE:
		dec.Raw = uint16(arg)
		next := pc + dec.Length
		dec.Operand = AddressOperand{Address: next + uint16(int16(int8(arg)))}
	case MODE_ABSOLUTE:
		dec.Raw = word
		dec.Operand = AddressOperand{Address: word}
	case MODE_ABSOLUTE_X:
		dec.Raw = word
		dec.Operand = AddressOperand{Address: word + uint16(cpu.X)}
	case MODE_ABSOLUTE_Y:
		dec.Raw = word
		dec.Operand = AddressOperand{Address: word + uint16(cpu.Y)}
	case MODE_INDIRECT:
		dec.Raw = word
		var target uint16
		if cpu.Quirks.JumpIndirectPageWrap {
			hi_addr := (word & 0xff00) | uint16(uint8(word)+1)
			target = uint16(cpu.Read(word)) | uint16(cpu.Read(hi_addr))<<8
		} else {
			target = cpu.ReadWord(word)
		}
		dec.Operand = AddressOperand{Address: target}
	case MODE_INDIRECT_X:
		dec.Raw = uint16(arg)
		ptr := arg + cpu.X
		if cpu.Quirks.IndexedIndirectDeref {
			target := uint16(cpu.Read(uint16(ptr))) | uint16(cpu.Read(uint16(ptr+1)))<<8
			dec.Operand = AddressOperand{Address: target}
		} else {
			dec.Operand = AddressOperand{Address: uint16(ptr)}
		}
	case MODE_INDIRECT_Y:
		dec.Raw = uint16(arg)
		dec.Operand = AddressOperand{Address: cpu.ReadWord(uint16(arg)) + uint16(cpu.Y)}
	default:
		panic("unknown addressing mode")
	}

	return
}

// String disassembles the instruction.
func (dec Decoded) String() (text string) {
	mnemonic := dec.Operation.String()

	switch dec.Mode {
	case MODE_IMPLIED:
		text = mnemonic
	case MODE_ACCUMULATOR:
		text = fmt.Sprintf("%v A", mnemonic)
	case MODE_IMMEDIATE:
		text = fmt.Sprintf("%v #$%02X", mnemonic, dec.Raw)
	case MODE_ZERO_PAGE:
		text = fmt.Sprintf("%v $%02X", mnemonic, dec.Raw)
	case MODE_ZERO_PAGE_X:
		text = fmt.Sprintf("%v $%02X,X", mnemonic, dec.Raw)
	case MODE_ZERO_PAGE_Y:
		text = fmt.Sprintf("%v $%02X,Y", mnemonic, dec.Raw)
	case MODE_RELATIVE:
		target := dec.Pc + dec.Length + uint16(int16(int8(dec.Raw)))
		text = fmt.Sprintf("%v $%04X", mnemonic, target)
	case MODE_ABSOLUTE:
		text = fmt.Sprintf("%v $%04X", mnemonic, dec.Raw)
	case MODE_ABSOLUTE_X:
		text = fmt.Sprintf("%v $%04X,X", mnemonic, dec.Raw)
	case MODE_ABSOLUTE_Y:
		text = fmt.Sprintf("%v $%04X,Y", mnemonic, dec.Raw)
	case MODE_INDIRECT:
		text = fmt.Sprintf("%v ($%04X)", mnemonic, dec.Raw)
	case MODE_INDIRECT_X:
		text = fmt.Sprintf("%v ($%02X,X)", mnemonic, dec.Raw)
	case MODE_INDIRECT_Y:
		text = fmt.Sprintf("%v ($%02X),Y", mnemonic, dec.Raw)
	}

	if dec.Operation == OP_UNDEFINED {
		text = fmt.Sprintf(".byte $%02X", dec.Opcode)
	}

	return
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	MEMORY_SIZE = 0x10000 // Flat address space.
	ZERO_PAGE   = 0x0000  // Base of the zero page.
	STACK_PAGE  = 0x0100  // Base of the stack page.
	RESET_PC    = 0x0600  // Program counter after construction.
	RESET_SP    = 0xff    // Stack pointer after construction.
)

var _cpu_defines = map[string]string{
	"ZERO_PAGE":   fmt.Sprintf("0x%04x", ZERO_PAGE),
	"STACK_PAGE":  fmt.Sprintf("0x%04x", STACK_PAGE),
	"RESET_PC":    fmt.Sprintf("0x%04x", RESET_PC),
	"RESET_SP":    fmt.Sprintf("0x%02x", RESET_SP),
	"MEMORY_SIZE": fmt.Sprintf("0x%x", MEMORY_SIZE),
}

// Quirks selects optional emulation of addressing defects of the real part.
type Quirks struct {
	// IndexedIndirectDeref makes (zp,X) read its target address from the
	// zero-page pointer at zp+X, instead of using zp+X itself as the address.
	IndexedIndirectDeref bool
	// JumpIndirectPageWrap makes JMP ($xxFF) fetch the high byte of the
	// target from $xx00 instead of the next page.
	JumpIndirectPageWrap bool
}

// Cpu is the simulation context of a 6502 processor and its memory.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Quirks  Quirks // Addressing defect emulation.

	Pc     uint16            // Program counter.
	Sp     uint8             // Stack pointer, offset into STACK_PAGE.
	A      uint8             // Accumulator.
	X      uint8             // X index register.
	Y      uint8             // Y index register.
	Status Status            // Status flags.
	Memory [MEMORY_SIZE]byte // Flat memory image.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Sets Pc to RESET_PC and Sp to RESET_SP.
// - Clears A, X, Y, and all flags except the stub bit.
// - Zeros the memory and the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc = RESET_PC
	cpu.Sp = RESET_SP
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.Status = STATUS_RESET
	clear(cpu.Memory[:])
	cpu.Ticks = 0
}

// Load copies data into memory starting at addr. Bytes that would land past
// the end of memory are dropped.
func (cpu *Cpu) Load(addr uint16, data []byte) {
	copy(cpu.Memory[addr:], data)
}

// Read returns the byte at addr.
func (cpu *Cpu) Read(addr uint16) uint8 {
	return cpu.Memory[addr]
}

// ReadWord returns the little-endian word at addr. The high byte address
// wraps from 0xffff to 0x0000.
func (cpu *Cpu) ReadWord(addr uint16) uint16 {
	return uint16(cpu.Memory[addr]) | uint16(cpu.Memory[addr+1])<<8
}

// Write stores a byte at addr.
func (cpu *Cpu) Write(addr uint16, value uint8) {
	cpu.Memory[addr] = value
}

// Flag returns true if the status flag is set.
func (cpu *Cpu) Flag(flag Flag) bool {
	return cpu.Status.Has(flag)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "sp", "a", "x", "y", "status"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.Pc)
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Sp)
		case "a":
			strval = fmt.Sprintf("%02X", cpu.A)
		case "x":
			strval = fmt.Sprintf("%02X", cpu.X)
		case "y":
			strval = fmt.Sprintf("%02X", cpu.Y)
		case "status":
			strval = fmt.Sprintf("%08b %v", uint8(cpu.Status), cpu.Status)
		}
		text += fmt.Sprintf("% 6s: %v\n", reg, strval)
	}

	return
}

// Tick executes a single instruction: fetch, decode, and apply.
//
// An undefined opcode returns an *ErrOpcode and leaves the state unchanged.
func (cpu *Cpu) Tick() (err error) {
	decoded := cpu.Decode()

	err = cpu.Execute(decoded)
	if err != nil && cpu.Verbose {
		var eo *ErrOpcode
		if errors.As(err, &eo) {
			log.Printf("%04x: %v", eo.Pc, err)
		}
	}

	return
}

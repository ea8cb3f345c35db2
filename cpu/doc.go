// Package cpu implements the MOS 6502 interpreter and assembler for the m65 system.
//
// The CPU consists of a 16-bit program counter (Pc), an 8-bit stack pointer (Sp)
// into the fixed stack page at 0x0100, the accumulator (A) and index registers
// (X, Y), the status flags, and a flat 64KiB memory. Each Tick() fetches the
// opcode at Pc, resolves its operand through the addressing mode named by the
// opcode catalog, and applies the operation.
//
// The assembler provides a conventional 6502 assembly syntax, supporting macros,
// labels, equates, origins, data directives and compile-time expression evaluation.
package cpu

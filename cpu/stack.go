package cpu

// The stack lives in STACK_PAGE and grows down. Sp wraps modulo 256 in both
// directions; there is no overflow or underflow detection.

// StackAddress returns the memory address Sp currently points at.
func (cpu *Cpu) StackAddress() uint16 {
	return STACK_PAGE | uint16(cpu.Sp)
}

// Push writes a byte at the stack pointer, then decrements it.
func (cpu *Cpu) Push(value uint8) {
	cpu.Memory[cpu.StackAddress()] = value
	cpu.Sp--
}

// Pull increments the stack pointer, then reads the byte there.
func (cpu *Cpu) Pull() (value uint8) {
	cpu.Sp++
	value = cpu.Memory[cpu.StackAddress()]
	return
}

// PushWord pushes the high byte, then the low byte.
func (cpu *Cpu) PushWord(value uint16) {
	cpu.Push(uint8(value >> 8))
	cpu.Push(uint8(value))
}

// PullWord pulls the low byte, then the high byte.
func (cpu *Cpu) PullWord() (value uint16) {
	lo := uint16(cpu.Pull())
	hi := uint16(cpu.Pull())
	value = hi<<8 | lo
	return
}

// Peek returns the byte that the next Pull would return, without pulling it.
func (cpu *Cpu) Peek() uint8 {
	return cpu.Memory[STACK_PAGE|uint16(cpu.Sp+1)]
}

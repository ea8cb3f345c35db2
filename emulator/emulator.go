// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/m65/cpu"
	"github.com/ezrec/m65/internal"
	"github.com/ezrec/m65/io"
)

const (
	DEFAULT_MAX_TICKS = 0 // No tick limit.
)

var _emulator_defines = map[string]string{
	"DEFAULT_MAX_TICKS": fmt.Sprintf("%v", DEFAULT_MAX_TICKS),
}

// Emulator state. CPU + program listing + memory images.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Rom   io.Rom   // Raw binary image.
	Tape  io.Tape  // Hex listing image.
	Depot io.Depot // Directory of images.

	MaxTicks int   // If non-zero, Tick fails once this many instructions have run.
	Halted   error // Why the last run stopped, if it stopped on an undefined opcode.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:      cpu.NewCpu(),
		Program:  &cpu.Program{},
		MaxTicks: DEFAULT_MAX_TICKS,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Depot.Defines(),
	)
}

// images in load order. Later images overwrite earlier ones.
func (emu *Emulator) images() []io.Image {
	return []io.Image{emu.Program, &emu.Rom, &emu.Tape, &emu.Depot}
}

// Entry is the initial program counter: the program origin, else the first
// byte of the first loaded image, else cpu.RESET_PC.
func (emu *Emulator) Entry() uint16 {
	for _, image := range emu.images() {
		for addr := range image.Segments() {
			return addr
		}
	}

	return cpu.RESET_PC
}

// Reset the emulator state, and load all images into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = false

	emu.Cpu.Reset()
	emu.Halted = nil

	for _, image := range emu.images() {
		count := io.LoadImage(emu.Cpu, image)
		if emu.Verbose && count > 0 {
			log.Printf("emulator: loaded %T (%d bytes)", image, count)
		}
	}

	emu.Cpu.Pc = emu.Entry()

	emu.Cpu.Verbose = emu.Verbose

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
//
// Running into an undefined opcode ends the run: done is set, and the
// opcode error is kept in Halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrUndefined) {
		emu.Halted = err
		err = nil
		done = true
		return
	}

	return
}

// Run ticks until done or error.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

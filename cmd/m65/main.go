// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/term"

	"github.com/ezrec/m65/cpu"
	"github.com/ezrec/m65/emulator"
	"github.com/ezrec/m65/io"
	"github.com/ezrec/m65/remote"
	"github.com/ezrec/m65/translate"
)

// parseAddr accepts $hex, 0xhex, or decimal addresses.
func parseAddr(text string) (addr uint16, err error) {
	var value uint64
	if hex, ok := strings.CutPrefix(text, "$"); ok {
		value, err = strconv.ParseUint(hex, 16, 16)
	} else {
		value, err = strconv.ParseUint(text, 0, 16)
	}
	addr = uint16(value)
	return
}

// parseRange parses a from:to address range.
func parseRange(text string) (from uint16, to uint16, err error) {
	from_text, to_text, ok := strings.Cut(text, ":")
	if !ok {
		err = errors.New(translate.From("range must be from:to"))
		return
	}
	from, err = parseAddr(from_text)
	if err != nil {
		return
	}
	to, err = parseAddr(to_text)
	return
}

// step runs the emulator one instruction per key press.
//
// Keys: 'q' quits, 'r' shows the registers, 'c' runs to the end, and any
// other key executes one instruction.
func step(emu *emulator.Emulator) (err error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		var old *term.State
		old, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer term.Restore(fd, old)
	}

	key := make([]byte, 1)
	for {
		dec := emu.Cpu.Decode()
		fmt.Printf("%04X  %-16v ; line %d\r\n", dec.Pc, dec, emu.LineNo())

		_, err = os.Stdin.Read(key)
		if err != nil {
			return
		}

		switch key[0] {
		case 'q', 0x03:
			return
		case 'r':
			fmt.Print(strings.ReplaceAll(emu.Cpu.String(), "\n", "\r\n"))
			continue
		case 'c':
			return emu.Run()
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

func main() {
	var compile string
	var binary string
	var origin string
	var tape string
	var depot string
	var save string
	var ticks int
	var dump string
	var verbose bool
	var stepping bool
	var viz string
	var listen string
	var ws string
	var deref_ix bool
	var jmp_bug bool
	var lang string

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&binary, "b", "", "Raw binary image to load")
	flag.StringVar(&origin, "org", fmt.Sprintf("0x%04x", cpu.RESET_PC), "Load address of the -b image")
	flag.StringVar(&tape, "t", "", "Hex listing to load")
	flag.StringVar(&depot, "d", "", "Depot directory of XXXX.bin images to load")
	flag.StringVar(&save, "s", "", "Save memory to a depot directory after the run")
	flag.IntVar(&ticks, "n", emulator.DEFAULT_MAX_TICKS, "Tick limit (0 for none)")
	flag.StringVar(&dump, "dump", "", "Dump memory from:to after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&stepping, "step", false, "Single step from the terminal")
	flag.StringVar(&viz, "viz", "", "Write a graphviz .dot of the assembled program")
	flag.StringVar(&listen, "listen", "", "Serve the remote protocol on a TCP address")
	flag.StringVar(&ws, "ws", "", "Serve the remote protocol over WebSocket on an HTTP address")
	flag.BoolVar(&deref_ix, "deref-ix", false, "(zp,X) dereferences the zero page pointer")
	flag.BoolVar(&jmp_bug, "jmp-bug", false, "JMP ($xxFF) wraps within the page")
	flag.StringVar(&lang, "lang", "", "Message language (for example, en-US)")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.SetLocales(lang)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.MaxTicks = ticks
	emu.Cpu.Quirks = cpu.Quirks{
		IndexedIndirectDeref: deref_ix,
		JumpIndirectPageWrap: jmp_bug,
	}

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for equ, value := range emu.Defines() {
			asm.Predefine(equ, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if len(binary) != 0 {
		addr, err := parseAddr(origin)
		if err != nil {
			log.Fatalf("-org %v: %v", origin, err)
		}
		inf, err := os.Open(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		defer inf.Close()

		emu.Rom.Origin = addr
		err = emu.Rom.Unmarshal(inf)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	}

	if len(tape) != 0 {
		inf, err := os.Open(tape)
		if err != nil {
			log.Fatalf("%v: %v", tape, err)
		}
		defer inf.Close()

		err = emu.Tape.Unmarshal(inf)
		if err != nil {
			log.Fatalf("%v: %v", tape, err)
		}
	}

	if len(depot) != 0 {
		err := emu.Depot.Unmarshal(io.DirFS(depot))
		if err != nil {
			log.Fatalf("%v: %v", depot, err)
		}
	}

	if len(viz) != 0 {
		ouf, err := os.Create(viz)
		if err != nil {
			log.Fatalf("%v: %v", viz, err)
		}
		memviz.Map(ouf, emu.Program)
		err = ouf.Close()
		if err != nil {
			log.Fatalf("%v: %v", viz, err)
		}
	}

	// Serve remote sessions instead of running.
	if len(listen) != 0 || len(ws) != 0 {
		srv := &remote.Server{
			Verbose: verbose,
			Quirks:  emu.Cpu.Quirks,
			Images:  []io.Image{emu.Program, &emu.Rom, &emu.Tape, &emu.Depot},
		}
		failed := make(chan error, 2)
		if len(ws) != 0 {
			go func() { failed <- srv.ListenAndServeWS(ws) }()
		}
		if len(listen) != 0 {
			listener, err := net.Listen("tcp", listen)
			if err != nil {
				log.Fatalf("%v: %v", listen, err)
			}
			go func() { failed <- srv.Serve(listener) }()
		}
		log.Fatal(<-failed)
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	if stepping {
		err = step(emu)
	} else {
		err = emu.Run()
	}
	if err != nil {
		log.Fatal(err)
	}

	if verbose {
		log.Printf("halted: %v", emu.Halted)
		log.Printf("ticks: %v\n%v", emu.Ticks(), emu.Cpu.String())
	}

	if len(dump) != 0 {
		from, to, err := parseRange(dump)
		if err != nil {
			log.Fatalf("-dump %v: %v", dump, err)
		}
		err = io.Dump(os.Stdout, emu.Cpu, from, to)
		if err != nil {
			log.Fatalf("-dump %v: %v", dump, err)
		}
	}

	if len(save) != 0 {
		err = os.MkdirAll(save, 0755)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		saved := &io.Depot{}
		saved.Capture(emu.Cpu)
		err = saved.Marshal(io.DirFS(save))
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
	}
}

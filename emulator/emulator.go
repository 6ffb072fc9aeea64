// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"io"
	"iter"
	"log"
	"os"
	"strings"

	"github.com/ezrec/stackcpu/cpu"
	"github.com/ezrec/stackcpu/internal"
	stackio "github.com/ezrec/stackcpu/io"
)

// Emulator state. CPU + program listing + devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console stackio.Console // Console device for `in` and `out`.
	Screen  *stackio.Screen // Screen device for `draw`.
}

// NewEmulator creates a new emulator on the standard input and output.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(nil),
		Program: &cpu.Program{},
		Screen:  stackio.NewScreen(os.Stdout),
	}

	emu.Console.Input = os.Stdin
	emu.Console.Output = os.Stdout

	emu.Cpu.Console = &emu.Console
	emu.Cpu.Display = emu.Screen

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		cpu.Defines(),
		emu.Console.Defines(),
		emu.Screen.Defines(),
	)
}

// Assemble parses source into the emulator program, with every device
// define available as an equate.
func (emu *Emulator) Assemble(source io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Reset loads the program into a freshly reset CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = false
	emu.Cpu.Load(emu.Program.Code)
	emu.Cpu.Verbose = emu.Verbose

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	line, ok := emu.Program.Debug(emu.Cpu.Ip)
	if !ok {
		return 0
	}

	return line.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	offset := emu.Cpu.Ip
	line, _ := emu.Program.Debug(offset)
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: line.LineNo, Offset: offset, Err: err}
		}
	}()

	if emu.Verbose && line.LineNo != 0 {
		log.Printf("line %d: %v", line.LineNo, strings.Join(line.Words, " "))
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}

	return
}

// Run ticks until the program ends or faults.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

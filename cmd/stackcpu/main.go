// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/stackcpu/cpu"
	"github.com/ezrec/stackcpu/emulator"
	"github.com/ezrec/stackcpu/translate"
)

func main() {
	var compile string
	var input string
	var verbose bool
	var disassemble bool

	flag.StringVar(&compile, "c", "", ".asm file to compile and run")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&disassemble, "d", false, "Print the program as assembler text and exit")

	flag.Parse()

	if verbose {
		log.Printf("language: %v", translate.Language())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(compile) != 0 {
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}

		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		binary := "prog.bin"
		switch flag.NArg() {
		case 0:
		case 1:
			binary = flag.Arg(0)
		default:
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
		}

		code, err := os.ReadFile(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		emu.Program = cpu.LoadProgram(code)
		compile = binary
	}

	if disassemble {
		fmt.Print(emu.Program.Source())
		return
	}

	if input != "-" {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Console.Input = inf
	}

	emu.Reset()
	for done, err := emu.Tick(); !done; done, err = emu.Tick() {
		if err != nil {
			if verbose {
				log.Print(emu.Cpu.String())
			}
			log.Fatalf("%v: %v", compile, err)
		}
	}
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/stackcpu/cpu"
	"github.com/ezrec/stackcpu/internal"
	stackio "github.com/ezrec/stackcpu/io"
	"github.com/ezrec/stackcpu/translate"
)

func main() {
	var output string
	var listing bool
	var verbose bool

	flag.StringVar(&output, "o", "", "Machine code output (default: input with a .bin extension)")
	flag.BoolVar(&listing, "l", false, "Print a listing")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	input := "output.asm"
	switch flag.NArg() {
	case 0:
	case 1:
		input = flag.Arg(0)
	default:
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	if len(output) == 0 {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
	}

	inf, err := os.Open(input)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}
	defer inf.Close()

	if verbose {
		log.Printf("language: %v", translate.Language())
	}

	// Devices are not opened; only their equates are needed.
	asm := &cpu.Assembler{Verbose: verbose}
	devices := internal.IterSeq2Concat(
		cpu.Defines(),
		(&stackio.Console{}).Defines(),
		(&stackio.Screen{}).Defines(),
	)
	for key, value := range devices {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}

	if listing {
		fmt.Print(prog.Listing())
	}

	err = os.WriteFile(output, prog.Code, 0o644)
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}

	if verbose {
		log.Printf("%v: %d bytes", output, len(prog.Code))
	}
}

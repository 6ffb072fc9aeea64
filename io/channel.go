// Package io provides the devices of the stack machine: a line oriented
// console for `in` and `out`, and a terminal screen for `draw`.
package io

import (
	"iter"

	"github.com/ezrec/stackcpu/cpu"
)

// Device is implemented by every device attached to the CPU.
type Device interface {
	// Defines returns the assembler equates the device provides.
	Defines() iter.Seq2[string, string]
}

var (
	_ cpu.Console = (*Console)(nil)
	_ cpu.Display = (*Screen)(nil)
	_ Device      = (*Console)(nil)
	_ Device      = (*Screen)(nil)
)

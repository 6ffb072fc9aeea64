// Package cpu implements the stack machine and its assembler.
//
// The machine has an instruction pointer addressing bytes of machine
// code, four fixed-point registers (ax, bx, cx, dx), a bounded stack, a
// flat data memory and a 64x64 framebuffer of colour codes. All
// arithmetic is fixed-point with two decimal digits (see Fixed).
//
// Every instruction is one opcode byte followed by zero, one or two
// 32-bit operand words in native byte order. The overloads of each
// mnemonic are described once, in a single table shared by the
// assembler, the disassembler and the interpreter.
//
// The assembler is two pass. It supports labels, .equ equates,
// character literals and compile-time $(...) expressions.
package cpu

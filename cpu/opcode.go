package cpu

import (
	"fmt"
)

// Mode is an operand addressing mode.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_NONE          = Mode(0) // none
	MODE_NUMBER        = Mode(1) // number
	MODE_REGISTER      = Mode(2) // register
	MODE_RAM_IMMED     = Mode(3) // [n]
	MODE_RAM_REG       = Mode(4) // [reg]
	MODE_RAM_REG_IMMED = Mode(5) // [reg+n]
	MODE_LABEL         = Mode(6) // label
)

// Words returns the number of operand words the mode encodes.
func (mode Mode) Words() int {
	switch mode {
	case MODE_NONE:
		return 0
	case MODE_RAM_REG_IMMED:
		return 2
	default:
		return 1
	}
}

// Operand is a classified operand token.
type Operand struct {
	Text  string
	Class Mode
}

// Overload is one addressing mode variant of an instruction.
type Overload struct {
	Opcode byte                  // Globally unique opcode.
	Mode   Mode                  // Encoding of the operand.
	Match  func(op Operand) bool // Selects this overload during assembly.

	exec func(cpu *Cpu, op Decoded) error
}

// Size returns the encoded instruction size in bytes.
func (ov *Overload) Size() int {
	return 1 + WORD_SIZE*ov.Mode.Words()
}

// Instruction describes a mnemonic and its overloads, in match order.
type Instruction struct {
	Mnemonic  string
	Arity     int
	Overloads []Overload
}

func class(mode Mode) func(op Operand) bool {
	return func(op Operand) bool {
		return op.Class == mode
	}
}

// unsigned matches non-negative numbers only.
func unsigned(op Operand) bool {
	return op.Class == MODE_NUMBER && op.Text[0] != '-'
}

var (
	isNone        = class(MODE_NONE)
	isNumber      = class(MODE_NUMBER)
	isWord        = class(MODE_REGISTER)
	isRamImmed    = class(MODE_RAM_IMMED)
	isRamReg      = class(MODE_RAM_REG)
	isRamRegImmed = class(MODE_RAM_REG_IMMED)
)

// branch builds the label and number overloads of a control transfer.
func branch(opcode byte, exec func(cpu *Cpu, op Decoded) error) []Overload {
	return []Overload{
		{opcode, MODE_LABEL, isWord, exec},
		{opcode + 1, MODE_NUMBER, isNumber, exec},
	}
}

func none(opcode byte, exec func(cpu *Cpu, op Decoded) error) []Overload {
	return []Overload{{opcode, MODE_NONE, isNone, exec}}
}

// instructionSet is the single description of the ISA shared by the
// assembler, the disassembler and the cpu.
var instructionSet = []Instruction{
	{"nop", 0, none(0, (*Cpu).opNop)},
	{"push", 1, []Overload{
		{1, MODE_NUMBER, isNumber, (*Cpu).opPush},
		{11, MODE_REGISTER, isWord, (*Cpu).opPush},
		{41, MODE_RAM_IMMED, isRamImmed, (*Cpu).opPush},
		{43, MODE_RAM_REG_IMMED, isRamRegImmed, (*Cpu).opPush},
		{42, MODE_RAM_REG, isRamReg, (*Cpu).opPush},
	}},
	{"pop", 1, []Overload{
		{2, MODE_REGISTER, isWord, (*Cpu).opPop},
		{52, MODE_RAM_IMMED, isRamImmed, (*Cpu).opPop},
		{54, MODE_RAM_REG_IMMED, isRamRegImmed, (*Cpu).opPop},
		{53, MODE_RAM_REG, isRamReg, (*Cpu).opPop},
	}},
	{"add", 0, none(3, (*Cpu).opAdd)},
	{"sub", 0, none(4, (*Cpu).opSub)},
	{"mul", 0, none(5, (*Cpu).opMul)},
	{"div", 0, none(6, (*Cpu).opDiv)},
	{"end", 0, none(7, (*Cpu).opEnd)},
	{"in", 0, none(8, (*Cpu).opIn)},
	{"out", 0, none(9, (*Cpu).opOut)},
	{"call", 1, []Overload{
		{10, MODE_LABEL, isWord, (*Cpu).opCall},
		{12, MODE_NUMBER, isNumber, (*Cpu).opCall},
	}},
	{"ret", 0, none(13, (*Cpu).opRet)},
	{"sqrt", 0, none(14, (*Cpu).opSqrt)},
	{"inc", 1, []Overload{{15, MODE_REGISTER, isWord, (*Cpu).opInc}}},
	{"pix", 1, []Overload{
		{16, MODE_NUMBER, unsigned, (*Cpu).opPix},
		{17, MODE_REGISTER, isWord, (*Cpu).opPix},
	}},
	{"draw", 0, none(18, (*Cpu).opDraw)},
	{"delay", 1, []Overload{{19, MODE_NUMBER, isNumber, (*Cpu).opDelay}}},
	{"jmp", 1, branch(20, (*Cpu).opJmp)},
	{"ja", 1, branch(22, jumpIf(func(top, second int32) bool { return top > second }))},
	{"jae", 1, branch(24, jumpIf(func(top, second int32) bool { return top >= second }))},
	{"jb", 1, branch(26, jumpIf(func(top, second int32) bool { return top < second }))},
	{"jbe", 1, branch(28, jumpIf(func(top, second int32) bool { return top <= second }))},
	{"je", 1, branch(30, jumpIf(func(top, second int32) bool { return top == second }))},
	{"jne", 1, branch(32, jumpIf(func(top, second int32) bool { return top != second }))},
}

type opcodeEntry struct {
	Instruction *Instruction
	Overload    *Overload
}

var (
	opcodeTable   [256]*opcodeEntry
	mnemonicTable = map[string]*Instruction{}
)

func init() {
	for n := range instructionSet {
		ins := &instructionSet[n]
		if _, ok := mnemonicTable[ins.Mnemonic]; ok {
			panic("duplicate mnemonic " + ins.Mnemonic)
		}
		mnemonicTable[ins.Mnemonic] = ins
		for m := range ins.Overloads {
			ov := &ins.Overloads[m]
			if opcodeTable[ov.Opcode] != nil {
				panic(fmt.Sprintf("duplicate opcode %d for %v", ov.Opcode, ins.Mnemonic))
			}
			opcodeTable[ov.Opcode] = &opcodeEntry{Instruction: ins, Overload: ov}
		}
	}
}

// Lookup returns the instruction for a mnemonic.
func Lookup(mnemonic string) (ins *Instruction, ok bool) {
	ins, ok = mnemonicTable[mnemonic]
	return
}

// LookupOpcode returns the instruction and overload owning an opcode.
func LookupOpcode(opcode byte) (ins *Instruction, ov *Overload, ok bool) {
	entry := opcodeTable[opcode]
	if entry == nil {
		return
	}

	return entry.Instruction, entry.Overload, true
}

// Select returns the first overload accepting the operand.
func (ins *Instruction) Select(op Operand) (ov *Overload, ok bool) {
	for n := range ins.Overloads {
		if ins.Overloads[n].Match(op) {
			return &ins.Overloads[n], true
		}
	}

	return
}

// Instructions returns the instruction set in declaration order.
func Instructions() []Instruction {
	return instructionSet
}

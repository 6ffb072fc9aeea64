package cpu

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strings"
)

// Line is the listing entry of one assembled instruction.
type Line struct {
	LineNo int      // Source line number.
	Offset int      // Byte offset of the instruction.
	Size   int      // Encoded size in bytes.
	Words  []string // Source words (mnemonic and operand).
}

// Program is assembled machine code with its optional listing.
type Program struct {
	Code  []byte
	Lines []Line
}

// LoadProgram wraps raw machine code without a listing.
func LoadProgram(code []byte) *Program {
	return &Program{Code: code}
}

// Debug returns the listing entry covering offset.
func (prog *Program) Debug(offset int) (line Line, ok bool) {
	for _, ln := range prog.Lines {
		if offset >= ln.Offset && offset < ln.Offset+ln.Size {
			return ln, true
		}
	}

	return
}

// Disassemble decodes the program, stopping at the first undecodable byte.
func (prog *Program) Disassemble() iter.Seq2[int, Decoded] {
	return func(yield func(offset int, op Decoded) bool) {
		for offset := 0; offset < len(prog.Code); {
			op, err := Decode(prog.Code, offset)
			if err != nil {
				return
			}
			if !yield(offset, op) {
				return
			}
			offset = op.Next()
		}
	}
}

// Source renders the decodable part of the program as assembler text,
// defining a generated label at every branch target.
func (prog *Program) Source() string {
	targets := map[int]bool{}
	for _, op := range prog.Disassemble() {
		if op.Mode() == MODE_LABEL {
			targets[int(op.Args[0])] = true
		}
	}

	var text strings.Builder
	end := 0
	for offset, op := range prog.Disassemble() {
		if targets[offset] {
			fmt.Fprintf(&text, "%s:\n", LabelName(offset))
		}
		fmt.Fprintf(&text, "%v\n", op)
		end = op.Next()
	}
	if targets[end] {
		fmt.Fprintf(&text, "%s:\n", LabelName(end))
	}

	return text.String()
}

// Decoded is a single decoded instruction.
type Decoded struct {
	Offset      int
	Opcode      byte
	Instruction *Instruction
	Overload    *Overload
	Args        []int32
}

// Mode returns the addressing mode of the operand.
func (op Decoded) Mode() Mode {
	return op.Overload.Mode
}

// Size returns the encoded size in bytes.
func (op Decoded) Size() int {
	return op.Overload.Size()
}

// Next returns the offset of the following instruction.
func (op Decoded) Next() int {
	return op.Offset + op.Size()
}

// LabelName is the generated label for a branch target offset.
func LabelName(offset int) string {
	return fmt.Sprintf("L%04x", offset)
}

// Operand renders the operand in assembler syntax. Branch targets use
// the generated label of their offset.
func (op Decoded) Operand() string {
	switch op.Mode() {
	case MODE_NUMBER:
		return fmt.Sprintf("%d", op.Args[0])
	case MODE_LABEL:
		return LabelName(int(op.Args[0]))
	case MODE_REGISTER:
		return RegisterName(op.Args[0])
	case MODE_RAM_IMMED:
		return fmt.Sprintf("[%d]", op.Args[0])
	case MODE_RAM_REG:
		return fmt.Sprintf("[%s]", RegisterName(op.Args[0]))
	case MODE_RAM_REG_IMMED:
		return fmt.Sprintf("[%s%+d]", RegisterName(op.Args[0]), op.Args[1])
	}

	return ""
}

// String returns the assembly language representation of the instruction.
func (op Decoded) String() string {
	operand := op.Operand()
	if operand == "" {
		return op.Instruction.Mnemonic
	}
	return op.Instruction.Mnemonic + " " + operand
}

// Encode appends the machine code of the instruction.
func (op Decoded) Encode(code []byte) []byte {
	code = append(code, op.Opcode)
	for _, arg := range op.Args {
		code = binary.NativeEndian.AppendUint32(code, uint32(arg))
	}
	return code
}

// Decode decodes the instruction at offset.
func Decode(code []byte, offset int) (op Decoded, err error) {
	if offset < 0 || offset >= len(code) {
		err = ErrTargetBounds
		return
	}

	opcode := code[offset]
	ins, ov, ok := LookupOpcode(opcode)
	if !ok {
		err = ErrOpcodeUnknown
		return
	}

	op = Decoded{
		Offset:      offset,
		Opcode:      opcode,
		Instruction: ins,
		Overload:    ov,
	}

	if op.Next() > len(code) {
		err = ErrOperandTruncated
		return
	}

	words := ov.Mode.Words()
	if words > 0 {
		op.Args = make([]int32, words)
		for n := range words {
			at := offset + 1 + n*WORD_SIZE
			op.Args[n] = int32(binary.NativeEndian.Uint32(code[at : at+WORD_SIZE]))
		}
	}

	return
}

// Listing renders offset, bytes and source of every line.
func (prog *Program) Listing() string {
	var text strings.Builder

	for _, ln := range prog.Lines {
		end := min(ln.Offset+ln.Size, len(prog.Code))
		fmt.Fprintf(&text, "%04x: % -30x %4d: %s\n", ln.Offset, prog.Code[ln.Offset:end], ln.LineNo, strings.Join(ln.Words, " "))
	}

	return text.String()
}

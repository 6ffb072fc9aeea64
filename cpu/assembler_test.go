package cpu

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encoded(opcode byte, args ...int32) (code []byte) {
	code = append(code, opcode)
	for _, arg := range args {
		code = binary.NativeEndian.AppendUint32(code, uint32(arg))
	}
	return
}

func concat(parts ...[]byte) (code []byte) {
	code = []byte{}
	for _, part := range parts {
		code = append(code, part...)
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Code))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("100", asm.Equate["SCALE"])
	assert.Equal("4", asm.Equate["REGISTERS"])
	assert.Equal("1024", asm.Equate["RAM_SIZE"])
	assert.Equal("1024", asm.Equate["STACK_LIMIT"])
	assert.Equal("64", asm.Equate["SCREEN_WIDTH"])
	assert.Equal("64", asm.Equate["SCREEN_HEIGHT"])
}

func TestAssemblerEncoding(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		source   string
		expected []byte
	}{
		{"nop", encoded(0)},
		{"push 5", encoded(1, 5)},
		{"push -3", encoded(1, -3)},
		{"push 0x10", encoded(1, 16)},
		{"push ax", encoded(11, 0)},
		{"push [12]", encoded(41, 12)},
		{"push [bx]", encoded(42, 1)},
		{"push [bx+4]", encoded(43, 1, 4)},
		{"push [dx-2]", encoded(43, 3, -2)},
		{"pop cx", encoded(2, 2)},
		{"pop [7]", encoded(52, 7)},
		{"pop [ax]", encoded(53, 0)},
		{"pop [ax+1]", encoded(54, 0, 1)},
		{"add", encoded(3)},
		{"sub", encoded(4)},
		{"mul", encoded(5)},
		{"div", encoded(6)},
		{"end", encoded(7)},
		{"in", encoded(8)},
		{"out", encoded(9)},
		{"call 0", encoded(12, 0)},
		{"ret", encoded(13)},
		{"sqrt", encoded(14)},
		{"inc dx", encoded(15, 3)},
		{"pix 050203", encoded(16, 50203)},
		{"pix bx", encoded(17, 1)},
		{"draw", encoded(18)},
		{"delay 18", encoded(19, 18)},
		{"jmp 0", encoded(21, 0)},
		{"ja 0", encoded(23, 0)},
		{"jae 0", encoded(25, 0)},
		{"jb 0", encoded(27, 0)},
		{"jbe 0", encoded(29, 0)},
		{"je 0", encoded(31, 0)},
		{"jne 0", encoded(33, 0)},
	}

	for _, entry := range table {
		code, err := Assemble(entry.source)
		if assert.NoError(err, entry.source) {
			assert.Equal(entry.expected, code, entry.source)
		}
	}
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"start: jmp done",
		"loop:",
		"  inc ax   ; count",
		"  call sub1",
		"  jne loop",
		"done: end",
		"sub1: a: b: ret",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(0, asm.Label["start"])
	assert.Equal(5, asm.Label["loop"])
	assert.Equal(20, asm.Label["done"])
	assert.Equal(21, asm.Label["sub1"])
	assert.Equal(21, asm.Label["a"])
	assert.Equal(21, asm.Label["b"])

	expected := concat(
		encoded(20, 20),
		encoded(15, 0),
		encoded(10, 21),
		encoded(32, 5),
		encoded(7),
		encoded(13),
	)
	assert.Equal(expected, prog.Code)
	assert.Equal(6, len(prog.Lines))
}

func TestAssemblerLayout(t *testing.T) {
	assert := assert.New(t)

	programs := []string{
		"nop",
		"push 1\npush 2\nadd\nout\nend",
		"x: push [bx+4]\npop [cx-2]\njmp x",
		"jmp fwd\npush [1]\npush [ax]\nfwd: end",
		"call f\nend\nf: pix ax\ndraw\ndelay 1\nret",
	}

	for _, source := range programs {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(source))
		if !assert.NoError(err, source) {
			continue
		}

		length := 0
		for _, line := range prog.Lines {
			assert.Equal(length, line.Offset, source)
			length += line.Size
		}
		assert.Equal(len(prog.Code), length, source)

		count := 0
		for _, op := range prog.Disassemble() {
			count++
			line, ok := prog.Debug(op.Offset)
			if assert.True(ok) {
				assert.Equal(op.Offset, line.Offset)
				assert.Equal(op.Size(), line.Size)
			}
		}
		assert.Equal(len(prog.Lines), count, source)
	}
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x20")
	program := []string{
		".equ TEN 10",
		".equ REG bx",
		"push TEN",
		"push $(TEN * 2 + BASE)",
		".equ THIRTY $(TEN * 3)",
		"push THIRTY",
		"push SCALE",
		"push LINENO",
		"push 'A'",
		"push '\\n'",
		"push REG",
		".equ BUF 100",
		".equ PTR bx",
		".equ OFF -2",
		"push [BUF]",
		"pop [PTR+4]",
		"push [PTR+OFF]",
		"push [PTR-OFF]",
		"push [PTR]",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if !assert.NoError(err) {
		t.Fatal(errors.Unwrap(err))
	}

	expected := concat(
		encoded(1, 10),
		encoded(1, 52),
		encoded(1, 30),
		encoded(1, 100),
		encoded(1, 8),
		encoded(1, 65),
		encoded(1, 10),
		encoded(11, 1),
		encoded(41, 100),
		encoded(54, 1, 4),
		encoded(43, 1, -2),
		encoded(43, 1, 2),
		encoded(42, 1),
	)
	assert.Equal(expected, prog.Code)
	assert.Equal("30", asm.Equate["THIRTY"])
	assert.Equal("bx", asm.Equate["REG"])
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := []struct {
		prog string
		line int
		err  error
	}{
		{"a:\na:\n", 2, ErrLabelDuplicate},
		{"1a: nop", 1, ErrLabelInvalid},
		{"bogus", 1, ErrInstructionInvalid},
		{"push", 1, ErrOperandMissing},
		{"push 1 2", 1, ErrOperandExtra},
		{"nop\nadd 1", 2, ErrOperandExtra},
		{"push ex", 1, ErrRegisterInvalid},
		{"push [bx+]", 1, ErrOperandSyntax},
		{"push @", 1, ErrOperandSyntax},
		{"pix -5", 1, ErrOperandSyntax},
		{"inc 5", 1, ErrOperandSyntax},
		{"delay ax", 1, ErrOperandSyntax},
		{"push 99999999999", 1, ErrOperandSyntax},
		{".equ", 1, ErrEquateSyntax},
		{".equ A", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2\n", 2, ErrEquateDuplicate},
		{"nop\nnop\njmp nowhere", 3, nil},
		{"push $(\"aaa\")", 1, nil},
		{"push $(0x10000000000)", 1, nil},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		if !assert.Error(err, entry.prog) {
			continue
		}
		if assert.True(errors.As(err, &se), entry.prog) {
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.prog)
		}
	}
}

func TestAssemblerErrMessage(t *testing.T) {
	assert := assert.New(t)

	_, err := Assemble("nop\njmp nowhere")
	var missing ErrLabelMissing
	if assert.True(errors.As(err, &missing)) {
		assert.Equal(ErrLabelMissing("nowhere"), missing)
	}
	assert.Equal("line 2 'jmp nowhere' label nowhere missing", err.Error())

	_, err = Assemble("bogus")
	assert.Equal("line 1 'bogus' instruction invalid", err.Error())
}

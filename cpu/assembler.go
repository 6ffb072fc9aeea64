// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	charRegexp  = regexp.MustCompile(`'\\?[^']'`)
	parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// statement is one tokenized source line.
type statement struct {
	lineNo int
	line   string
	labels []string
	words  []string
}

// Assembler is a two pass assembler for the stack cpu.
//
// The first pass lays out every instruction and assigns label offsets,
// the second pass emits machine code with all labels resolved.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to byte offsets.
	Equate    map[string]string // Map of equates.
}

// Assemble assembles source text into machine code.
func Assemble(source string) (code []byte, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	code = prog.Code
	return
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int32, err error) {
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseNumber(word)
		return
	}
	// Leading zeros stay decimal; only explicit prefixes select a base.
	base := 10
	digits := strings.TrimLeft(word, "+-")
	if len(digits) > 2 && digits[0] == '0' && strings.ContainsRune("xXoObB", rune(digits[1])) {
		base = 0
	}
	v64, err := strconv.ParseInt(word, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int32(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 int32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 != int64(int32(st_int64)) {
		err = ErrParseExpression(expr)
		return
	}
	value = int32(st_int64)
	return
}

// parseLine tokenizes a single line, expanding literals, expressions and equates.
func (asm *Assembler) parseLine(line string, lineno int) (st statement, err error) {
	st.lineNo = lineno
	st.line = line

	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%d", lineno)

	// Do 'x' evaluations
	line = charRegexp.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%d", str[0])
	})

	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		value := words[2]
		if equate, ok := asm.Equate[value]; ok {
			value = equate
		}
		// Numeric equates are kept in decimal.
		if number, _err := asm.valueOf(value); _err == nil {
			value = fmt.Sprintf("%d", number)
		}
		asm.Equate[words[1]] = value
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if len(label) == 0 || !isAlpha(label[0]) {
			err = ErrLabelInvalid
			return
		}
		st.labels = append(st.labels, label)
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	for n, word := range words[1:] {
		equate, ok := asm.Equate[word]
		if ok {
			words[n+1] = equate
		} else if len(word) > 2 && word[0] == '[' && word[len(word)-1] == ']' {
			words[n+1] = asm.expandRam(word)
		}
	}

	st.words = words
	return
}

// expandRam substitutes equates inside a memory operand, either for the
// whole address or for its register and displacement parts.
func (asm *Assembler) expandRam(word string) string {
	inner := word[1 : len(word)-1]
	if equate, ok := asm.Equate[inner]; ok {
		return "[" + equate + "]"
	}

	n := strings.IndexAny(inner, "+-")
	if n <= 0 {
		return word
	}

	base, sign, disp := inner[:n], inner[n], inner[n+1:]
	if equate, ok := asm.Equate[base]; ok {
		base = equate
	}
	if equate, ok := asm.Equate[disp]; ok {
		disp = equate
	}
	if strings.HasPrefix(disp, "-") {
		disp = disp[1:]
		if sign == '-' {
			sign = '+'
		} else {
			sign = '-'
		}
	}

	return "[" + base + string(sign) + disp + "]"
}

// tokenize reads all statements from the input.
func (asm *Assembler) tokenize(input io.Reader) (stmts []statement, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var st statement
		st, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		if len(st.labels) == 0 && len(st.words) == 0 {
			continue
		}

		stmts = append(stmts, st)
	}

	err = scanner.Err()
	return
}

// selectOverload finds the instruction and overload for a statement.
func (asm *Assembler) selectOverload(words []string) (ins *Instruction, ov *Overload, op Operand, err error) {
	ins, ok := Lookup(words[0])
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if len(words) > 2 {
		err = ErrOperandExtra
		return
	}

	var text string
	if len(words) == 2 {
		text = words[1]
	}

	switch {
	case ins.Arity == 1 && text == "":
		err = ErrOperandMissing
		return
	case ins.Arity == 0 && text != "":
		err = ErrOperandExtra
		return
	}

	op, err = ClassifyOperand(text)
	if err != nil {
		return
	}

	ov, ok = ins.Select(op)
	if !ok {
		err = ErrOverload{Mnemonic: ins.Mnemonic, Operand: text}
		return
	}

	return
}

// operandArgs converts an operand into its encoded words. Labels are
// only resolved when link is set.
func (asm *Assembler) operandArgs(mode Mode, op Operand, link bool) (args []int32, err error) {
	var value int32

	switch mode {
	case MODE_NONE:
		return
	case MODE_NUMBER:
		value, err = asm.valueOf(op.Text)
		if err != nil {
			return
		}
		args = []int32{value}
	case MODE_REGISTER:
		value, err = ParseRegister(op.Text)
		if err != nil {
			return
		}
		args = []int32{value}
	case MODE_RAM_IMMED:
		value, err = asm.valueOf(op.Text[1 : len(op.Text)-1])
		if err != nil {
			return
		}
		args = []int32{value}
	case MODE_RAM_REG, MODE_RAM_REG_IMMED:
		reg, disp := splitRam(op.Text)
		value, err = ParseRegister(reg)
		if err != nil {
			return
		}
		args = []int32{value}
		if mode == MODE_RAM_REG_IMMED {
			value, err = asm.valueOf(disp)
			if err != nil {
				return
			}
			args = append(args, value)
		}
	case MODE_LABEL:
		if !link {
			args = []int32{0}
			return
		}
		offset, ok := asm.Label[op.Text]
		if !ok {
			err = ErrLabelMissing(op.Text)
			return
		}
		args = []int32{int32(offset)}
	}

	return
}

// encode appends the machine code for a statement.
func (asm *Assembler) encode(code []byte, st *statement, link bool) (out []byte, err error) {
	out = code

	_, ov, op, err := asm.selectOverload(st.words)
	if err != nil {
		return
	}

	args, err := asm.operandArgs(ov.Mode, op, link)
	if err != nil {
		return
	}

	out = append(out, ov.Opcode)
	for _, arg := range args {
		out = binary.NativeEndian.AppendUint32(out, uint32(arg))
	}

	return
}

// layout is the first pass: assign label offsets and compute the code length.
func (asm *Assembler) layout(stmts []statement) (length int, err error) {
	var st *statement

	defer func() {
		if err != nil && st != nil {
			err = &ErrSyntax{LineNo: st.lineNo, Line: st.line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)

	for n := range stmts {
		st = &stmts[n]

		for _, label := range st.labels {
			_, ok := asm.Label[label]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = length
		}

		if len(st.words) == 0 {
			continue
		}

		var ov *Overload
		var op Operand
		_, ov, op, err = asm.selectOverload(st.words)
		if err != nil {
			return
		}

		// Validate the operand now; only labels are left for later.
		_, err = asm.operandArgs(ov.Mode, op, false)
		if err != nil {
			return
		}

		length += ov.Size()
	}

	return
}

// emit is the second pass: write the machine code with labels resolved.
func (asm *Assembler) emit(stmts []statement, length int) (prog *Program, err error) {
	var st *statement

	defer func() {
		if err != nil && st != nil {
			err = &ErrSyntax{LineNo: st.lineNo, Line: st.line, Err: err}
		}
	}()

	code := make([]byte, 0, length)
	var lines []Line

	for n := range stmts {
		st = &stmts[n]
		if len(st.words) == 0 {
			continue
		}

		offset := len(code)
		code, err = asm.encode(code, st, true)
		if err != nil {
			return
		}

		lines = append(lines, Line{
			LineNo: st.lineNo,
			Offset: offset,
			Size:   len(code) - offset,
			Words:  st.words,
		})
	}

	st = nil
	if len(code) != length {
		err = fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(code), length)
		return
	}

	prog = &Program{
		Code:  code,
		Lines: lines,
	}

	return
}

// Parse parses an input stream into a Program containing machine code.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	asm.Equate = maps.Clone(_cpu_defines)
	asm.Equate["LINENO"] = "0"
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	stmts, err := asm.tokenize(input)
	if err != nil {
		return
	}

	length, err := asm.layout(stmts)
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("layout: %d bytes, %d labels", length, len(asm.Label))
	}

	prog, err = asm.emit(stmts, length)
	return
}

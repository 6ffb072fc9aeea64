package cpu

import (
	"strings"
)

// registerMap maps register names to register indexes.
var registerMap = map[string]int32{
	"ax": 0,
	"bx": 1,
	"cx": 2,
	"dx": 3,
}

var registerNames = [REGISTER_COUNT]string{"ax", "bx", "cx", "dx"}

// RegisterName returns the name of a register index.
func RegisterName(index int32) string {
	if index < 0 || index >= REGISTER_COUNT {
		return f("r%d", index)
	}
	return registerNames[index]
}

// ParseRegister resolves a register name to its index.
func ParseRegister(name string) (index int32, err error) {
	index, ok := registerMap[name]
	if !ok {
		err = ErrParseRegister(name)
	}
	return
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for n := range len(s) {
		if !isDigit(s[n]) {
			return false
		}
	}
	return true
}

// ClassifyOperand determines the addressing mode of an operand token.
//
// Alphabetic words classify as MODE_REGISTER; overloads encoding a
// MODE_LABEL accept them as label names instead.
func ClassifyOperand(text string) (op Operand, err error) {
	op.Text = text

	switch {
	case len(text) == 0:
		op.Class = MODE_NONE
	case isDigit(text[0]), text[0] == '-' && len(text) > 1 && isDigit(text[1]):
		op.Class = MODE_NUMBER
	case isAlpha(text[0]):
		op.Class = MODE_REGISTER
	case text[0] == '[':
		op.Class, err = classifyRam(text)
	default:
		err = ErrParseOperand(text)
	}

	return
}

// classifyRam classifies a bracketed memory operand.
func classifyRam(text string) (mode Mode, err error) {
	if len(text) < 3 || text[len(text)-1] != ']' {
		err = ErrParseOperand(text)
		return
	}

	inner := text[1 : len(text)-1]
	switch {
	case isDigits(inner):
		mode = MODE_RAM_IMMED
	case isAlpha(inner[0]):
		n := strings.IndexAny(inner, "+-")
		if n < 0 {
			mode = MODE_RAM_REG
		} else if isDigits(inner[n+1:]) {
			mode = MODE_RAM_REG_IMMED
		} else {
			err = ErrParseOperand(text)
		}
	default:
		err = ErrParseOperand(text)
	}

	return
}

// splitRam returns the register name and signed displacement text of a
// classified memory operand.
func splitRam(text string) (reg string, disp string) {
	inner := text[1 : len(text)-1]
	n := strings.IndexAny(inner, "+-")
	if n < 0 {
		return inner, ""
	}

	disp = inner[n:]
	if disp[0] == '+' {
		disp = disp[1:]
	}

	return inner[:n], disp
}

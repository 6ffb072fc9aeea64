package cpu

import (
	"errors"

	"github.com/ezrec/stackcpu/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted           = errors.New(f("halted"))
	ErrStackEmpty       = errors.New(f("stack empty"))
	ErrStackFull        = errors.New(f("stack full"))
	ErrMemoryBounds     = errors.New(f("memory address out of bounds"))
	ErrPixelBounds      = errors.New(f("pixel out of bounds"))
	ErrRegisterIndex    = errors.New(f("register index invalid"))
	ErrDivideByZero     = errors.New(f("division by zero"))
	ErrDomain           = errors.New(f("square root of a negative number"))
	ErrTargetBounds     = errors.New(f("control transfer outside the program"))
	ErrDeviceMissing    = errors.New(f("device missing"))
	ErrOpcodeUnknown    = errors.New(f("opcode unknown"))
	ErrOperandTruncated = errors.New(f("operand truncated"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrOperandSyntax      = errors.New(f("operand syntax"))
	ErrOperandMissing     = errors.New(f("operand missing"))
	ErrOperandExtra       = errors.New(f("excessive operands"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrLengthMismatch     = errors.New(f("emitted length differs from layout"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

func (err ErrParseNumber) Unwrap() error {
	return ErrOperandSyntax
}

// ErrParseOperand is an operand that fits no addressing mode.
type ErrParseOperand string

func (err ErrParseOperand) Error() string {
	return f("'%v' is not a valid operand", string(err))
}

func (err ErrParseOperand) Unwrap() error {
	return ErrOperandSyntax
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

func (err ErrParseRegister) Unwrap() error {
	return ErrRegisterInvalid
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrOverload is an operand that no overload of an instruction accepts.
type ErrOverload struct {
	Mnemonic string
	Operand  string
}

func (err ErrOverload) Error() string {
	return f("%v does not accept '%v'", err.Mnemonic, err.Operand)
}

func (err ErrOverload) Unwrap() error {
	return ErrOperandSyntax
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrFault is a runtime error raised by the instruction at Ip.
type ErrFault struct {
	Ip     int
	Opcode byte
	Err    error
}

func (err ErrFault) Error() string {
	return f("ip 0x%04x opcode %v: %v", err.Ip, err.Opcode, err.Err)
}

func (err ErrFault) Unwrap() error {
	return err.Err
}

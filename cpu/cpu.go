package cpu

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// Console is the line oriented device behind `in` and `out`.
type Console interface {
	// ReadInt blocks until an integer is available.
	ReadInt() (value int32, err error)
	// WriteFixed writes a value with two decimals and a newline.
	WriteFixed(value Fixed) error
}

// Display renders the framebuffer for `draw`.
type Display interface {
	Draw(frame *Framebuffer) error
}

// Cpu is the execution state of a single run.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Ip       int                   // Current instruction pointer, a byte offset.
	Register [REGISTER_COUNT]int32 // Register bank.
	Stack    Stack                 // Operand stack.
	Calls    Stack                 // Return addresses of `call`.
	Memory   Memory                // Data memory.
	Frame    Framebuffer           // Pixel framebuffer.
	Halted   bool                  // Set by `end`.
	Ticks    int                   // Instructions executed.
	Console  Console               // `in` and `out` device.
	Display  Display               // `draw` device. Drawing is skipped if nil.
	Sleep    func(d time.Duration) // `delay` hook; time.Sleep if nil.

	code []byte
	next int
}

// NewCpu creates a CPU loaded with machine code.
func NewCpu(code []byte) (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Load(code)
	return
}

// Load replaces the machine code and resets the CPU.
func (cpu *Cpu) Load(code []byte) {
	cpu.code = code
	cpu.Reset()
}

// Code returns the loaded machine code.
func (cpu *Cpu) Code() []byte {
	return cpu.code
}

// Reset the CPU state.
// - Clears the registers, stack, memory and framebuffer.
// - Zeros the tick counter.
// - Sets the IP to the start of the code.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Ip = 0
	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.Calls.Reset()
	cpu.Memory = Memory{}
	cpu.Frame = Framebuffer{}
	cpu.Halted = false
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %04x\n", "ip", cpu.Ip)
	for n, value := range cpu.Register {
		text += fmt.Sprintf("% 5s: %v\n", RegisterName(int32(n)), Fixed(value))
	}
	top, ok := cpu.Stack.Peek(1)
	if ok {
		text += fmt.Sprintf("% 5s: %v (depth %d)\n", "stack", Fixed(top), cpu.Stack.Depth())
	} else {
		text += fmt.Sprintf("% 5s: ----\n", "stack")
	}
	text += fmt.Sprintf("% 5s: %d\n", "calls", cpu.Calls.Depth())

	return
}

// Tick executes a single instruction. It returns ErrHalted once the
// program has ended.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted || cpu.Ip >= len(cpu.code) {
		return ErrHalted
	}

	op, err := Decode(cpu.code, cpu.Ip)
	if err != nil {
		err = &ErrFault{Ip: cpu.Ip, Opcode: cpu.code[cpu.Ip], Err: err}
		return
	}

	return cpu.Execute(op)
}

// Run executes until the program ends or faults.
func (cpu *Cpu) Run() (err error) {
	for {
		err = cpu.Tick()
		if errors.Is(err, ErrHalted) {
			return nil
		}
		if err != nil {
			return
		}
	}
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(op Decoded) (err error) {
	defer func() {
		if err != nil {
			err = &ErrFault{Ip: op.Offset, Opcode: op.Opcode, Err: err}
		}
	}()

	if cpu.Verbose {
		log.Printf("%04x: %v", op.Offset, op)
	}

	cpu.next = op.Next()

	err = op.Overload.exec(cpu, op)
	if err != nil {
		return
	}

	cpu.Ip = cpu.next
	cpu.Ticks += 1

	return
}

func (cpu *Cpu) push(value int32) (err error) {
	if !cpu.Stack.Push(value) {
		err = ErrStackFull
	}
	return
}

func (cpu *Cpu) pop() (value int32, err error) {
	value, ok := cpu.Stack.Pop()
	if !ok {
		err = ErrStackEmpty
	}
	return
}

func (cpu *Cpu) peek(n int) (value int32, err error) {
	value, ok := cpu.Stack.Peek(n)
	if !ok {
		err = ErrStackEmpty
	}
	return
}

// register returns the register selected by an operand.
func (cpu *Cpu) register(index int32) (reg *int32, err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrRegisterIndex
		return
	}

	reg = &cpu.Register[index]
	return
}

// address computes the memory index of a memory operand.
func (cpu *Cpu) address(op Decoded) (addr int, err error) {
	switch op.Mode() {
	case MODE_RAM_IMMED:
		addr = int(op.Args[0])
	case MODE_RAM_REG, MODE_RAM_REG_IMMED:
		var reg *int32
		reg, err = cpu.register(op.Args[0])
		if err != nil {
			return
		}
		addr = int(Fixed(*reg).Int())
		if op.Mode() == MODE_RAM_REG_IMMED {
			addr += int(op.Args[1])
		}
	default:
		err = ErrOpcodeUnknown
	}

	return
}

// jump sets the next instruction pointer to a target inside the program.
func (cpu *Cpu) jump(target int32) (err error) {
	if target < 0 || int(target) >= len(cpu.code) {
		err = ErrTargetBounds
		return
	}

	cpu.next = int(target)
	return
}

// binary pops the top and second values.
func (cpu *Cpu) binary() (second, top Fixed, err error) {
	a, err := cpu.pop()
	if err != nil {
		return
	}
	b, err := cpu.pop()
	if err != nil {
		return
	}

	return Fixed(b), Fixed(a), nil
}

func (cpu *Cpu) opNop(op Decoded) (err error) {
	return
}

func (cpu *Cpu) opPush(op Decoded) (err error) {
	var value int32

	switch op.Mode() {
	case MODE_NUMBER:
		value = int32(FromInt(op.Args[0]))
	case MODE_REGISTER:
		var reg *int32
		reg, err = cpu.register(op.Args[0])
		if err != nil {
			return
		}
		value = *reg
	default:
		var addr int
		addr, err = cpu.address(op)
		if err != nil {
			return
		}
		value, err = cpu.Memory.Load(addr)
		if err != nil {
			return
		}
	}

	return cpu.push(value)
}

func (cpu *Cpu) opPop(op Decoded) (err error) {
	if op.Mode() == MODE_REGISTER {
		var reg *int32
		reg, err = cpu.register(op.Args[0])
		if err != nil {
			return
		}
		var value int32
		value, err = cpu.pop()
		if err != nil {
			return
		}
		*reg = value
		return
	}

	addr, err := cpu.address(op)
	if err != nil {
		return
	}
	value, err := cpu.pop()
	if err != nil {
		return
	}

	return cpu.Memory.Store(addr, value)
}

func (cpu *Cpu) opAdd(op Decoded) (err error) {
	second, top, err := cpu.binary()
	if err != nil {
		return
	}
	return cpu.push(int32(second + top))
}

func (cpu *Cpu) opSub(op Decoded) (err error) {
	second, top, err := cpu.binary()
	if err != nil {
		return
	}
	return cpu.push(int32(second - top))
}

func (cpu *Cpu) opMul(op Decoded) (err error) {
	second, top, err := cpu.binary()
	if err != nil {
		return
	}
	return cpu.push(int32(second.Mul(top)))
}

func (cpu *Cpu) opDiv(op Decoded) (err error) {
	second, top, err := cpu.binary()
	if err != nil {
		return
	}
	if top == 0 {
		return ErrDivideByZero
	}
	return cpu.push(int32(second.Div(top)))
}

func (cpu *Cpu) opEnd(op Decoded) (err error) {
	cpu.Halted = true
	cpu.next = len(cpu.code)
	return
}

func (cpu *Cpu) opIn(op Decoded) (err error) {
	if cpu.Console == nil {
		return ErrDeviceMissing
	}

	value, err := cpu.Console.ReadInt()
	if err != nil {
		return
	}

	return cpu.push(int32(FromInt(value)))
}

func (cpu *Cpu) opOut(op Decoded) (err error) {
	if cpu.Console == nil {
		return ErrDeviceMissing
	}

	value, err := cpu.peek(1)
	if err != nil {
		return
	}

	return cpu.Console.WriteFixed(Fixed(value))
}

// opCall saves the offset of its own operand word; opRet skips that word.
func (cpu *Cpu) opCall(op Decoded) (err error) {
	err = cpu.jump(op.Args[0])
	if err != nil {
		return
	}

	if !cpu.Calls.Push(int32(op.Offset + 1)) {
		err = ErrStackFull
	}
	return
}

func (cpu *Cpu) opRet(op Decoded) (err error) {
	addr, ok := cpu.Calls.Peek(1)
	if !ok {
		return ErrStackEmpty
	}

	if addr < 0 || int(addr) >= len(cpu.code) {
		return ErrTargetBounds
	}

	cpu.Calls.Pop()
	cpu.next = int(addr) + WORD_SIZE
	return
}

func (cpu *Cpu) opSqrt(op Decoded) (err error) {
	value, err := cpu.pop()
	if err != nil {
		return
	}

	root, err := Fixed(value).Sqrt()
	if err != nil {
		return
	}

	return cpu.push(int32(root))
}

func (cpu *Cpu) opInc(op Decoded) (err error) {
	reg, err := cpu.register(op.Args[0])
	if err != nil {
		return
	}

	*reg += SCALE
	return
}

func (cpu *Cpu) opPix(op Decoded) (err error) {
	desc := op.Args[0]
	if op.Mode() == MODE_REGISTER {
		var reg *int32
		reg, err = cpu.register(op.Args[0])
		if err != nil {
			return
		}
		desc = Fixed(*reg).Int()
	}

	return cpu.Frame.SetPixel(desc)
}

func (cpu *Cpu) opDraw(op Decoded) (err error) {
	if cpu.Display == nil {
		return
	}

	return cpu.Display.Draw(&cpu.Frame)
}

func (cpu *Cpu) opDelay(op Decoded) (err error) {
	ms := op.Args[0]
	if ms <= 0 {
		return
	}

	sleep := cpu.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(time.Duration(ms) * time.Millisecond)

	return
}

func (cpu *Cpu) opJmp(op Decoded) (err error) {
	return cpu.jump(op.Args[0])
}

// jumpIf builds a conditional jump comparing the top two stack values
// without removing them.
func jumpIf(cond func(top, second int32) bool) func(cpu *Cpu, op Decoded) error {
	return func(cpu *Cpu, op Decoded) (err error) {
		top, err := cpu.peek(1)
		if err != nil {
			return
		}
		second, err := cpu.peek(2)
		if err != nil {
			return
		}

		if cond(top, second) {
			return cpu.jump(op.Args[0])
		}

		return
	}
}

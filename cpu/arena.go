package cpu

import (
	"fmt"
	"iter"
	"maps"
)

const (
	REGISTER_COUNT = 4    // General purpose registers ax, bx, cx, dx.
	RAM_SIZE       = 1024 // Memory cells.
	SCREEN_WIDTH   = 64   // Framebuffer columns.
	SCREEN_HEIGHT  = 64   // Framebuffer rows.
	COLOR_COUNT    = 10   // Colour codes 0-9.
	WORD_SIZE      = 4    // Bytes per encoded operand.
)

var _cpu_defines = map[string]string{
	"SCALE":         fmt.Sprintf("%d", SCALE),
	"REGISTERS":     fmt.Sprintf("%d", REGISTER_COUNT),
	"RAM_SIZE":      fmt.Sprintf("%d", RAM_SIZE),
	"STACK_LIMIT":   fmt.Sprintf("%d", STACK_LIMIT),
	"SCREEN_WIDTH":  fmt.Sprintf("%d", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%d", SCREEN_HEIGHT),
}

// Defines returns the machine geometry as assembler equates.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Memory is the flat data memory.
type Memory [RAM_SIZE]int32

// Load reads the cell at addr.
func (mem *Memory) Load(addr int) (value int32, err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrMemoryBounds
		return
	}

	value = mem[addr]
	return
}

// Store writes the cell at addr.
func (mem *Memory) Store(addr int, value int32) (err error) {
	if addr < 0 || addr >= len(mem) {
		err = ErrMemoryBounds
		return
	}

	mem[addr] = value
	return
}

// Framebuffer holds one colour code per pixel, row major.
type Framebuffer [SCREEN_HEIGHT][SCREEN_WIDTH]uint8

// PixelDecode splits a packed pixel descriptor x*10000 + y*10 + color.
func PixelDecode(desc int32) (x, y int, color uint8) {
	x = int(desc / 10000)
	y = int(desc / 10 % 1000)
	color = uint8(desc % 10)
	return
}

// SetPixel sets a pixel from a packed descriptor.
func (fb *Framebuffer) SetPixel(desc int32) (err error) {
	if desc < 0 {
		err = ErrPixelBounds
		return
	}

	x, y, color := PixelDecode(desc)
	if x >= SCREEN_WIDTH || y >= SCREEN_HEIGHT {
		err = ErrPixelBounds
		return
	}

	fb[y][x] = color
	return
}

// At returns the colour at (x, y).
func (fb *Framebuffer) At(x, y int) uint8 {
	return fb[y][x]
}

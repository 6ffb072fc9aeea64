package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/stackcpu/cpu"
)

const (
	FRAME_DELAY = 18 * time.Millisecond // Pause before each frame.
)

var _screen_defines = map[string]string{
	"FRAME_DELAY": fmt.Sprintf("%d", FRAME_DELAY.Milliseconds()),
}

// Screen renders the framebuffer as text.
type Screen struct {
	Output io.Writer
	Delay  time.Duration // Pause before each frame.
	Color  bool          // Render cells as ANSI background colours.

	Sleep func(d time.Duration) // time.Sleep if nil.
}

// NewScreen creates a screen on w. Colour is only enabled on a terminal.
func NewScreen(w io.Writer) (scr *Screen) {
	scr = &Screen{
		Output: w,
		Delay:  FRAME_DELAY,
	}

	file, ok := w.(*os.File)
	if !ok {
		return
	}

	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	scr.Color = true

	width, height, err := term.GetSize(fd)
	if err == nil && (width < 2*cpu.SCREEN_WIDTH || height < cpu.SCREEN_HEIGHT) {
		log.Printf("screen: terminal %dx%d is smaller than %dx%d", width, height, 2*cpu.SCREEN_WIDTH, cpu.SCREEN_HEIGHT)
	}

	return
}

// Defines returns an iter of defines for the screen.
func (scr *Screen) Defines() iter.Seq2[string, string] {
	return maps.All(_screen_defines)
}

// cell returns the rendering of one colour code.
func (scr *Screen) cell(color uint8) string {
	if !scr.Color {
		return fmt.Sprintf("%d", color)
	}

	if color >= 8 {
		// Bright palette.
		return fmt.Sprintf("\x1b[10%dm  \x1b[0m", color-8)
	}

	return fmt.Sprintf("\x1b[4%dm  \x1b[0m", color)
}

// Draw waits for the frame delay, then renders the whole framebuffer.
func (scr *Screen) Draw(frame *cpu.Framebuffer) (err error) {
	if scr.Delay > 0 {
		sleep := scr.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(scr.Delay)
	}

	if scr.Output == nil {
		return
	}

	w := bufio.NewWriter(scr.Output)

	if scr.Color {
		w.WriteString("\x1b[1;1H")
	}

	for y := range cpu.SCREEN_HEIGHT {
		for x := range cpu.SCREEN_WIDTH {
			w.WriteString(scr.cell(frame.At(x, y)))
		}
		w.WriteByte('\n')
	}

	err = w.Flush()
	return
}

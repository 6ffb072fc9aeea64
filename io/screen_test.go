package io

import (
	"bytes"
	"maps"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/stackcpu/cpu"
)

func TestScreen_Plain(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	scr := NewScreen(output)
	assert.False(scr.Color)
	assert.Equal(FRAME_DELAY, scr.Delay)

	var slept []time.Duration
	scr.Sleep = func(d time.Duration) { slept = append(slept, d) }

	frame := &cpu.Framebuffer{}
	assert.NoError(frame.SetPixel(50203))
	assert.NoError(frame.SetPixel(630639))

	assert.NoError(scr.Draw(frame))
	assert.Equal([]time.Duration{FRAME_DELAY}, slept)

	lines := strings.Split(output.String(), "\n")
	assert.Equal(cpu.SCREEN_HEIGHT+1, len(lines))
	assert.Equal("", lines[cpu.SCREEN_HEIGHT])
	assert.Equal(cpu.SCREEN_WIDTH, len(lines[0]))
	assert.Equal(byte('3'), lines[20][5])
	assert.Equal(byte('9'), lines[63][63])
	assert.Equal(strings.Repeat("0", cpu.SCREEN_WIDTH), lines[0])
}

func TestScreen_Color(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	scr := &Screen{Output: output, Color: true}

	frame := &cpu.Framebuffer{}
	assert.NoError(frame.SetPixel(2))
	assert.NoError(frame.SetPixel(10008))

	assert.NoError(scr.Draw(frame))

	text := output.String()
	assert.True(strings.HasPrefix(text, "\x1b[1;1H\x1b[42m  \x1b[0m\x1b[100m  \x1b[0m\x1b[40m  \x1b[0m"))
	assert.Equal(cpu.SCREEN_HEIGHT, strings.Count(text, "\n"))
	assert.Equal(cpu.SCREEN_WIDTH*cpu.SCREEN_HEIGHT, strings.Count(text, "\x1b[0m"))
}

func TestScreen_Headless(t *testing.T) {
	assert := assert.New(t)

	scr := &Screen{}
	assert.NoError(scr.Draw(&cpu.Framebuffer{}))
}

func TestScreen_Defines(t *testing.T) {
	assert := assert.New(t)

	defines := maps.Collect((&Screen{}).Defines())
	assert.Equal("18", defines["FRAME_DELAY"])

	assert.Equal(0, len(maps.Collect((&Console{}).Defines())))
}

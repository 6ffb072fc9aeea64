package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"maps"
	"strconv"

	"github.com/ezrec/stackcpu/cpu"
)

// Console is the line oriented device behind `in` and `out`.
// Input is read as whitespace separated decimal integers.
type Console struct {
	Input  io.Reader
	Output io.Writer

	source  io.Reader
	scanner *bufio.Scanner
}

// Defines returns an iter of defines for the console.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// ReadInt blocks until the next integer is read from the input.
func (con *Console) ReadInt() (value int32, err error) {
	if con.Input == nil {
		err = ErrInputClosed
		return
	}

	if con.scanner == nil || con.source != con.Input {
		con.source = con.Input
		con.scanner = bufio.NewScanner(con.Input)
		con.scanner.Split(bufio.ScanWords)
	}

	if !con.scanner.Scan() {
		err = con.scanner.Err()
		if err == nil {
			err = ErrInputClosed
		}
		return
	}

	word := con.scanner.Text()
	v64, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		err = ErrInputToken(word)
		return
	}

	value = int32(v64)
	return
}

// WriteFixed writes a value with two decimals on its own line.
func (con *Console) WriteFixed(value cpu.Fixed) (err error) {
	if con.Output == nil {
		return
	}

	_, err = fmt.Fprintf(con.Output, "%v\n", value)
	return
}

package emulator

import (
	"github.com/ezrec/stackcpu/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
// LineNo is zero when the program has no listing.
type ErrRuntime struct {
	LineNo int
	Offset int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("offset 0x%04x %v", err.Offset, err.Err)
	}
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

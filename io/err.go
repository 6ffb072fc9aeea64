package io

import (
	"errors"

	"github.com/ezrec/stackcpu/translate"
)

var f = translate.From

var (
	// Console errors
	ErrInputClosed  = errors.New(f("input closed"))
	ErrInputInvalid = errors.New(f("input invalid"))
)

// ErrInputToken is console input that is not an integer.
type ErrInputToken string

func (err ErrInputToken) Error() string {
	return f("'%v' is not an integer", string(err))
}

func (err ErrInputToken) Unwrap() error {
	return ErrInputInvalid
}

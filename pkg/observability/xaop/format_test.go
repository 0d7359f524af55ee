package xaop

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type panicStringer struct{}

func (panicStringer) String() string { panic("no string for you") }

type emptyError struct{}

func (emptyError) Error() string { return "" }

type panicError struct{}

func (panicError) Error() string { panic("bad error") }

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "<nil>", formatValue(nil))
	assert.Equal(t, "[1 2]", formatValue([]int{1, 2}))
	assert.Equal(t, "<unprintable xaop.panicStringer>", formatValue(panicStringer{}))
	assert.Equal(t, "<unprintable []xaop.panicStringer>", formatValue([]panicStringer{{}}))
	assert.Equal(t, "<unprintable struct { S xaop.panicStringer }>", formatValue(struct{ S panicStringer }{}))
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "none", formatArgs(nil))
	assert.Equal(t, "a=1, arg1=x", formatArgs([]Arg{{Name: "a", Value: 1}, {Value: "x"}}))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "none", formatError(nil))
	assert.Equal(t, "type=errorString, message=boom", formatError(errors.New("boom")))
	assert.Equal(t, "type=PathError, message=open /x: file does not exist",
		formatError(&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}))
	assert.Equal(t, "type=emptyError", formatError(emptyError{}))
	assert.Equal(t, "type=panicError", formatError(panicError{}))
}

func TestSimpleTypeName(t *testing.T) {
	assert.Equal(t, "nil", simpleTypeName(nil))
	assert.Equal(t, "int", simpleTypeName(new(int)))
	assert.Equal(t, "[]string", simpleTypeName([]string{}))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0s", formatElapsed(-time.Second))
	assert.Equal(t, "250ms", formatElapsed(250*time.Millisecond))
}

/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package verror

import (
	"errors"
	"fmt"
)

// Position records the line/column of a parse failure (spec §7: "Parse
// errors additionally carry line and column"). Zero value means "no
// position" (not every error originates from a parse).
type Position struct {
	Line   int
	Column int
}

// Error is the Varlink core error type: a numeric code, a message, an
// optional parse Position, and zero or more parent causes.
type Error interface {
	error

	// Code returns the numeric error code.
	Code() CodeError

	// IsCode reports whether this error (not its parents) carries code.
	IsCode(code CodeError) bool

	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool

	// Position returns the recorded parse position, if any.
	Position() Position

	// Add appends parent causes.
	Add(parent ...error)

	// Parents returns the direct parent causes.
	Parents() []error

	// Unwrap gives errors.Is/errors.As access to the parent chain.
	Unwrap() []error
}

type verr struct {
	code CodeError
	msg  string
	pos  Position
	p    []error
}

// New builds an Error with the given code, message and parents.
func New(code CodeError, message string, parent ...error) Error {
	return &verr{code: code, msg: message, p: filterNil(parent)}
}

// Newf builds an Error with a formatted message.
func Newf(code CodeError, format string, args ...any) Error {
	return &verr{code: code, msg: fmt.Sprintf(format, args...)}
}

// NewAt builds an Error carrying a parse position (spec §7, §4.2).
func NewAt(code CodeError, message string, line, column int, parent ...error) Error {
	return &verr{code: code, msg: message, pos: Position{Line: line, Column: column}, p: filterNil(parent)}
}

// IfError returns an Error wrapping code/message only if at least one
// non-nil parent is given; otherwise it returns nil. Mirrors the teacher's
// errors.IfError, used to fold a batch of possibly-nil child errors into one
// optional result (e.g. closing every connection on shutdown).
func IfError(code CodeError, message string, parent ...error) Error {
	p := filterNil(parent)
	if len(p) == 0 {
		return nil
	}
	return &verr{code: code, msg: message, p: p}
}

func filterNil(in []error) []error {
	out := make([]error, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (e *verr) Code() CodeError { return e.code }

func (e *verr) IsCode(code CodeError) bool { return e.code == code }

func (e *verr) HasCode(code CodeError) bool {
	if e.code == code {
		return true
	}
	for _, p := range e.p {
		if Is(p, code) {
			return true
		}
	}
	return false
}

func (e *verr) Position() Position { return e.pos }

func (e *verr) Add(parent ...error) {
	e.p = append(e.p, filterNil(parent)...)
}

func (e *verr) Parents() []error { return e.p }

func (e *verr) Unwrap() []error { return e.p }

func (e *verr) Error() string {
	if e.pos.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, column %d)", e.code, e.msg, e.pos.Line, e.pos.Column)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Get returns e as an Error if it (or a wrapped cause) is one, nil
// otherwise, mirroring errors.As but without the output-param ceremony.
func Get(e error) Error {
	var v Error
	if errors.As(e, &v) {
		return v
	}
	return nil
}

// Is reports whether err carries the given code, anywhere in its chain.
func Is(err error, code CodeError) bool {
	if v := Get(err); v != nil {
		return v.HasCode(code)
	}
	return false
}

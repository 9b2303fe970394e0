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

// Package verror implements the Varlink core error taxonomy: a small set of
// stable numeric codes (spec §6.3) plus their canonical string names, wrapped
// in an Error type that composes parent causes the way ordinary Go errors
// wrap one another.
package verror

// CodeError is a stable numeric error code, returned negated on the wire by
// the C reference implementation and carried as a plain positive value here.
type CodeError uint16

const (
	UnknownError CodeError = 0

	// Panic covers out-of-memory or unexpected internal failure.
	Panic              CodeError = 1
	InvalidInterface    CodeError = 2
	InvalidAddress      CodeError = 3
	InvalidMethod       CodeError = 4
	DuplicateInterface  CodeError = 5
	InterfaceNotFound   CodeError = 6
	MethodNotFound      CodeError = 7
	CannotConnect       CodeError = 8
	CannotListen        CodeError = 9
	CannotAccept        CodeError = 10
	TypeMismatch        CodeError = 11
	InvalidIndex        CodeError = 12
	UnknownField        CodeError = 13
	ReadOnly            CodeError = 14
	InvalidJson         CodeError = 15
	SendingMessage      CodeError = 16
	ReceivingMessage    CodeError = 17
	InvalidMessage      CodeError = 18
	InvalidCall         CodeError = 19
	ConnectionClosed    CodeError = 20
	AccessDenied        CodeError = 21
)

// InvalidType is an alias for TypeMismatch: spec §6.3 lists both names for
// code 11 ("TypeMismatch / InvalidType").
const InvalidType = TypeMismatch

var names = map[CodeError]string{
	UnknownError:       "UnknownError",
	Panic:              "Panic",
	InvalidInterface:   "InvalidInterface",
	InvalidAddress:     "InvalidAddress",
	InvalidMethod:      "InvalidMethod",
	DuplicateInterface: "DuplicateInterface",
	InterfaceNotFound:  "InterfaceNotFound",
	MethodNotFound:     "MethodNotFound",
	CannotConnect:      "CannotConnect",
	CannotListen:       "CannotListen",
	CannotAccept:       "CannotAccept",
	TypeMismatch:       "TypeMismatch",
	InvalidIndex:       "InvalidIndex",
	UnknownField:       "UnknownField",
	ReadOnly:           "ReadOnly",
	InvalidJson:        "InvalidJson",
	SendingMessage:     "SendingMessage",
	ReceivingMessage:   "ReceivingMessage",
	InvalidMessage:     "InvalidMessage",
	InvalidCall:        "InvalidCall",
	ConnectionClosed:   "ConnectionClosed",
	AccessDenied:       "AccessDenied",
}

// Uint16 returns the numeric code as a uint16, the wire-stable width used by
// the C reference implementation.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// String returns the canonical name registered for the code, or
// "UnknownError" if the code is not one of the §6.3 codes.
func (c CodeError) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return names[UnknownError]
}

// Error builds a new Error value carrying this code and its canonical name
// as message, with the given parents.
func (c CodeError) Error(parent ...error) Error {
	return New(c, c.String(), parent...)
}

// Errorf builds a new Error value carrying this code and a formatted message.
func (c CodeError) Errorf(format string, args ...any) Error {
	return Newf(c, format, args...)
}

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

// Package varlog is the structured-logging seam used by the server to
// report listen, accept and connection-close events. It wraps
// github.com/hashicorp/go-hclog behind a small interface, the way
// nabbar-golib/logger wraps the same library behind its own Logger type.
package varlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// Field is one structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field inline at the call site: varlog.F("conn", id).
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured logger surface used throughout this module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a derived Logger that always includes the given
	// fields, the way hclog.With does.
	With(fields ...Field) Logger
}

// hcLogger adapts hclog.Logger to Logger.
type hcLogger struct {
	l hclog.Logger
}

// New wraps an hclog.Logger. Pass nil for a reasonable stderr default named
// "govarlink".
func New(l hclog.Logger) Logger {
	if l == nil {
		l = hclog.New(&hclog.LoggerOptions{
			Name:   "govarlink",
			Level:  hclog.Info,
			Output: os.Stderr,
		})
	}
	return &hcLogger{l: l}
}

func toArgs(fields []Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

func (h *hcLogger) Debug(msg string, fields ...Field) { h.l.Debug(msg, toArgs(fields)...) }
func (h *hcLogger) Info(msg string, fields ...Field)  { h.l.Info(msg, toArgs(fields)...) }
func (h *hcLogger) Warn(msg string, fields ...Field)  { h.l.Warn(msg, toArgs(fields)...) }
func (h *hcLogger) Error(msg string, fields ...Field) { h.l.Error(msg, toArgs(fields)...) }

func (h *hcLogger) With(fields ...Field) Logger {
	return &hcLogger{l: h.l.With(toArgs(fields)...)}
}

// nopLogger discards everything; it is the default Logger (Nop) used by
// packages that accept an optional logger without one configured.
type nopLogger struct{}

// Nop is the no-op Logger, matching nabbar-golib/logger's pattern of a safe
// default logger when none is configured.
var Nop Logger = nopLogger{}

func (nopLogger) Debug(string, ...Field)  {}
func (nopLogger) Info(string, ...Field)   {}
func (nopLogger) Warn(string, ...Field)   {}
func (nopLogger) Error(string, ...Field)  {}
func (nopLogger) With(...Field) Logger    { return nopLogger{} }

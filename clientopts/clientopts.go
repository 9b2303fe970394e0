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

// Package clientopts carries the functional options accepted by
// client.Dial, mirroring serviceopts on the server side.
package clientopts

import (
	"github.com/sabouaram/govarlink/internal/varlog"
)

// Options collects everything client.Dial can be configured with.
type Options struct {
	Logger      varlog.Logger
	CloseNotify func(error)
}

// Option mutates an Options in place.
type Option func(*Options)

// Default returns the zero-value-safe defaults: a no-op logger.
func Default() Options {
	return Options{Logger: varlog.Nop}
}

// WithLogger sets the structured logger stored on the connection. The
// client package itself emits no log lines.
func WithLogger(l varlog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithCloseNotify registers fn to run once, with the reason (nil for a
// clean close), when the connection's close callback fires (spec §4.10
// "an optional close callback").
func WithCloseNotify(fn func(error)) Option {
	return func(o *Options) { o.CloseNotify = fn }
}

// Apply folds opts onto the defaults.
func Apply(opts ...Option) Options {
	o := Default()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

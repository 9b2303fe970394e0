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

// Package serviceopts carries the functional options accepted by
// server.New, the idiomatic Go replacement for the teacher's per-field
// config.Config struct (nabbar-golib/socket/config), plus an optional
// viper-backed loader for service identity (spec §3 "Service": vendor,
// product, version, url).
package serviceopts

import (
	"time"

	"github.com/sabouaram/govarlink/internal/varlog"
)

// Options collects everything server.New can be configured with.
type Options struct {
	Vendor  string
	Product string
	Version string
	URL     string

	Logger      varlog.Logger
	IdleTimeout time.Duration

	// ReadyHook fires once the listener is bound and before the dispatch
	// loop starts accepting connections (original_source supplementary
	// feature #7: service.c's NotifyState hook).
	ReadyHook func()
}

// Option mutates an Options in place.
type Option func(*Options)

// Default returns the zero-value-safe defaults: an unnamed service, a
// no-op logger, and no idle timeout.
func Default() Options {
	return Options{
		Logger: varlog.Nop,
	}
}

func WithVendor(v string) Option  { return func(o *Options) { o.Vendor = v } }
func WithProduct(v string) Option { return func(o *Options) { o.Product = v } }
func WithVersion(v string) Option { return func(o *Options) { o.Version = v } }
func WithURL(v string) Option     { return func(o *Options) { o.URL = v } }

// WithLogger sets the structured logger used for listen, accept and
// connection-close events.
func WithLogger(l varlog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithIdleTimeout stores d in Options.IdleTimeout. The server does not read
// this value: accepted connections are never closed for being idle,
// whatever duration is set.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *Options) { o.IdleTimeout = d }
}

// WithReadyHook registers fn to run once the listener is bound.
func WithReadyHook(fn func()) Option {
	return func(o *Options) { o.ReadyHook = fn }
}

// Apply folds opts onto the defaults.
func Apply(opts ...Option) Options {
	o := Default()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

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

// Package client implements the Varlink connection (client) side (spec
// §4.10): one outbound stream, a FIFO of pending reply callbacks, and
// streaming-reply state.
package client

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/clientopts"
	"github.com/sabouaram/govarlink/internal/varlog"
	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/stream"
	"github.com/sabouaram/govarlink/transport"
	"github.com/sabouaram/govarlink/value"
	"github.com/sabouaram/govarlink/verror"
)

// ReplyFunc receives each reply to a call, in FIFO order (spec §4.10
// "Reply callbacks run in FIFO order"). more is true while the reply
// carries continues; the callback is invoked once more with more==false
// for the terminating reply (or exactly once, with more==false, for a
// call that never requested streaming).
type ReplyFunc func(reply message.Reply, more bool)

type pendingCall struct {
	flags message.CallFlags
	fn    ReplyFunc
}

// Connection is one outbound Varlink connection (spec §4.10).
type Connection struct {
	opts   clientopts.Options
	log    varlog.Logger
	stream *stream.Stream

	mu      sync.Mutex
	pending []pendingCall
	closed  bool
}

// Dial connects to addr (spec §4.5/§4.6) and returns a ready Connection.
func Dial(addr string, opts ...clientopts.Option) (*Connection, error) {
	o := clientopts.Apply(opts...)
	fd, err := transport.Connect(addr)
	if err != nil {
		return nil, err
	}
	return &Connection{
		opts:   o,
		log:    o.Logger,
		stream: stream.New(fd),
	}, nil
}

// Fd returns the underlying file descriptor, for use with an external
// readiness multiplexer (spec §4.10 "obtain fd and desired event mask").
func (c *Connection) Fd() int { return c.stream.Fd() }

// Events returns the readiness bitmask this connection currently wants.
func (c *Connection) Events() (wantRead, wantWrite bool) {
	return c.stream.Events()
}

// Call issues method with params and flags, invoking fn with each reply in
// arrival order (spec §4.10, §5 "The client dispatches reply callbacks in
// the order calls were issued"). fn is ignored for a oneway call, since a
// one-way call receives no reply (spec §4.8).
func (c *Connection) Call(method string, params value.Value, flags message.CallFlags, fn ReplyFunc) error {
	if flags&message.More != 0 && flags&message.Oneway != 0 {
		return verror.InvalidCall.Errorf("call cannot set both more and oneway")
	}

	raw, err := message.PackCall(message.Call{Method: method, Parameters: params, Flags: flags})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return verror.ConnectionClosed.Error()
	}
	if err := c.stream.QueueFrame(raw); err != nil {
		c.mu.Unlock()
		return err
	}
	oneway := flags&message.Oneway != 0
	if !oneway {
		c.pending = append(c.pending, pendingCall{flags: flags, fn: fn})
	}
	c.mu.Unlock()

	return c.stream.Flush()
}

// Close closes the underlying connection. If the connection was configured
// with clientopts.WithCloseNotify, it is invoked with nil (clean close).
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.stream.Close()
	if c.opts.CloseNotify != nil {
		c.opts.CloseNotify(nil)
	}
	return err
}

// poll blocks until the connection is readable or writable, or returns
// immediately if a deadline of zero is given as "don't block". It is a
// convenience for callers that don't already run their own multiplexer.
func (c *Connection) poll(timeoutMs int) error {
	wantRead, wantWrite := c.Events()
	var events int16
	if wantRead {
		events |= unix.POLLIN
	}
	if wantWrite {
		events |= unix.POLLOUT
	}
	fds := []unix.PollFd{{Fd: int32(c.Fd()), Events: events}}
	_, err := unix.Poll(fds, timeoutMs)
	if err != nil && err != unix.EINTR {
		return verror.ReceivingMessage.Errorf("client: poll: %v", err)
	}
	return nil
}

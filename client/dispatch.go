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

package client

import (
	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/verror"
)

// Process blocks up to timeoutMs (or indefinitely if negative) for the
// connection to become ready, then services it: flushes queued output and
// delivers every complete reply frame to its FIFO-ordered callback (spec
// §4.10 "Reply callbacks run in FIFO order"). Callers that already run
// their own readiness multiplexer can register Fd with it, using Events for
// the wanted bitmask, and call Process(0) when it reports the fd ready.
func (c *Connection) Process(timeoutMs int) error {
	if err := c.poll(timeoutMs); err != nil {
		return err
	}

	wantRead, wantWrite := c.Events()
	if wantWrite {
		if err := c.stream.Flush(); err != nil {
			return err
		}
	}
	if wantRead {
		if err := c.stream.Fill(); err != nil {
			return err
		}
		if err := c.deliver(); err != nil {
			return err
		}
	}
	return nil
}

// deliver extracts every complete frame currently buffered and dispatches
// each to the head of the FIFO pending-callback queue.
func (c *Connection) deliver() error {
	for {
		frame, ok, err := c.stream.NextFrame()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		reply, err := message.UnpackReply(frame)
		if err != nil {
			return err
		}
		if err := c.dispatchReply(reply); err != nil {
			return err
		}
	}
}

// dispatchReply enforces spec §4.10's ordering invariants ("a CONTINUES
// reply for a call that did not request MORE, or a reply arriving with no
// outstanding callback, are InvalidMessage") and invokes the head of the
// FIFO queue, popping it only once the terminating reply arrives.
func (c *Connection) dispatchReply(reply message.Reply) error {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return verror.InvalidMessage.Errorf("reply received with no outstanding call")
	}
	head := c.pending[0]
	more := reply.Flags&message.Continues != 0

	if more && head.flags&message.More == 0 {
		c.mu.Unlock()
		return verror.InvalidMessage.Errorf("continues reply for a call that did not request more")
	}
	if !more {
		c.pending = c.pending[1:]
	}
	c.mu.Unlock()

	if head.fn != nil {
		head.fn(reply, more)
	}
	return nil
}

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

package server

import (
	"sync"

	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/transport"
	"github.com/sabouaram/govarlink/value"
	"github.com/sabouaram/govarlink/verror"
)

type callState int

const (
	callActive callState = iota
	callStreaming
	callCompleted
)

// Call is the server-side request context handed to a HandlerFunc (spec §3
// "Call"): the method name, parsed parameters, call flags, and the
// operations a handler uses to finish it.
type Call struct {
	srv    *Service
	connID int
	peer   *transport.PeerCredentials

	Method string
	Params value.Value
	Flags  message.CallFlags

	mu     sync.Mutex
	state  callState
	cancel func()
}

// Peer returns the UNIX peer credentials captured at accept time, or nil
// for a TCP connection (spec §4.6 "peer-credential capture").
func (c *Call) Peer() *transport.PeerCredentials { return c.peer }

func (c *Call) isCompleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == callCompleted
}

// OnCancel registers fn to run if the peer hangs up while this call is
// still active or streaming (spec §5 "Cancellation").
func (c *Call) OnCancel(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = fn
}

func (c *Call) invokeCancel() {
	c.mu.Lock()
	fn := c.cancel
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Reply sends a terminal, successful reply (spec §4.9 "reply(params, 0)").
func (c *Call) Reply(params value.Value) error {
	return c.finish(message.Reply{Parameters: params}, true)
}

// ReplyContinues sends a non-terminal streaming reply. Only valid while
// the call carries message.More (spec §4.8 "continues ... only valid when
// the originating call had more").
func (c *Call) ReplyContinues(params value.Value) error {
	if c.Flags&message.More == 0 {
		return verror.InvalidCall.Errorf("reply with continues requires the call to have requested more")
	}
	return c.finish(message.Reply{Parameters: params, Flags: message.Continues}, false)
}

// ReplyError sends a terminal error reply naming a well-known error
// (spec §4.9 "reply_error(name, params)").
func (c *Call) ReplyError(name string, params value.Value) error {
	return c.finish(message.Reply{Error: name, Parameters: params}, true)
}

// errServiceError is the helper used by the dispatcher and the built-in
// handlers to reply with a qualified org.varlink.service.* error carrying
// one string parameter (spec_full §4).
func (c *Call) errServiceError(name, paramName, paramValue string) error {
	params := value.NewObject()
	_ = params.Set(paramName, value.String(paramValue))
	return c.ReplyError(BuiltinInterfaceName+"."+name, value.FromObject(params))
}

func (c *Call) finish(r message.Reply, terminal bool) error {
	oneway := c.Flags&message.Oneway != 0

	c.mu.Lock()
	if c.state == callCompleted {
		c.mu.Unlock()
		return verror.InvalidMessage.Errorf("call already completed")
	}
	if terminal {
		c.state = callCompleted
	} else {
		c.state = callStreaming
	}
	c.mu.Unlock()

	if oneway {
		return nil
	}

	raw, err := message.PackReply(r)
	if err != nil {
		return err
	}
	c.srv.enqueueReply(c.connID, raw, terminal)
	return nil
}

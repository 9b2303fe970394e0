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

// Package server implements the Varlink service side (spec §4.9): a
// listener, a single-threaded cooperative readiness loop, a connection
// table, method dispatch to registered handlers, and the built-in
// org.varlink.service introspection interface.
package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/idl"
	"github.com/sabouaram/govarlink/internal/varlog"
	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/serviceopts"
	"github.com/sabouaram/govarlink/stream"
	"github.com/sabouaram/govarlink/transport"
	"github.com/sabouaram/govarlink/verror"
)

// HandlerFunc handles one dispatched call. It must eventually finish the
// call by calling exactly one of Call.Reply, Call.ReplyContinues (only
// while the call carries message.More) or Call.ReplyError -- spec §4.9
// "Handler obligations" -- unless the call is one-way, in which case no
// reply is sent or expected.
//
// A handler may return before the call is finished (spawn a goroutine that
// replies later); the connection stays reserved for that call until it
// completes (spec §3 "A connection holds at most one Active/Streaming call
// at a time"). Returning a non-nil error without having replied closes the
// connection (spec §7 "Handler failures ... cause the server to close that
// connection").
type HandlerFunc func(call *Call) error

// Service is a Varlink service: identity, registered interfaces, method
// handlers, a listener, and a connection table (spec §3 "Service").
type Service struct {
	opts serviceopts.Options
	log  varlog.Logger

	mu         sync.Mutex
	ifaces     map[string]*idl.Interface
	ifaceOrder []string
	handlers   map[string]HandlerFunc

	listener transport.Listener
	wake     *wakePipe

	connMu sync.Mutex
	conns  map[int]*connState
	outbox map[int][]pendingReply

	metrics *metrics
	closed  bool
}

type pendingReply struct {
	raw      []byte
	terminal bool
}

// New builds a Service configured by opts (spec_full §0.3 "functional
// options ... server.WithVendor, server.WithLogger, ...").
func New(opts ...serviceopts.Option) *Service {
	o := serviceopts.Apply(opts...)
	s := &Service{
		opts:     o,
		log:      o.Logger,
		ifaces:   make(map[string]*idl.Interface),
		handlers: make(map[string]HandlerFunc),
		conns:    make(map[int]*connState),
		outbox:   make(map[int][]pendingReply),
		metrics:  newMetrics(),
	}
	builtin := buildBuiltinInterface()
	s.ifaces[builtin.Name] = builtin
	s.ifaceOrder = append(s.ifaceOrder, builtin.Name)
	s.registerBuiltinHandlers()
	return s
}

// RegisterInterface adds iface to the service, rejecting a name already in
// use (spec §6.3 code 5 "DuplicateInterface").
func (s *Service) RegisterInterface(iface *idl.Interface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ifaces[iface.Name]; ok {
		return verror.DuplicateInterface.Errorf("interface %q already registered", iface.Name)
	}
	s.ifaces[iface.Name] = iface
	s.ifaceOrder = append(s.ifaceOrder, iface.Name)
	return nil
}

// Handle registers fn for qualifiedMethod ("interface.Member"), invoked by
// dispatch once the interface and method are resolved (spec §4.9 "Handler
// registration").
func (s *Service) Handle(qualifiedMethod string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[qualifiedMethod] = fn
}

func (s *Service) interfaceNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ifaceOrder))
	copy(out, s.ifaceOrder)
	sort.Strings(out)
	return out
}

func (s *Service) lookupInterface(name string) (*idl.Interface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.ifaces[name]
	return i, ok
}

func (s *Service) lookupHandler(qualifiedMethod string) (HandlerFunc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.handlers[qualifiedMethod]
	return fn, ok
}

// Listen binds addr (spec §4.5/§4.6) and fires the optional ready hook
// (spec_full §3 item 7).
func (s *Service) Listen(addr string) error {
	l, err := transport.Listen(addr)
	if err != nil {
		return err
	}
	w, err := newWakePipe()
	if err != nil {
		_ = l.Close()
		return err
	}
	s.listener = l
	s.wake = w
	s.metrics.setListening(1)
	if s.opts.ReadyHook != nil {
		s.opts.ReadyHook()
	}
	s.log.Info("listening", varlog.F("addr", l.Addr()))
	return nil
}

// connState tracks one accepted connection's stream and in-flight call.
type connState struct {
	id     int
	corrID string
	stream *stream.Stream
	peer   *transport.PeerCredentials
	call   *Call
}

// Serve runs the single-threaded cooperative dispatch loop (spec §4.9,
// §5) until Close is called. It returns nil when the service is closed
// cleanly.
func (s *Service) Serve() error {
	if s.listener == nil {
		return verror.CannotListen.Errorf("server: Listen must be called before Serve")
	}

	for {
		s.connMu.Lock()
		if s.closed {
			s.connMu.Unlock()
			return nil
		}
		fds := make([]unix.PollFd, 0, len(s.conns)+2)
		fds = append(fds, unix.PollFd{Fd: int32(s.listener.Fd()), Events: unix.POLLIN})
		fds = append(fds, unix.PollFd{Fd: int32(s.wake.readFd), Events: unix.POLLIN})
		order := make([]int, 0, len(s.conns))
		for id, c := range s.conns {
			order = append(order, id)
			wantRead, wantWrite := c.stream.Events()
			var ev int16
			if wantRead {
				ev |= unix.POLLIN
			}
			if wantWrite {
				ev |= unix.POLLOUT
			}
			fds = append(fds, unix.PollFd{Fd: int32(c.stream.Fd()), Events: ev})
		}
		s.connMu.Unlock()

		_, err := unix.Poll(fds, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return verror.Panic.Errorf("server: poll: %v", err)
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			s.acceptOne()
		}
		if fds[1].Revents&unix.POLLIN != 0 {
			s.wake.drain()
		}
		for i, id := range order {
			pf := fds[i+2]
			if pf.Revents == 0 {
				continue
			}
			s.serviceConn(id, pf.Revents)
		}
		s.drainOutbox()

		s.connMu.Lock()
		closed := s.closed
		s.connMu.Unlock()
		if closed {
			return nil
		}
	}
}

func (s *Service) acceptOne() {
	fd, peer, err := s.listener.Accept()
	if err != nil {
		s.log.Warn("accept failed", varlog.F("error", err))
		return
	}
	c := &connState{
		id:     fd,
		corrID: uuid.NewString(),
		stream: stream.New(fd),
		peer:   peer,
	}
	s.connMu.Lock()
	s.conns[fd] = c
	s.connMu.Unlock()
	s.metrics.connOpened()
	s.log.Debug("accepted connection", varlog.F("conn", c.corrID), varlog.F("fd", fd))
}

func (s *Service) serviceConn(id int, revents int16) {
	s.connMu.Lock()
	c, ok := s.conns[id]
	s.connMu.Unlock()
	if !ok {
		return
	}

	if revents&unix.POLLOUT != 0 {
		if err := c.stream.Flush(); err != nil {
			s.closeConn(id, err)
			return
		}
	}
	if revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
		return
	}

	if err := c.stream.Fill(); err != nil {
		s.closeConn(id, err)
		return
	}

	for c.call == nil {
		frame, ok, err := c.stream.NextFrame()
		if err != nil {
			s.closeConn(id, err)
			return
		}
		if !ok {
			break
		}
		if s.dispatchFrame(c, frame) {
			// closeConn already invoked by dispatchFrame.
			return
		}
	}

	if c.stream.Hup() {
		s.closeConn(id, verror.ConnectionClosed.Error())
	}
}

// dispatchFrame unpacks and handles one call frame. It returns true if the
// connection was closed as a result (handler failure per spec §7).
func (s *Service) dispatchFrame(c *connState, frame []byte) bool {
	call, err := message.UnpackCall(frame)
	if err != nil {
		s.closeConn(c.id, err)
		return true
	}

	ctxCall := &Call{
		srv:     s,
		connID:  c.id,
		Method:  call.Method,
		Params:  call.Parameters,
		Flags:   call.Flags,
		peer:    c.peer,
	}

	fn, fallback := s.resolveHandler(call.Method)
	var runErr error
	if fallback != nil {
		runErr = fallback(ctxCall)
	} else {
		s.metrics.callDispatched(call.Method)
		runErr = fn(ctxCall)
	}

	if runErr != nil && !ctxCall.isCompleted() {
		s.closeConn(c.id, runErr)
		return true
	}
	if call.Flags&message.Oneway != 0 {
		return false
	}
	if !ctxCall.isCompleted() {
		c.call = ctxCall
	}
	return false
}

// resolveHandler looks up the handler for a qualified method name, or
// returns a synthetic handler producing the matching org.varlink.service
// error (spec §4.9 "A missing interface, missing method, or missing
// callback produces the standard errors").
func (s *Service) resolveHandler(qualifiedMethod string) (HandlerFunc, HandlerFunc) {
	idx := strings.LastIndexByte(qualifiedMethod, '.')
	if idx < 0 {
		return nil, func(c *Call) error {
			return c.errServiceError("MethodNotFound", "method", qualifiedMethod)
		}
	}
	ifaceName := qualifiedMethod[:idx]
	methodName := qualifiedMethod[idx+1:]

	iface, ok := s.lookupInterface(ifaceName)
	if !ok {
		return nil, func(c *Call) error {
			return c.errServiceError("InterfaceNotFound", "interface", ifaceName)
		}
	}
	if _, ok := iface.Lookup(methodName); !ok {
		return nil, func(c *Call) error {
			return c.errServiceError("MethodNotFound", "method", qualifiedMethod)
		}
	}
	fn, ok := s.lookupHandler(qualifiedMethod)
	if !ok {
		return nil, func(c *Call) error {
			return c.errServiceError("MethodNotImplemented", "method", qualifiedMethod)
		}
	}
	return fn, nil
}

// enqueueReply is called by Call.finish, possibly from a goroutine other
// than the dispatch loop (a deferred handler completing asynchronously).
func (s *Service) enqueueReply(connID int, raw []byte, terminal bool) {
	s.connMu.Lock()
	s.outbox[connID] = append(s.outbox[connID], pendingReply{raw: raw, terminal: terminal})
	s.connMu.Unlock()
	s.wake.signal()
}

// drainOutbox queues every pending reply onto its connection's stream and
// flushes, releasing connections whose terminal reply has arrived.
func (s *Service) drainOutbox() {
	s.connMu.Lock()
	pending := s.outbox
	s.outbox = make(map[int][]pendingReply)
	s.connMu.Unlock()

	for connID, replies := range pending {
		s.connMu.Lock()
		c, ok := s.conns[connID]
		s.connMu.Unlock()
		if !ok {
			continue
		}
		for _, r := range replies {
			if err := c.stream.QueueFrame(r.raw); err != nil {
				s.closeConn(connID, err)
				break
			}
			if r.terminal {
				c.call = nil
			}
		}
		if err := c.stream.Flush(); err != nil {
			s.closeConn(connID, err)
		}
	}
}

func (s *Service) closeConn(id int, reason error) error {
	s.connMu.Lock()
	c, ok := s.conns[id]
	if ok {
		delete(s.conns, id)
		delete(s.outbox, id)
	}
	s.connMu.Unlock()
	if !ok {
		return nil
	}
	if c.call != nil {
		c.call.invokeCancel()
	}
	err := c.stream.Close()
	s.metrics.connClosed()
	s.log.Debug("connection closed", varlog.F("conn", c.corrID), varlog.F("reason", reason))
	return err
}

// Close shuts the listener and every accepted connection down, invoking
// cancellation callbacks for in-flight calls (spec §3 "closing the server
// closes all connections (invoking cancellation callbacks for in-flight
// calls)"). Close aggregates per-connection close errors.
func (s *Service) Close() error {
	s.connMu.Lock()
	if s.closed {
		s.connMu.Unlock()
		return nil
	}
	s.closed = true
	ids := make([]int, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	s.connMu.Unlock()

	var errs *multierror.Error
	for _, id := range ids {
		if err := s.closeConn(id, verror.ConnectionClosed.Error()); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
		s.metrics.setListening(0)
	}
	if s.wake != nil {
		s.wake.signal()
		_ = s.wake.close()
	}
	return errs.ErrorOrNil()
}

// OpenConnections reports the current connection count (grounded on
// nabbar-golib/socket/server's OpenConnections()).
func (s *Service) OpenConnections() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return len(s.conns)
}

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

// Package transport implements connect/listen/accept for the three
// stream-socket kinds Varlink runs over (spec §4.6): UNIX (filesystem and
// abstract namespace), TCP (IPv4/IPv6), and character device. Every
// returned file descriptor is non-blocking and close-on-exec (spec §5
// "Resources: ... File descriptors are close-on-exec; sockets are
// non-blocking"), so package stream can multiplex them without ever
// touching the platform-specific listen/accept/connect dance itself (spec
// §9: "epoll-specific multiplexer -> abstract readiness source interface
// ... The core loop is platform-free").
package transport

import (
	"github.com/sabouaram/govarlink/uri"
	"github.com/sabouaram/govarlink/verror"
)

// PeerCredentials is the UNIX peer identity captured at accept time via
// SO_PEERCRED (spec §4.6 "On accept, read SO_PEERCRED").
type PeerCredentials struct {
	PID int32
	UID uint32
	GID uint32
}

// Listener is a non-blocking, close-on-exec listening socket.
type Listener interface {
	// Fd returns the underlying, non-blocking file descriptor.
	Fd() int

	// Accept accepts one pending connection, returning its non-blocking
	// fd and, for a UNIX listener, the peer's credentials. Returns
	// verror.AccessDenied without completing the accept's handshake data
	// exchange if the UNIX peer-credential policy (spec §4.6.1) denies
	// the connection.
	Accept() (fd int, peer *PeerCredentials, err error)

	// Close closes the listening socket. For a filesystem-path UNIX
	// socket this also unlinks the path (spec §4.6 "Cleanup").
	Close() error

	// Addr returns the bound address in the same textual form Parse
	// accepts (spec_full supplementary feature #6: an autobind UNIX
	// listener's Addr reflects the kernel-assigned abstract name).
	Addr() string
}

// Listen performs the listen half of the connect/listen/accept contract
// for addr (spec §4.6).
func Listen(addr string) (Listener, error) {
	u, err := uri.Parse(addr, false)
	if err != nil {
		return nil, err
	}
	switch u.Transport {
	case uri.TransportUnix:
		return listenUnix(u)
	case uri.TransportTCP:
		return listenTCP(u)
	case uri.TransportDevice:
		return nil, verror.CannotListen.Errorf("device transport does not support listen")
	default:
		return nil, verror.InvalidAddress.Errorf("unsupported transport for listen")
	}
}

// Connect performs the connect half (spec §4.6). Device addresses open the
// character device read/write in place of a network connect.
func Connect(addr string) (fd int, err error) {
	u, err := uri.Parse(addr, false)
	if err != nil {
		return -1, err
	}
	switch u.Transport {
	case uri.TransportUnix:
		return connectUnix(u)
	case uri.TransportTCP:
		return connectTCP(u)
	case uri.TransportDevice:
		return openDevice(u)
	default:
		return -1, verror.InvalidAddress.Errorf("unsupported transport for connect")
	}
}

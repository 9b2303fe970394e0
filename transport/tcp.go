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

package transport

import (
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/uri"
	"github.com/sabouaram/govarlink/verror"
)

// tcpListener implements Listener over AF_INET/AF_INET6 (spec §4.6 "TCP
// specifics"). TCP carries no peer-credential policy: Accept always
// admits the connection.
type tcpListener struct {
	fd        int
	host      string
	port      int
	closeOnce sync.Once
}

func listenTCP(u *uri.URI) (Listener, error) {
	ip := net.ParseIP(u.Host)
	family := unix.AF_INET
	if ip == nil || ip.To4() == nil {
		family = unix.AF_INET6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, verror.CannotListen.Errorf("socket: %v", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, verror.CannotListen.Errorf("setsockopt SO_REUSEADDR: %v", err)
	}

	if err := bindTCP(fd, family, u.Host, u.Port); err != nil {
		_ = unix.Close(fd)
		return nil, verror.CannotListen.Errorf("bind %s:%d: %v", u.Host, u.Port, err)
	}

	if err := unix.Listen(fd, 128); err != nil {
		_ = unix.Close(fd)
		return nil, verror.CannotListen.Errorf("listen: %v", err)
	}

	port := u.Port
	if port == 0 {
		if sa, err := unix.Getsockname(fd); err == nil {
			switch a := sa.(type) {
			case *unix.SockaddrInet4:
				port = a.Port
			case *unix.SockaddrInet6:
				port = a.Port
			}
		}
	}

	return &tcpListener{fd: fd, host: u.Host, port: port}, nil
}

func bindTCP(fd, family int, host string, port int) error {
	ip := net.ParseIP(host)
	switch family {
	case unix.AF_INET:
		sa := &unix.SockaddrInet4{Port: port}
		if ip != nil {
			copy(sa.Addr[:], ip.To4())
		}
		return unix.Bind(fd, sa)
	default:
		sa := &unix.SockaddrInet6{Port: port}
		if ip != nil {
			copy(sa.Addr[:], ip.To16())
		}
		return unix.Bind(fd, sa)
	}
}

func (l *tcpListener) Fd() int { return l.fd }

func (l *tcpListener) Addr() string {
	return "tcp:" + net.JoinHostPort(l.host, fmt.Sprint(l.port))
}

func (l *tcpListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = unix.Close(l.fd)
	})
	return err
}

func (l *tcpListener) Accept() (int, *PeerCredentials, error) {
	nfd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if err == unix.EAGAIN {
			return -1, nil, verror.CannotAccept.Errorf("no pending connection")
		}
		return -1, nil, verror.CannotAccept.Errorf("accept: %v", err)
	}
	return nfd, nil, nil
}

func connectTCP(u *uri.URI) (int, error) {
	ip := net.ParseIP(u.Host)
	family := unix.AF_INET
	if ip == nil || ip.To4() == nil {
		family = unix.AF_INET6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, verror.CannotConnect.Errorf("socket: %v", err)
	}

	var sa unix.Sockaddr
	if family == unix.AF_INET {
		s := &unix.SockaddrInet4{Port: u.Port}
		copy(s.Addr[:], ip.To4())
		sa = s
	} else {
		s := &unix.SockaddrInet6{Port: u.Port}
		copy(s.Addr[:], ip.To16())
		sa = s
	}

	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, verror.CannotConnect.Errorf("connect %s:%d: %v", u.Host, u.Port, err)
	}
	return fd, nil
}

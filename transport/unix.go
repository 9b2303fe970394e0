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
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/uri"
	"github.com/sabouaram/govarlink/verror"
)

const defaultUnixMode = 0600

// unixListener implements Listener over AF_UNIX (spec §4.6 "UNIX
// specifics").
type unixListener struct {
	fd         int
	path       string // "" for abstract/autobind; the original filesystem path otherwise
	abstract   bool
	mode       uint32
	ownerUID   uint32
	ownerGID   uint32
	closeOnce  sync.Once
	assignedNm string
}

func listenUnix(u *uri.URI) (Listener, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, verror.CannotListen.Errorf("socket: %v", err)
	}

	sa := &unix.SockaddrUnix{Name: u.Path}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, verror.CannotListen.Errorf("bind %q: %v", u.Path, err)
	}

	mode := uint32(defaultUnixMode)
	if u.Mode >= 0 {
		mode = uint32(u.Mode)
	}

	isPath := u.Path != "" && u.Path[0] != 0
	if isPath {
		if err := os.Chmod(u.Path, os.FileMode(mode)); err != nil {
			_ = unix.Close(fd)
			_ = os.Remove(u.Path)
			return nil, verror.CannotListen.Errorf("chmod %q: %v", u.Path, err)
		}
	}
	// Always fchmod the listen fd so the mode is queryable at accept
	// time for the peer-credential policy (spec §4.6), whether or not
	// the socket has a filesystem path.
	if err := unix.Fchmod(fd, mode); err != nil {
		_ = unix.Close(fd)
		if isPath {
			_ = os.Remove(u.Path)
		}
		return nil, verror.CannotListen.Errorf("fchmod: %v", err)
	}

	if err := unix.Listen(fd, 128); err != nil {
		_ = unix.Close(fd)
		if isPath {
			_ = os.Remove(u.Path)
		}
		return nil, verror.CannotListen.Errorf("listen: %v", err)
	}

	l := &unixListener{
		fd:       fd,
		path:     u.Path,
		abstract: !isPath,
		mode:     mode,
		ownerUID: uint32(os.Geteuid()),
		ownerGID: uint32(os.Getegid()),
	}

	if !isPath {
		if resolved, err := readBoundName(fd); err == nil {
			l.assignedNm = resolved
		}
	}

	return l, nil
}

// readBoundName reads back the kernel-assigned name of an autobind or
// already-bound abstract socket (spec_full §3 item 6).
func readBoundName(fd int) (string, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", err
	}
	if su, ok := sa.(*unix.SockaddrUnix); ok {
		return su.Name, nil
	}
	return "", nil
}

func (l *unixListener) Fd() int { return l.fd }

func (l *unixListener) Addr() string {
	if l.abstract {
		name := l.assignedNm
		if strings.HasPrefix(name, "\x00") {
			name = "@" + name[1:]
		}
		return "unix:" + name
	}
	return "unix:" + l.path
}

func (l *unixListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = unix.Close(l.fd)
		if !l.abstract && l.path != "" {
			_ = os.Remove(l.path)
		}
	})
	return err
}

func (l *unixListener) Accept() (int, *PeerCredentials, error) {
	nfd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if err == unix.EAGAIN {
			return -1, nil, verror.CannotAccept.Errorf("no pending connection")
		}
		return -1, nil, verror.CannotAccept.Errorf("accept: %v", err)
	}

	cred, err := unix.GetsockoptUcred(nfd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		_ = unix.Close(nfd)
		return -1, nil, verror.CannotAccept.Errorf("SO_PEERCRED: %v", err)
	}
	peer := &PeerCredentials{PID: cred.Pid, UID: cred.Uid, GID: cred.Gid}

	if !checkPeerAccess(l.mode, l.ownerUID, l.ownerGID, *peer) {
		_ = unix.Close(nfd)
		return -1, peer, verror.AccessDenied.Errorf(
			"uid %d gid %d denied by peer-credential policy (mode %o, owner %d:%d)",
			peer.UID, peer.GID, l.mode, l.ownerUID, l.ownerGID)
	}

	return nfd, peer, nil
}

// checkPeerAccess implements the UNIX peer-credential policy verbatim
// (spec §4.6.1).
func checkPeerAccess(mode, ownerUID, ownerGID uint32, peer PeerCredentials) bool {
	if mode&0002 != 0 {
		return true
	}
	if peer.UID == 0 || peer.GID == 0 {
		return true
	}
	if peer.UID == ownerUID {
		return true
	}
	if mode&0020 != 0 && peer.GID == ownerGID {
		return true
	}
	return false
}

func connectUnix(u *uri.URI) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, verror.CannotConnect.Errorf("socket: %v", err)
	}
	sa := &unix.SockaddrUnix{Name: u.Path}
	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, verror.CannotConnect.Errorf("connect %q: %v", u.Path, err)
	}
	return fd, nil
}

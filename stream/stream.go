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

// Package stream implements the NUL-delimited framed reader/writer over one
// non-blocking file descriptor (spec §4.7): fixed-size buffers, partial-write
// tracking, and EOF/hup detection. It knows nothing about JSON envelopes --
// package message packs/unpacks those on top of the raw frames this package
// extracts.
package stream

import (
	"bytes"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/verror"
)

// BufferSize is the fixed capacity of the read and write buffers (spec
// §4.7, §6.1: "Implementations MUST tolerate messages up to 16 MiB").
const BufferSize = 16 * 1024 * 1024

// Stream frames NUL-delimited messages over a single non-blocking fd.
type Stream struct {
	fd int

	in       []byte
	inStart  int
	inEnd    int

	out      []byte
	outStart int
	outEnd   int

	hup bool
}

// New wraps fd, which must already be non-blocking.
func New(fd int) *Stream {
	return &Stream{
		fd:  fd,
		in:  make([]byte, BufferSize),
		out: make([]byte, BufferSize),
	}
}

// Fd returns the underlying file descriptor.
func (s *Stream) Fd() int { return s.fd }

// Hup reports whether the peer has closed its end (spec §4.7: "EOF or
// ECONNRESET sets hup").
func (s *Stream) Hup() bool { return s.hup }

// Events returns the readiness bitmask this stream wants: read is always
// desired; write only while output is pending (spec §4.7 "Event bitmask").
func (s *Stream) Events() (wantRead, wantWrite bool) {
	return true, s.outEnd > s.outStart
}

// Fill reads as much as the kernel has available into the read buffer.
// EAGAIN is not an error: it means no new bytes arrived this call. EOF or
// ECONNRESET sets hup.
func (s *Stream) Fill() error {
	s.compactIn()
	for s.inEnd < len(s.in) {
		n, err := unix.Read(s.fd, s.in[s.inEnd:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			if err == unix.ECONNRESET {
				s.hup = true
				return nil
			}
			return verror.ReceivingMessage.Errorf("read: %v", err)
		}
		if n == 0 {
			s.hup = true
			return nil
		}
		s.inEnd += n
	}
	return nil
}

// compactIn moves unconsumed input to offset 0 whenever some input has
// already been consumed, so a subsequent Fill has room to make progress (spec §4.7
// "compacts the buffer by moving unconsumed bytes to offset 0 when
// needed").
func (s *Stream) compactIn() {
	if s.inStart == 0 {
		return
	}
	if s.inStart == s.inEnd {
		s.inStart, s.inEnd = 0, 0
		return
	}
	n := copy(s.in, s.in[s.inStart:s.inEnd])
	s.inStart = 0
	s.inEnd = n
}

// NextFrame extracts the next NUL-terminated frame from the read buffer, if
// one is fully buffered. ok is false when no complete frame is available
// yet (caller should Fill and retry on the next readiness event). A full
// buffer with no terminator is a fatal framing error.
func (s *Stream) NextFrame() (frame []byte, ok bool, err error) {
	idx := bytes.IndexByte(s.in[s.inStart:s.inEnd], 0)
	if idx < 0 {
		if s.inStart == 0 && s.inEnd == len(s.in) {
			return nil, false, verror.InvalidMessage.Errorf("frame exceeds %d byte buffer with no terminator", BufferSize)
		}
		return nil, false, nil
	}
	frame = s.in[s.inStart : s.inStart+idx]
	s.inStart += idx + 1
	return frame, true, nil
}

// QueueFrame appends payload plus its terminating NUL to the write buffer
// (spec §4.7 "Writer"). It is fatal if the single message, once framed,
// exceeds the buffer's capacity.
func (s *Stream) QueueFrame(payload []byte) error {
	need := len(payload) + 1
	if need > len(s.out) {
		return verror.InvalidMessage.Errorf("message of %d bytes exceeds %d byte write buffer", len(payload), BufferSize)
	}
	if need > len(s.out)-s.outEnd {
		s.compactOut()
	}
	if need > len(s.out)-s.outEnd {
		return verror.SendingMessage.Errorf("write buffer full, %d bytes pending", s.outEnd-s.outStart)
	}
	s.outEnd += copy(s.out[s.outEnd:], payload)
	s.out[s.outEnd] = 0
	s.outEnd++
	return nil
}

func (s *Stream) compactOut() {
	if s.outStart == 0 {
		return
	}
	n := copy(s.out, s.out[s.outStart:s.outEnd])
	s.outStart = 0
	s.outEnd = n
}

// Flush writes as many pending bytes as the kernel accepts (spec §4.7
// "flush writes as many bytes as the kernel accepts; EAGAIN leaves residue
// for the next writable event; EPIPE sets hup and returns
// ConnectionClosed").
func (s *Stream) Flush() error {
	for s.outStart < s.outEnd {
		n, err := unix.Write(s.fd, s.out[s.outStart:s.outEnd])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			if err == unix.EPIPE {
				s.hup = true
				return verror.ConnectionClosed.Error()
			}
			return verror.SendingMessage.Errorf("write: %v", err)
		}
		s.outStart += n
	}
	s.compactOut()
	return nil
}

// Close closes the underlying file descriptor.
func (s *Stream) Close() error {
	return unix.Close(s.fd)
}

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

// Package uri parses Varlink service addresses (spec §4.5): `unix:`, `tcp:`,
// `device:` transports, the `varlink://` container form, and bare
// `interface[.Member]` references.
package uri

import (
	"strconv"
	"strings"

	"github.com/sabouaram/govarlink/scanner"
	"github.com/sabouaram/govarlink/verror"
)

// Transport identifies the connection kind named by an address.
type Transport int

const (
	TransportUnix Transport = iota
	TransportTCP
	TransportDevice
)

func (t Transport) String() string {
	switch t {
	case TransportUnix:
		return "unix"
	case TransportTCP:
		return "tcp"
	case TransportDevice:
		return "device"
	default:
		return "unknown"
	}
}

// URI is the parsed form of a Varlink address (spec §4.5).
type URI struct {
	Transport Transport

	// Path is the filesystem path (unix, device) -- for an abstract
	// namespace socket it begins with a NUL byte. Host is the TCP host
	// (may have been an IPv6 literal, brackets stripped).
	Path string
	Host string
	Port int

	// Mode is the optional `;mode=<octal>` suffix on a unix address, -1
	// if not given.
	Mode int

	// Interface and Member are populated when the address carries a
	// qualified method reference, either via `varlink://addr/Iface.Method`
	// or a bare `interface.Member` form.
	Interface string
	Member    string

	Query    string
	Fragment string
}

// Parse parses addr as a Varlink address (spec §4.5). Pass
// allowInterfaceForm=true to additionally accept a bare
// `<interface>[.Member]` reference (used by tools resolving a method
// name without an explicit transport).
func Parse(addr string, allowInterfaceForm bool) (*URI, error) {
	switch {
	case strings.HasPrefix(addr, "unix:"):
		return parseUnix(addr[len("unix:"):])
	case strings.HasPrefix(addr, "tcp:"):
		return parseTCP(addr[len("tcp:"):])
	case strings.HasPrefix(addr, "device:"):
		return &URI{Transport: TransportDevice, Path: addr[len("device:"):]}, nil
	case strings.HasPrefix(addr, "varlink://"):
		return parseContainer(addr[len("varlink://"):])
	default:
		if allowInterfaceForm && isInterfaceForm(addr) {
			u := &URI{}
			setInterfaceMember(u, addr)
			return u, nil
		}
		return nil, verror.InvalidAddress.Errorf("unrecognised address: %q", addr)
	}
}

func isInterfaceForm(addr string) bool {
	iface, _ := splitInterfaceMember(addr)
	return scanner.ValidInterfaceName(iface)
}

func splitInterfaceMember(addr string) (iface, member string) {
	// The member, if present, is the last dot-separated segment and must
	// satisfy member naming (upper-case first letter); everything before
	// it is the interface name.
	idx := strings.LastIndexByte(addr, '.')
	if idx < 0 {
		return addr, ""
	}
	last := addr[idx+1:]
	if len(last) > 0 && last[0] >= 'A' && last[0] <= 'Z' && scanner.ValidMemberName(last) {
		return addr[:idx], last
	}
	return addr, ""
}

func setInterfaceMember(u *URI, addr string) {
	u.Interface, u.Member = splitInterfaceMember(addr)
}

// parseUnix parses the portion after `unix:` (spec §4.5): a filesystem
// path, `@name` for the abstract namespace (translated to a leading NUL),
// an empty path meaning autobind, and an optional `;mode=<octal>` suffix.
func parseUnix(rest string) (*URI, error) {
	u := &URI{Transport: TransportUnix, Mode: -1}
	path := rest
	if idx := strings.Index(rest, ";mode="); idx >= 0 {
		path = rest[:idx]
		modeStr := rest[idx+len(";mode="):]
		m, err := strconv.ParseInt(modeStr, 8, 32)
		if err != nil {
			return nil, verror.InvalidAddress.Errorf("invalid unix socket mode %q", modeStr)
		}
		u.Mode = int(m)
	}
	if strings.HasPrefix(path, "@") {
		u.Path = "\x00" + path[1:]
	} else {
		u.Path = path
	}
	return u, nil
}

// parseTCP parses the portion after `tcp:` (spec §4.5): `host:port`, with
// `host` optionally bracketed IPv6.
func parseTCP(rest string) (*URI, error) {
	host, port, err := splitHostPort(rest)
	if err != nil {
		return nil, err
	}
	return &URI{Transport: TransportTCP, Host: host, Port: port, Mode: -1}, nil
}

func splitHostPort(s string) (string, int, error) {
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", 0, verror.InvalidAddress.Errorf("unterminated IPv6 literal in %q", s)
		}
		host := s[1:end]
		remainder := s[end+1:]
		if !strings.HasPrefix(remainder, ":") {
			return "", 0, verror.InvalidAddress.Errorf("missing port in %q", s)
		}
		port, err := strconv.Atoi(remainder[1:])
		if err != nil {
			return "", 0, verror.InvalidAddress.Errorf("invalid port in %q", s)
		}
		return host, port, nil
	}
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return "", 0, verror.InvalidAddress.Errorf("missing port in %q", s)
	}
	host := s[:idx]
	if strings.Contains(host, ":") {
		return "", 0, verror.InvalidAddress.Errorf("bracketed IPv6 literal required in %q", s)
	}
	port, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, verror.InvalidAddress.Errorf("invalid port in %q", s)
	}
	return host, port, nil
}

// parseContainer parses the `varlink://` form: a percent-encoded address,
// optional `/Interface[.Member]`, optional `?query`, optional `#fragment`
// (spec §4.5, §6.2: "Percent-encoded octets in the varlink:// form decode
// to arbitrary bytes").
func parseContainer(rest string) (*URI, error) {
	fragment := ""
	if idx := strings.IndexByte(rest, '#'); idx >= 0 {
		fragment = rest[idx+1:]
		rest = rest[:idx]
	}
	query := ""
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		query = rest[idx+1:]
		rest = rest[:idx]
	}
	path := ""
	encodedAddr := rest
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		encodedAddr = rest[:idx]
		path = rest[idx+1:]
	}

	decoded, err := percentDecode(encodedAddr)
	if err != nil {
		return nil, err
	}

	inner, err := Parse(decoded, false)
	if err != nil {
		return nil, err
	}
	inner.Query = query
	inner.Fragment = fragment
	if path != "" {
		setInterfaceMember(inner, path)
	}
	return inner, nil
}

// percentDecode implements the restricted percent-decoder from
// original_source/lib/uri.c (spec_full §3 item 4): hex pairs only, no
// '+'-as-space, and no requirement that non-printable bytes be escaped —
// Go's net/url rejects arbitrary (including NUL) bytes that a varlink://
// address component may legitimately carry.
func percentDecode(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", verror.InvalidAddress.Errorf("truncated percent-encoding in %q", s)
		}
		v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", verror.InvalidAddress.Errorf("invalid percent-encoding in %q", s)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}

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

package scanner

import (
	"strings"

	"github.com/sabouaram/govarlink/verror"
)

// ValidInterfaceName reports whether name satisfies spec §4.5's interface
// naming rule: 3-255 ASCII chars, lower-case letters/digits/-/., at least
// two dot-separated sections, each section starts alpha, no leading/
// trailing dot, no adjacent dots, no '-' adjacent to '.'.
func ValidInterfaceName(name string) bool {
	n := len(name)
	if n < 3 || n > 255 {
		return false
	}
	if name[0] == '.' || name[n-1] == '.' {
		return false
	}
	sections := strings.Split(name, ".")
	if len(sections) < 2 {
		return false
	}
	for _, sec := range sections {
		if sec == "" {
			return false
		}
		if !isAsciiAlpha(sec[0]) {
			return false
		}
		for i := 0; i < len(sec); i++ {
			c := sec[i]
			if !(isAsciiLowerAlpha(c) || isAsciiDigit(c) || c == '-') {
				return false
			}
		}
		if sec[0] == '-' || sec[len(sec)-1] == '-' {
			return false
		}
	}
	return true
}

// ValidMemberName reports whether name satisfies spec §4.5's member naming
// rule: starts upper-case, rest alphanumeric.
func ValidMemberName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAsciiAlphaNum(name[i]) {
			return false
		}
	}
	return true
}

// ValidFieldName reports whether name satisfies spec §4.5's field naming
// rule: starts letter, rest letters/digits/_, no consecutive '_', no
// trailing '_'.
func ValidFieldName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if !isAsciiAlpha(name[0]) {
		return false
	}
	if name[len(name)-1] == '_' {
		return false
	}
	prevUnderscore := false
	for i := 1; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			if prevUnderscore {
				return false
			}
			prevUnderscore = true
			continue
		}
		prevUnderscore = false
		if !isAsciiAlphaNum(c) {
			return false
		}
	}
	return true
}

// ValidTypeName reports whether name is a plain member name or a qualified
// `interface.Member` name (spec §4.5).
func ValidTypeName(name string) bool {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		iface, member := name[:idx], name[idx+1:]
		return ValidInterfaceName(iface) && ValidMemberName(member)
	}
	return ValidMemberName(name)
}

func isAsciiAlpha(c byte) bool      { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAsciiLowerAlpha(c byte) bool { return c >= 'a' && c <= 'z' }
func isAsciiDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isAsciiAlphaNum(c byte) bool   { return isAsciiAlpha(c) || isAsciiDigit(c) }

// ExpectInterfaceName reads the raw lexeme-like token used for an interface
// name (letters, digits, '-', '.') and validates it per spec §4.5.
func (s *Scanner) ExpectInterfaceName() (string, bool) {
	s.skip()
	start := s.pos
	for !s.eof() {
		c := s.cur()
		if isAsciiAlphaNum(c) || c == '-' || c == '.' {
			s.advance()
			continue
		}
		break
	}
	name := s.src[start:s.pos]
	if !ValidInterfaceName(name) {
		s.fail(verror.InvalidInterface, "invalid interface name: "+name)
		return "", false
	}
	return name, true
}

// ExpectMemberName reads and validates a member name (spec §4.5).
func (s *Scanner) ExpectMemberName() (string, bool) {
	s.skip()
	lex := s.lexeme()
	if lex == "" || !ValidMemberName(lex) {
		s.fail(verror.InvalidInterface, "invalid member name: "+lex)
		return "", false
	}
	s.pos += len(lex)
	return lex, true
}

// ExpectFieldName reads and validates a field name (spec §4.5).
func (s *Scanner) ExpectFieldName() (string, bool) {
	s.skip()
	lex := s.lexeme()
	if lex == "" || !ValidFieldName(lex) {
		s.fail(verror.InvalidInterface, "invalid field name: "+lex)
		return "", false
	}
	s.pos += len(lex)
	return lex, true
}

// ExpectTypeName reads a (possibly dotted) type reference name and
// validates it as a plain or qualified type name (spec §4.5).
func (s *Scanner) ExpectTypeName() (string, bool) {
	s.skip()
	start := s.pos
	for !s.eof() {
		c := s.cur()
		if isAsciiAlphaNum(c) || c == '-' || c == '.' || c == '_' {
			s.advance()
			continue
		}
		break
	}
	name := s.src[start:s.pos]
	if !ValidTypeName(name) {
		s.fail(verror.InvalidInterface, "invalid type name: "+name)
		return "", false
	}
	return name, true
}

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

// Package scanner implements the single-pass stream scanner shared by the
// IDL parser and the JSON value reader (spec §4.2). It recognises keywords,
// identifiers, operators, numbers and JSON string literals over a string
// input, tracks line/column for the first error encountered, and - in
// interface mode - collects docstrings from runs of `#` comment lines.
package scanner

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sabouaram/govarlink/internal/utf8x"
	"github.com/sabouaram/govarlink/verror"
)

// Mode selects whether the scanner recognises `#` comments/docstrings
// (interface mode, spec §4.2 "interface scanner") or not (plain mode, used
// for the JSON value codec).
type Mode int

const (
	ModePlain Mode = iota
	ModeInterface
)

// Number is the result of ReadNumber: either an integer or a float,
// distinguished by IsFloat (spec §4.2: "if the literal contains '.', 'e' or
// 'E' it is a float").
type Number struct {
	IsFloat bool
	Int     int64
	Float   float64
}

// Scanner is a single-pass cursor over a source string.
type Scanner struct {
	src       string
	pos       int
	line      int
	lineStart int
	mode      Mode

	doc []string

	firstErr verror.Error
}

// NewInterface returns a Scanner in interface mode (comments/docstrings
// recognised).
func NewInterface(src string) *Scanner {
	return &Scanner{src: src, line: 1, mode: ModeInterface}
}

// NewPlain returns a Scanner in plain mode (no comments), used to decode
// JSON values (spec §4.3).
func NewPlain(src string) *Scanner {
	return &Scanner{src: src, line: 1, mode: ModePlain}
}

// Err returns the first error recorded by this scanner, or nil.
func (s *Scanner) Err() verror.Error { return s.firstErr }

// Pos returns the scanner's current 1-based line and column.
func (s *Scanner) Pos() (line, column int) {
	return s.line, s.pos - s.lineStart + 1
}

// fail records the first error only; subsequent failures are suppressed
// (spec §4.2: "On any failure the scanner records the first error's line and
// column; subsequent errors are suppressed").
func (s *Scanner) fail(code verror.CodeError, msg string) {
	if s.firstErr != nil {
		return
	}
	line, col := s.Pos()
	s.firstErr = verror.NewAt(code, msg, line, col)
}

// Snapshot is an opaque scanner checkpoint usable with Restore, letting a
// caller backtrack after a tentative lookahead (e.g. the IDL parser
// distinguishing an enum from an object type by peeking past the first
// name for a ':').
type Snapshot struct {
	pos       int
	line      int
	lineStart int
	doc       []string
	firstErr  verror.Error
}

// Snapshot captures the scanner's current state.
func (s *Scanner) Snapshot() Snapshot {
	return Snapshot{
		pos:       s.pos,
		line:      s.line,
		lineStart: s.lineStart,
		doc:       append([]string(nil), s.doc...),
		firstErr:  s.firstErr,
	}
}

// Restore rewinds the scanner to a previously captured Snapshot.
func (s *Scanner) Restore(sn Snapshot) {
	s.pos = sn.pos
	s.line = sn.line
	s.lineStart = sn.lineStart
	s.doc = sn.doc
	s.firstErr = sn.firstErr
}

func (s *Scanner) eof() bool { return s.pos >= len(s.src) }

func (s *Scanner) cur() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *Scanner) advance() {
	if s.eof() {
		return
	}
	if s.src[s.pos] == '\n' {
		s.line++
		s.pos++
		s.lineStart = s.pos
		return
	}
	s.pos++
}

// skip consumes whitespace and, in interface mode, comments, accumulating
// docstring lines. A blank line (two consecutive newlines with nothing but
// horizontal whitespace between) clears any pending docstring: only the
// comment block directly preceding the next lexeme counts (spec §4.2
// "get_last_docstring").
func (s *Scanner) skip() {
	for !s.eof() {
		c := s.cur()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			s.advance()
		case c == '\n':
			s.advance()
			p := s.pos
			for p < len(s.src) && (s.src[p] == ' ' || s.src[p] == '\t' || s.src[p] == '\r') {
				p++
			}
			if p < len(s.src) && s.src[p] == '\n' {
				s.doc = s.doc[:0]
			}
		case s.mode == ModeInterface && c == '#':
			s.advance() // consume '#'
			start := s.pos
			for !s.eof() && s.cur() != '\n' {
				s.advance()
			}
			line := s.src[start:s.pos]
			line = strings.TrimPrefix(line, " ")
			s.doc = append(s.doc, line)
		default:
			return
		}
	}
}

// Peek skips whitespace/comments and returns the next byte without
// consuming it, or 0 at end of input.
func (s *Scanner) Peek() byte {
	s.skip()
	return s.cur()
}

// GetLastDocString returns the docstring accumulated directly before the
// current position (see skip), stripped and newline-joined, and clears it.
// Returns "" if there is none.
func (s *Scanner) GetLastDocString() string {
	s.skip()
	if len(s.doc) == 0 {
		return ""
	}
	out := strings.Join(s.doc, "\n")
	s.doc = nil
	return out
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// lexeme returns the raw identifier/keyword starting at the current
// position (after skip), without consuming it.
func (s *Scanner) lexeme() string {
	if s.eof() || !isIdentStart(s.cur()) {
		return ""
	}
	start := s.pos
	p := s.pos
	for p < len(s.src) && isIdentCont(s.src[p]) {
		p++
	}
	return s.src[start:p]
}

// ReadKeyword consumes the next lexeme and returns true if it equals w
// exactly; otherwise it consumes nothing and returns false (spec §4.2
// "read_keyword").
func (s *Scanner) ReadKeyword(w string) bool {
	s.skip()
	lex := s.lexeme()
	if lex != w {
		return false
	}
	s.pos += len(lex)
	return true
}

// PeekKeyword reports whether the next lexeme equals w, without consuming.
func (s *Scanner) PeekKeyword(w string) bool {
	s.skip()
	return s.lexeme() == w
}

// ExpectOperator consumes the single-byte operator op or records an error
// (spec §4.2 "expect_operator").
func (s *Scanner) ExpectOperator(op byte) bool {
	s.skip()
	if s.cur() != op {
		s.fail(verror.InvalidInterface, "expected operator '"+string(op)+"'")
		return false
	}
	s.advance()
	return true
}

// ExpectArrow consumes the two-byte '->' operator used between method input
// and output types.
func (s *Scanner) ExpectArrow() bool {
	s.skip()
	if !strings.HasPrefix(s.src[s.pos:], "->") {
		s.fail(verror.InvalidInterface, "expected '->'")
		return false
	}
	s.pos += 2
	return true
}

// ExpectString parses a JSON string literal starting at the current
// position (spec §4.2 "expect_string"): escapes `\" \\ \/ \b \f \n \r \t
// \uXXXX` with surrogate-pair combination, rejecting invalid UTF-8 and
// embedded NUL in the decoded bytes.
func (s *Scanner) ExpectString() (string, bool) {
	s.skip()
	if s.cur() != '"' {
		s.fail(verror.InvalidJson, "expected string")
		return "", false
	}
	s.advance()

	var b strings.Builder
	for {
		if s.eof() {
			s.fail(verror.InvalidJson, "unterminated string")
			return "", false
		}
		c := s.cur()
		if c == '"' {
			s.advance()
			break
		}
		if c == '\\' {
			s.advance()
			if s.eof() {
				s.fail(verror.InvalidJson, "unterminated escape")
				return "", false
			}
			e := s.cur()
			switch e {
			case '"':
				b.WriteByte('"')
				s.advance()
			case '\\':
				b.WriteByte('\\')
				s.advance()
			case '/':
				b.WriteByte('/')
				s.advance()
			case 'b':
				b.WriteByte('\b')
				s.advance()
			case 'f':
				b.WriteByte('\f')
				s.advance()
			case 'n':
				b.WriteByte('\n')
				s.advance()
			case 'r':
				b.WriteByte('\r')
				s.advance()
			case 't':
				b.WriteByte('\t')
				s.advance()
			case 'u':
				s.advance()
				r, ok := s.readHex4()
				if !ok {
					return "", false
				}
				if utf16IsHighSurrogate(r) {
					if !strings.HasPrefix(s.src[s.pos:], "\\u") {
						s.fail(verror.InvalidJson, "unpaired surrogate")
						return "", false
					}
					s.pos += 2
					r2, ok := s.readHex4()
					if !ok {
						return "", false
					}
					if !utf16IsLowSurrogate(r2) {
						s.fail(verror.InvalidJson, "invalid surrogate pair")
						return "", false
					}
					combined := ((rune(r) - 0xD800) << 10) + (rune(r2) - 0xDC00) + 0x10000
					b.WriteRune(combined)
				} else if utf16IsLowSurrogate(r) {
					s.fail(verror.InvalidJson, "unpaired low surrogate")
					return "", false
				} else {
					b.WriteRune(rune(r))
				}
			default:
				s.fail(verror.InvalidJson, "invalid escape")
				return "", false
			}
			continue
		}
		if c == 0x00 {
			s.fail(verror.InvalidJson, "embedded NUL in string")
			return "", false
		}
		if c < 0x20 {
			s.fail(verror.InvalidJson, "control character in string")
			return "", false
		}
		// copy one UTF-8 rune as-is
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if size == 0 {
			size = 1
		}
		b.WriteString(s.src[s.pos : s.pos+size])
		for i := 0; i < size; i++ {
			s.advance()
		}
	}

	out := b.String()
	if !utf8x.Valid([]byte(out)) {
		s.fail(verror.InvalidJson, "invalid UTF-8 in string")
		return "", false
	}
	return out, true
}

func (s *Scanner) readHex4() (uint16, bool) {
	if s.pos+4 > len(s.src) {
		s.fail(verror.InvalidJson, "truncated unicode escape")
		return 0, false
	}
	v, err := strconv.ParseUint(s.src[s.pos:s.pos+4], 16, 16)
	if err != nil {
		s.fail(verror.InvalidJson, "invalid unicode escape")
		return 0, false
	}
	s.pos += 4
	return uint16(v), true
}

func utf16IsHighSurrogate(r uint16) bool { return r >= 0xD800 && r <= 0xDBFF }
func utf16IsLowSurrogate(r uint16) bool  { return r >= 0xDC00 && r <= 0xDFFF }

// ReadNumber parses an integer or floating-point literal per ECMA-404,
// under no locale (spec §4.2, §9: "use locale-independent numeric routines
// directly; never toggle global state").
func (s *Scanner) ReadNumber() (Number, bool) {
	s.skip()
	start := s.pos
	if s.cur() == '-' {
		s.advance()
	}
	if s.eof() || s.cur() < '0' || s.cur() > '9' {
		s.fail(verror.InvalidJson, "invalid number")
		return Number{}, false
	}
	if s.cur() == '0' {
		s.advance()
	} else {
		for !s.eof() && s.cur() >= '0' && s.cur() <= '9' {
			s.advance()
		}
	}
	isFloat := false
	if !s.eof() && s.cur() == '.' {
		isFloat = true
		s.advance()
		if s.eof() || s.cur() < '0' || s.cur() > '9' {
			s.fail(verror.InvalidJson, "invalid number: expected digit after '.'")
			return Number{}, false
		}
		for !s.eof() && s.cur() >= '0' && s.cur() <= '9' {
			s.advance()
		}
	}
	if !s.eof() && (s.cur() == 'e' || s.cur() == 'E') {
		isFloat = true
		s.advance()
		if !s.eof() && (s.cur() == '+' || s.cur() == '-') {
			s.advance()
		}
		if s.eof() || s.cur() < '0' || s.cur() > '9' {
			s.fail(verror.InvalidJson, "invalid number: expected digit in exponent")
			return Number{}, false
		}
		for !s.eof() && s.cur() >= '0' && s.cur() <= '9' {
			s.advance()
		}
	}

	lit := s.src[start:s.pos]
	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			s.fail(verror.InvalidJson, "number out of range")
			return Number{}, false
		}
		return Number{IsFloat: true, Float: f}, true
	}
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		s.fail(verror.InvalidJson, "integer out of range")
		return Number{}, false
	}
	return Number{Int: i}, true
}

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

// Package utf8x validates that a decoded JSON string is well-formed UTF-8
// (spec §4.2: "the decoded bytes must be valid UTF-8 with no NUL"). Go's
// standard utf8.Valid accepts overlong forms decoded by some readers as
// replacement runes rather than rejecting them outright, so this package
// walks the byte sequence by hand the way the reference scanner does,
// rejecting overlong encodings, lone surrogates and embedded NUL explicitly
// (spec §8: "UTF-8 decoder rejects overlong sequences, lone surrogates, and
// embedded NUL").
package utf8x

// Valid reports whether b is a well-formed UTF-8 byte sequence containing no
// NUL byte and no surrogate codepoint (U+D800-U+DFFF, which cannot appear in
// valid UTF-8 but some permissive decoders let through via CESU-8-like
// encodings).
func Valid(b []byte) bool {
	i := 0
	n := len(b)
	for i < n {
		c := b[i]
		switch {
		case c == 0x00:
			return false
		case c < 0x80:
			i++
		case c&0xE0 == 0xC0:
			if !seq(b, i, n, 2, 0x80) {
				return false
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			if r < 0x80 {
				return false
			}
			i += 2
		case c&0xF0 == 0xE0:
			if !seq(b, i, n, 3, 0x80) {
				return false
			}
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r < 0x800 {
				return false
			}
			if r >= 0xD800 && r <= 0xDFFF {
				return false
			}
			i += 3
		case c&0xF8 == 0xF0:
			if !seq(b, i, n, 4, 0x80) {
				return false
			}
			r := rune(c&0x07)<<18 | rune(b[i+1]&0x3F)<<12 | rune(b[i+2]&0x3F)<<6 | rune(b[i+3]&0x3F)
			if r < 0x10000 || r > 0x10FFFF {
				return false
			}
			i += 4
		default:
			return false
		}
	}
	return true
}

// seq reports whether b[i+1:i+width] are all continuation bytes (10xxxxxx)
// and that the sequence does not run past n.
func seq(b []byte, i, n, width int, mask byte) bool {
	if i+width > n {
		return false
	}
	for j := 1; j < width; j++ {
		if b[i+j]&0xC0 != mask {
			return false
		}
	}
	return true
}

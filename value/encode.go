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

package value

import (
	"strconv"
	"strings"
)

// Markup carries four pre/post tag pairs used to wrap encoded keys and
// values for ANSI-colored output without changing JSON semantics (spec
// §4.3): the tags are emitted inside the quotes for strings and immediately
// surrounding bare tokens for scalars, so a consumer stripping them
// recovers plain JSON.
type Markup struct {
	KeyPre, KeyPost     string
	ValuePre, ValuePost string
}

// EncodeOptions configures Encode's output layout.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level. Zero means
	// compact, single-line output.
	Indent int
	Markup Markup
}

// Encode renders v as compact canonical JSON (spec §4.3).
func Encode(v Value) string {
	var b strings.Builder
	encode(&b, v, EncodeOptions{}, 0)
	return b.String()
}

// EncodeIndent renders v as indented canonical JSON.
func EncodeIndent(v Value, indent int) string {
	var b strings.Builder
	encode(&b, v, EncodeOptions{Indent: indent}, 0)
	return b.String()
}

// EncodeWithOptions renders v per the given options, including optional
// markup tags.
func EncodeWithOptions(v Value, opts EncodeOptions) string {
	var b strings.Builder
	encode(&b, v, opts, 0)
	return b.String()
}

func encode(b *strings.Builder, v Value, opts EncodeOptions, depth int) {
	switch v.kind {
	case KindNull:
		writeMarked(b, opts.Markup.ValuePre, "null", opts.Markup.ValuePost)
	case KindBool:
		lit := "false"
		if v.b {
			lit = "true"
		}
		writeMarked(b, opts.Markup.ValuePre, lit, opts.Markup.ValuePost)
	case KindInt:
		writeMarked(b, opts.Markup.ValuePre, strconv.FormatInt(v.i, 10), opts.Markup.ValuePost)
	case KindFloat:
		writeMarked(b, opts.Markup.ValuePre, formatFloat(v.f), opts.Markup.ValuePost)
	case KindString:
		b.WriteByte('"')
		b.WriteString(opts.Markup.ValuePre)
		writeEscapedString(b, v.s)
		b.WriteString(opts.Markup.ValuePost)
		b.WriteByte('"')
	case KindArray:
		encodeArray(b, v.arr, opts, depth)
	case KindObject:
		encodeObject(b, v.obj, opts, depth)
	}
}

// formatFloat renders a float64 with full round-trip precision, locale
// independent (spec §4.3, §9: "use locale-independent numeric routines
// directly"), switching to scientific notation for large magnitude values
// the way Go's shortest round-trip formatter does.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeMarked(b *strings.Builder, pre, lit, post string) {
	b.WriteString(pre)
	b.WriteString(lit)
	b.WriteString(post)
}

func writeEscapedString(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xF])
			} else {
				b.WriteByte(c)
			}
		}
	}
}

func indent(b *strings.Builder, n, depth int) {
	if n <= 0 {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < n*depth; i++ {
		b.WriteByte(' ')
	}
}

func encodeArray(b *strings.Builder, a *Array, opts EncodeOptions, depth int) {
	if a == nil || len(a.items) == 0 {
		b.WriteString("[]")
		return
	}
	b.WriteByte('[')
	for i, item := range a.items {
		if i > 0 {
			b.WriteByte(',')
		}
		indent(b, opts.Indent, depth+1)
		encode(b, item, opts, depth+1)
	}
	indent(b, opts.Indent, depth)
	b.WriteByte(']')
}

func encodeObject(b *strings.Builder, o *Object, opts EncodeOptions, depth int) {
	if o == nil || o.tree.Count() == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteByte('{')
	first := true
	o.tree.Walk(func(k string, v Value) bool {
		if !first {
			b.WriteByte(',')
		}
		first = false
		indent(b, opts.Indent, depth+1)
		b.WriteByte('"')
		b.WriteString(opts.Markup.KeyPre)
		writeEscapedString(b, k)
		b.WriteString(opts.Markup.KeyPost)
		b.WriteString(`":`)
		if opts.Indent > 0 {
			b.WriteByte(' ')
		}
		encode(b, v, opts, depth+1)
		return true
	})
	indent(b, opts.Indent, depth)
	b.WriteByte('}')
}

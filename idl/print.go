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

package idl

import "strings"

const printIndentUnit = "    "

// Print renders i in canonical form (spec §4.4 "Pretty-printer"): one
// blank line between members, docstrings as `#` lines at the member's
// indent, and object types spanning multiple lines only when they contain
// more than two fields, a documented field, a nested object/enum field, or
// their single-line form exceeds 40 characters. Print(Parse(Print(x)))
// reproduces Print(x) (spec §8 "IDL round-trip").
func Print(i *Interface) string {
	var b strings.Builder
	if i.Doc != "" {
		writeDoc(&b, i.Doc, 0)
	}
	b.WriteString("interface ")
	b.WriteString(i.Name)
	b.WriteString("\n")

	for _, m := range i.order {
		b.WriteString("\n")
		if m.Doc != "" {
			writeDoc(&b, m.Doc, 0)
		}
		switch m.Kind {
		case MemberTypeAlias:
			b.WriteString("type ")
			b.WriteString(m.Name)
			b.WriteString(" ")
			b.WriteString(printType(m.AliasType, 0))
			b.WriteString("\n")
		case MemberMethod:
			b.WriteString("method ")
			b.WriteString(m.Name)
			b.WriteString(printType(m.In, 0))
			b.WriteString(" -> ")
			b.WriteString(printType(m.Out, 0))
			b.WriteString("\n")
		case MemberError:
			b.WriteString("error ")
			b.WriteString(m.Name)
			if m.ErrType != nil {
				b.WriteString(" ")
				b.WriteString(printType(m.ErrType, 0))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeDoc(b *strings.Builder, doc string, depth int) {
	ind := strings.Repeat(printIndentUnit, depth)
	for _, line := range strings.Split(doc, "\n") {
		b.WriteString(ind)
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func printType(t *Type, depth int) string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindForeignObject:
		return "object"
	case KindArray:
		return "[]" + printType(t.Elem, depth)
	case KindMap:
		return "[string]" + printType(t.Elem, depth)
	case KindMaybe:
		return "?" + printType(t.Elem, depth)
	case KindEnum:
		return "(" + strings.Join(t.EnumNames, ", ") + ")"
	case KindAlias:
		return t.Alias
	case KindObject:
		return printObjectType(t, depth)
	default:
		return ""
	}
}

func printObjectType(t *Type, depth int) string {
	if len(t.Fields) == 0 {
		return "()"
	}
	inline := inlineObjectType(t, depth)
	if !needsMultiline(t, inline) {
		return inline
	}

	var b strings.Builder
	b.WriteString("(\n")
	ind := strings.Repeat(printIndentUnit, depth+1)
	for idx, f := range t.Fields {
		if f.Doc != "" {
			writeDoc(&b, f.Doc, depth+1)
		}
		b.WriteString(ind)
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(printType(f.Type, depth+1))
		if idx < len(t.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(printIndentUnit, depth))
	b.WriteString(")")
	return b.String()
}

func inlineObjectType(t *Type, depth int) string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + printType(f.Type, depth)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// needsMultiline implements spec §4.4's layout rule verbatim.
func needsMultiline(t *Type, inline string) bool {
	if len(t.Fields) > 2 {
		return true
	}
	for _, f := range t.Fields {
		if f.Doc != "" {
			return true
		}
		if f.Type.Kind == KindObject || f.Type.Kind == KindEnum {
			return true
		}
	}
	return len(inline) > 40
}

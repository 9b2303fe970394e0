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

import (
	"fmt"

	"github.com/sabouaram/govarlink/avltree"
	"github.com/sabouaram/govarlink/scanner"
)

// Interface is a validated name, an optional docstring, and an ordered list
// of members (spec §3 "Interface", §4.1 "F Interface").
//
// Members are kept in two structures at once, mirroring the C reference
// implementation's dual layout (spec_full §3 item 2): an AVL tree indexed
// by name for O(log n) Lookup, and a plain slice in declaration order for
// enumeration and pretty-printing.
type Interface struct {
	Name string
	Doc  string

	order []Member
	index avltree.Tree[string, int]
}

// NewInterface validates name (spec §4.5) and returns an empty Interface.
func NewInterface(name, doc string) (*Interface, error) {
	if !scanner.ValidInterfaceName(name) {
		return nil, fmt.Errorf("idl: invalid interface name %q", name)
	}
	return &Interface{
		Name:  name,
		Doc:   doc,
		index: avltree.New[string, int](func(a, b string) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}),
	}, nil
}

// AddMember appends m, rejecting a duplicate name in the shared
// method/error/type-alias namespace (spec §3: "Methods and errors share
// the member namespace; duplicates are rejected").
func (i *Interface) AddMember(m Member) error {
	if _, ok := i.index.Find(m.Name); ok {
		return fmt.Errorf("idl: duplicate member name %q in interface %s", m.Name, i.Name)
	}
	idx := len(i.order)
	i.order = append(i.order, m)
	return i.index.Insert(m.Name, idx)
}

// Lookup returns the member named name, and true, or the zero Member and
// false.
func (i *Interface) Lookup(name string) (Member, bool) {
	idx, ok := i.index.Find(name)
	if !ok {
		return Member{}, false
	}
	return i.order[idx], true
}

// Members returns all members in declaration order.
func (i *Interface) Members() []Member {
	return i.order
}

// Methods returns only the method members, in declaration order.
func (i *Interface) Methods() []Member {
	out := make([]Member, 0, len(i.order))
	for _, m := range i.order {
		if m.Kind == MemberMethod {
			out = append(out, m)
		}
	}
	return out
}

// Errors returns only the error members, in declaration order.
func (i *Interface) Errors() []Member {
	out := make([]Member, 0, len(i.order))
	for _, m := range i.order {
		if m.Kind == MemberError {
			out = append(out, m)
		}
	}
	return out
}

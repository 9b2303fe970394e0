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
	"strings"
)

// Resolve links every unqualified Alias type reachable from i's members to
// the local type-alias member it names (spec §4.4 "Reference resolution"):
// after parsing the whole interface, every Alias referencing an unqualified
// name must resolve to a member of this interface; failure yields an error
// naming the first unresolved symbol. Qualified (`interface.Member`)
// references are left unresolved: they name a member of a foreign
// interface, which this package has no way to fetch. Recursive types
// (an alias whose body eventually refers back to itself) are permitted
// (spec §3 "Recursive references": "Recursive types (alias back to owning
// type) are permitted") since Resolve only links pointers, it never
// expands them.
func Resolve(i *Interface) error {
	var firstErr error
	visit := func(t *Type) {
		if firstErr != nil || t == nil || t.Kind != KindAlias {
			return
		}
		if strings.Contains(t.Alias, ".") {
			return // qualified: foreign interface, not resolved locally
		}
		m, ok := i.Lookup(t.Alias)
		if !ok || m.Kind != MemberTypeAlias {
			firstErr = fmt.Errorf("idl: interface %s: unresolved type reference %q", i.Name, t.Alias)
			return
		}
		t.resolved = m.AliasType
	}
	for _, m := range i.order {
		switch m.Kind {
		case MemberTypeAlias:
			walkType(m.AliasType, visit)
		case MemberMethod:
			walkType(m.In, visit)
			walkType(m.Out, visit)
		case MemberError:
			if m.ErrType != nil {
				walkType(m.ErrType, visit)
			}
		}
		if firstErr != nil {
			return firstErr
		}
	}
	return firstErr
}

// walkType calls fn on t and, recursively, on every type reachable from it.
func walkType(t *Type, fn func(*Type)) {
	if t == nil {
		return
	}
	fn(t)
	switch t.Kind {
	case KindArray, KindMap, KindMaybe:
		walkType(t.Elem, fn)
	case KindObject:
		for _, f := range t.Fields {
			walkType(f.Type, fn)
		}
	}
}

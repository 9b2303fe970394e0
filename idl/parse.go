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
	"github.com/sabouaram/govarlink/scanner"
	"github.com/sabouaram/govarlink/verror"
)

// Parse parses interface description text into an Interface (spec §4.4
// grammar), validates all §4.5 name rules as it goes, and resolves local
// type-alias references (spec §4.4 "Reference resolution").
func Parse(src string) (*Interface, error) {
	s := scanner.NewInterface(src)

	s.Peek()
	ifaceDoc := s.GetLastDocString()

	if !s.ReadKeyword("interface") {
		return nil, parseErr(s, "expected 'interface' keyword")
	}
	name, ok := s.ExpectInterfaceName()
	if !ok {
		return nil, parseErr(s, "invalid interface name")
	}

	iface, err := NewInterface(name, ifaceDoc)
	if err != nil {
		return nil, verror.InvalidInterface.Errorf("%v", err)
	}

	for s.Peek() != 0 {
		mdoc := s.GetLastDocString()
		m, err := parseMember(s, mdoc)
		if err != nil {
			return nil, err
		}
		if err := iface.AddMember(m); err != nil {
			return nil, verror.InvalidInterface.Errorf("%v", err)
		}
	}
	if s.Err() != nil {
		return nil, s.Err()
	}

	if err := Resolve(iface); err != nil {
		return nil, verror.InvalidInterface.Errorf("%v", err)
	}
	return iface, nil
}

func parseErr(s *scanner.Scanner, msg string) error {
	if e := s.Err(); e != nil {
		return e
	}
	line, col := s.Pos()
	return verror.NewAt(verror.InvalidInterface, msg, line, col)
}

func parseMember(s *scanner.Scanner, doc string) (Member, error) {
	switch {
	case s.ReadKeyword("type"):
		name, ok := s.ExpectMemberName()
		if !ok {
			return Member{}, parseErr(s, "invalid type member name")
		}
		t, err := parseType(s)
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: MemberTypeAlias, Name: name, Doc: doc, AliasType: t}, nil

	case s.ReadKeyword("method"):
		name, ok := s.ExpectMemberName()
		if !ok {
			return Member{}, parseErr(s, "invalid method name")
		}
		in, err := parseObjectType(s)
		if err != nil {
			return Member{}, err
		}
		if !s.ExpectArrow() {
			return Member{}, parseErr(s, "expected '->'")
		}
		out, err := parseObjectType(s)
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: MemberMethod, Name: name, Doc: doc, In: in, Out: out}, nil

	case s.ReadKeyword("error"):
		name, ok := s.ExpectMemberName()
		if !ok {
			return Member{}, parseErr(s, "invalid error name")
		}
		var errType *Type
		if s.Peek() == '(' {
			t, err := parseType(s)
			if err != nil {
				return Member{}, err
			}
			errType = t
		}
		return Member{Kind: MemberError, Name: name, Doc: doc, ErrType: errType}, nil

	default:
		return Member{}, parseErr(s, "expected 'type', 'method' or 'error'")
	}
}

// ParseType parses a single standalone type expression, exposed for tests
// and tooling that need to round-trip an isolated type.
func ParseType(src string) (*Type, error) {
	s := scanner.NewPlain(src)
	t, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if s.Peek() != 0 {
		return nil, verror.InvalidInterface.Errorf("trailing data after type")
	}
	return t, nil
}

func parseType(s *scanner.Scanner) (*Type, error) {
	switch {
	case s.ReadKeyword("bool"):
		return Bool(), nil
	case s.ReadKeyword("int"):
		return Int(), nil
	case s.ReadKeyword("float"):
		return Float(), nil
	case s.ReadKeyword("string"):
		return String(), nil
	case s.ReadKeyword("object"):
		return ForeignObject(), nil
	}

	switch s.Peek() {
	case '?':
		s.ExpectOperator('?')
		elem, err := parseType(s)
		if err != nil {
			return nil, err
		}
		t, merr := MaybeOf(elem)
		if merr != nil {
			return nil, verror.InvalidInterface.Errorf("%v", merr)
		}
		return t, nil

	case '[':
		s.ExpectOperator('[')
		if s.Peek() == ']' {
			s.ExpectOperator(']')
			elem, err := parseType(s)
			if err != nil {
				return nil, err
			}
			return ArrayOf(elem), nil
		}
		if !s.ReadKeyword("string") {
			return nil, parseErr(s, "expected 'string' map key or ']'")
		}
		if !s.ExpectOperator(']') {
			return nil, parseErr(s, "expected ']'")
		}
		elem, err := parseType(s)
		if err != nil {
			return nil, err
		}
		return MapOf(elem), nil

	case '(':
		return parseParenType(s)

	default:
		name, ok := s.ExpectTypeName()
		if !ok {
			return nil, parseErr(s, "expected a type")
		}
		return AliasTo(name), nil
	}
}

// parseObjectType parses a Type that must be the parenthesised object form,
// used for method input/output (spec §4.4 grammar "ObjectType").
func parseObjectType(s *scanner.Scanner) (*Type, error) {
	if s.Peek() != '(' {
		return nil, parseErr(s, "expected '(' to start an object type")
	}
	t, err := parseParenType(s)
	if err != nil {
		return nil, err
	}
	if t.Kind != KindObject {
		return nil, parseErr(s, "method input/output must be an object type")
	}
	return t, nil
}

// parseParenType parses the `(...)` production, disambiguating an object
// type from an enum by a one-token lookahead on the first member (spec
// §4.4 grammar: "enum (detected by absence of ':' on first field)").
func parseParenType(s *scanner.Scanner) (*Type, error) {
	if !s.ExpectOperator('(') {
		return nil, parseErr(s, "expected '('")
	}
	if s.Peek() == ')' {
		s.ExpectOperator(')')
		t, err := ObjectOf(nil)
		if err != nil {
			return nil, verror.InvalidInterface.Errorf("%v", err)
		}
		return t, nil
	}

	snap := s.Snapshot()
	s.GetLastDocString()
	_, ok := s.ExpectFieldName()
	if !ok {
		return nil, parseErr(s, "expected a field or enum value name")
	}
	isObject := s.Peek() == ':'
	s.Restore(snap)

	if isObject {
		return parseObjectFields(s)
	}
	return parseEnumNames(s)
}

func parseObjectFields(s *scanner.Scanner) (*Type, error) {
	var fields []Field
	for {
		doc := s.GetLastDocString()
		name, ok := s.ExpectFieldName()
		if !ok {
			return nil, parseErr(s, "expected a field name")
		}
		if !s.ExpectOperator(':') {
			return nil, parseErr(s, "expected ':'")
		}
		t, err := parseType(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: t, Doc: doc})
		if s.Peek() == ',' {
			s.ExpectOperator(',')
			continue
		}
		break
	}
	if !s.ExpectOperator(')') {
		return nil, parseErr(s, "expected ')'")
	}
	t, err := ObjectOf(fields)
	if err != nil {
		return nil, verror.InvalidInterface.Errorf("%v", err)
	}
	return t, nil
}

func parseEnumNames(s *scanner.Scanner) (*Type, error) {
	var names []string
	for {
		name, ok := s.ExpectFieldName()
		if !ok {
			return nil, parseErr(s, "expected an enum value name")
		}
		names = append(names, name)
		if s.Peek() == ',' {
			s.ExpectOperator(',')
			continue
		}
		break
	}
	if !s.ExpectOperator(')') {
		return nil, parseErr(s, "expected ')'")
	}
	return EnumOf(names), nil
}

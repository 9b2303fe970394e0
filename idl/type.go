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

// Package idl implements the Varlink interface description language (spec
// §4.4): the type AST, a recursive-descent parser built on package scanner,
// reference resolution, and the canonical pretty-printer.
package idl

import "fmt"

// Kind tags the variant carried by a Type (spec §3 "Type (IDL AST)").
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	// KindForeignObject is the bare `object` keyword: an untyped,
	// opaque JSON object whose shape is not described by the IDL.
	KindForeignObject
	KindArray
	KindMap
	KindMaybe
	KindEnum
	// KindObject is a structured object type: an ordered list of named,
	// typed fields.
	KindObject
	// KindAlias references another type by name, resolved within the
	// owning interface (or left qualified for a foreign interface).
	KindAlias
)

func (k Kind) String() string {
	switch k {
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
		return "array"
	case KindMap:
		return "map"
	case KindMaybe:
		return "maybe"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object-type"
	case KindAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Type is the IDL type AST node (spec §3, §4.4 grammar).
type Type struct {
	Kind Kind

	// Elem is the element type for Array, Map and Maybe.
	Elem *Type

	// EnumNames is the ordered list of enum value names for Enum.
	EnumNames []string

	// Fields is the ordered field list for Object.
	Fields []Field

	// Alias is the referenced type name for Alias: either a bare member
	// name or a qualified `interface.Member` name (spec §4.5).
	Alias string

	// resolved is populated by Resolve for a local (unqualified) Alias;
	// nil for qualified (foreign-interface) aliases, which are never
	// resolved locally.
	resolved *Type
}

// Field is one member of an object type (spec §4.4 grammar "Field").
type Field struct {
	Name string
	Type *Type
	Doc  string
}

// Bool, Int, Float, String and ForeignObject are the primitive type
// constructors.
func Bool() *Type          { return &Type{Kind: KindBool} }
func Int() *Type           { return &Type{Kind: KindInt} }
func Float() *Type         { return &Type{Kind: KindFloat} }
func String() *Type        { return &Type{Kind: KindString} }
func ForeignObject() *Type { return &Type{Kind: KindForeignObject} }

// ArrayOf, MapOf and MaybeOf build the corresponding parametrised types.
// MaybeOf rejects nesting Maybe(Maybe(_)) (spec §3 invariant).
func ArrayOf(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }
func MapOf(elem *Type) *Type   { return &Type{Kind: KindMap, Elem: elem} }

func MaybeOf(elem *Type) (*Type, error) {
	if elem.Kind == KindMaybe {
		return nil, fmt.Errorf("idl: maybe(maybe(_)) is forbidden")
	}
	return &Type{Kind: KindMaybe, Elem: elem}, nil
}

// EnumOf builds an enum type from its ordered value names.
func EnumOf(names []string) *Type {
	return &Type{Kind: KindEnum, EnumNames: names}
}

// ObjectOf builds a structured object type, rejecting duplicate field names
// (spec §3 invariant "object field names are unique within an object").
func ObjectOf(fields []Field) (*Type, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("idl: duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
	}
	return &Type{Kind: KindObject, Fields: fields}, nil
}

// AliasTo builds an unresolved reference to name.
func AliasTo(name string) *Type {
	return &Type{Kind: KindAlias, Alias: name}
}

// Resolved returns the type this alias resolves to, if it is a local alias
// that has been resolved by Resolve, or nil otherwise (also nil for
// qualified/foreign-interface aliases, which are intentionally left
// unresolved).
func (t *Type) Resolved() *Type { return t.resolved }

// Field looks up a field by name in an Object type.
func (t *Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

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

// Package value implements the Varlink JSON value model (spec §3, §4.3): a
// tagged union of Null/Bool/Int/Float/String/Array/Object, with Array and
// Object modelled as shared-ownership containers that freeze (become
// read-only) the moment they are produced by JSON decode (spec §9: "Manual
// reference counting of arrays/objects -> shared-ownership primitive. Model
// as a shared handle with interior immutability once frozen; freezing is a
// one-way state transition triggered by JSON decode").
package value

import (
	"sync/atomic"

	"github.com/sabouaram/govarlink/avltree"
	"github.com/sabouaram/govarlink/verror"
)

// Kind tags the variant carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged union described by spec §3. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  *Array
	obj  *Object
}

// Null is the Null value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func FromArray(a *Array) Value {
	return Value{kind: KindArray, arr: a}
}
func FromObject(o *Object) Value {
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) Int() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool)   { return v.f, v.kind == KindFloat }
func (v Value) String() (string, bool)   { return v.s, v.kind == KindString }
func (v Value) Array() (*Array, bool)    { return v.arr, v.kind == KindArray }
func (v Value) Object() (*Object, bool)  { return v.obj, v.kind == KindObject }

// Equal reports deep structural equality, used by the round-trip property
// test (spec §8: "decode(encode(v)) equals v structurally").
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindArray:
		return arrayEqual(a.arr, b.arr)
	case KindObject:
		return objectEqual(a.obj, b.obj)
	default:
		return false
	}
}

func arrayEqual(a, b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	ai := a.Items()
	bi := b.Items()
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if !Equal(ai[i], bi[i]) {
			return false
		}
	}
	return true
}

func objectEqual(a, b *Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	af := a.Fields()
	bf := b.Fields()
	if len(af) != len(bf) {
		return false
	}
	for k, av := range af {
		bv, ok := bf[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// --- Array -----------------------------------------------------------------

// Array is a shared-ownership, ordered, element-kind-tagged container (spec
// §3). It is mutable until Freeze is called (by JSON decode, or
// explicitly), after which every mutator returns verror.ReadOnly.
type Array struct {
	refs     int32
	frozen   bool
	hasKind  bool
	elemKind Kind
	items    []Value
}

// NewArray returns a new, mutable, empty Array with one reference held by
// the caller.
func NewArray() *Array {
	return &Array{refs: 1}
}

// Retain increments the reference count and returns the same Array, the Go
// analogue of the C reference implementation's array_ref (spec §3, §9).
func (a *Array) Retain() *Array {
	atomic.AddInt32(&a.refs, 1)
	return a
}

// Release decrements the reference count. Go's garbage collector reclaims
// the backing storage once it is unreachable; Release exists so that
// acquire/release bookkeeping (spec §8: "total acquires minus releases
// equals zero on shutdown") can be asserted by callers and tests that
// mirror the reference-counted C original.
func (a *Array) Release() {
	atomic.AddInt32(&a.refs, -1)
}

// RefCount returns the current reference count (for tests).
func (a *Array) RefCount() int32 { return atomic.LoadInt32(&a.refs) }

// Frozen reports whether the array is write-protected.
func (a *Array) Frozen() bool { return a.frozen }

// Freeze marks the array read-only. Idempotent.
func (a *Array) Freeze() { a.frozen = true }

// ElementKind returns the fixed element kind once set, or KindNull with
// false if no non-null element has been appended yet (spec §3: "an
// element-kind tag — undefined until first non-null insertion, then
// fixed").
func (a *Array) ElementKind() (Kind, bool) { return a.elemKind, a.hasKind }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Items returns the elements in insertion order. The returned slice must
// not be mutated by the caller.
func (a *Array) Items() []Value { return a.items }

// At returns the element at index i, or an InvalidIndex error if i is out
// of range (spec §6.3 code 12).
func (a *Array) At(i int) (Value, error) {
	if i < 0 || i >= len(a.items) {
		return Value{}, verror.InvalidIndex.Errorf("array index %d out of range [0,%d)", i, len(a.items))
	}
	return a.items[i], nil
}

// Append adds v to the end of the array. Fails with ReadOnly if frozen, or
// TypeMismatch if v's kind conflicts with the array's established element
// kind (spec §3: "Appends of the wrong kind fail with TypeMismatch; null is
// accepted for any kind").
func (a *Array) Append(v Value) error {
	if a.frozen {
		return verror.ReadOnly.Errorf("cannot append to a read-only array")
	}
	if v.kind != KindNull {
		if !a.hasKind {
			a.hasKind = true
			a.elemKind = v.kind
		} else if v.kind != a.elemKind {
			return verror.TypeMismatch.Errorf("array element kind %s does not match established kind %s", v.kind, a.elemKind)
		}
	}
	a.items = append(a.items, v)
	return nil
}

// --- Object ------------------------------------------------------------

// Object maps field names (unique, ordered lexicographically by the
// backing AVL tree) to values (spec §3). It is mutable until Freeze is
// called, after which every mutator returns verror.ReadOnly. Setting a
// field to Null removes it.
type Object struct {
	refs   int32
	frozen bool
	tree   avltree.Tree[string, Value]
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NewObject returns a new, mutable, empty Object with one reference held by
// the caller.
func NewObject() *Object {
	return &Object{refs: 1, tree: avltree.New[string, Value](stringCompare)}
}

func (o *Object) Retain() *Object {
	atomic.AddInt32(&o.refs, 1)
	return o
}

func (o *Object) Release() {
	atomic.AddInt32(&o.refs, -1)
}

func (o *Object) RefCount() int32 { return atomic.LoadInt32(&o.refs) }

func (o *Object) Frozen() bool { return o.frozen }

func (o *Object) Freeze() { o.frozen = true }

// Len returns the number of fields.
func (o *Object) Len() int { return o.tree.Count() }

// Get returns the value at name and true, or Null and false if absent.
func (o *Object) Get(name string) (Value, bool) {
	return o.tree.Find(name)
}

// Has reports whether name is set.
func (o *Object) Has(name string) bool {
	_, ok := o.tree.Find(name)
	return ok
}

// Set assigns name to v, replacing any existing value, or removes the
// field entirely if v is Null (spec §3: "Setting a field to null is
// equivalent to removing it"). Fails with ReadOnly if frozen.
func (o *Object) Set(name string, v Value) error {
	if o.frozen {
		return verror.ReadOnly.Errorf("cannot set field %q on a read-only object", name)
	}
	if v.kind == KindNull {
		_ = o.tree.Remove(name)
		return nil
	}
	_ = o.tree.Remove(name)
	return o.tree.Insert(name, v)
}

// Remove deletes name. No-op (no error) if name is absent: the JSON model
// does not distinguish "absent" from "removed".
func (o *Object) Remove(name string) {
	_ = o.tree.Remove(name)
}

// Names returns field names in lexicographic order.
func (o *Object) Names() []string {
	out := make([]string, 0, o.tree.Count())
	o.tree.Walk(func(k string, _ Value) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Fields returns a snapshot map of all fields. Iteration order is not
// preserved by the map; use Names for ordered access.
func (o *Object) Fields() map[string]Value {
	out := make(map[string]Value, o.tree.Count())
	o.tree.Walk(func(k string, v Value) bool {
		out[k] = v
		return true
	})
	return out
}

// Walk visits fields in lexicographic key order, stopping early if fn
// returns false.
func (o *Object) Walk(fn func(name string, v Value) bool) {
	o.tree.Walk(fn)
}

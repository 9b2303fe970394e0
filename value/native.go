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
	"github.com/mitchellh/mapstructure"

	"github.com/sabouaram/govarlink/verror"
)

// ToNative projects v into plain Go values (map[string]any, []any, string,
// bool, int64, float64, nil) suitable as mapstructure input. This is the
// boundary the teacher repo also draws between its wire-format package and
// mapstructure-style struct binding used by call sites (spec_full §1):
// ToNative never touches the wire, it only prepares an already-decoded
// Value tree for ergonomic struct decoding.
func ToNative(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		if v.arr == nil {
			return []any{}
		}
		out := make([]any, len(v.arr.items))
		for i, item := range v.arr.items {
			out[i] = ToNative(item)
		}
		return out
	case KindObject:
		if v.obj == nil {
			return map[string]any{}
		}
		out := make(map[string]any, v.obj.tree.Count())
		v.obj.tree.Walk(func(k string, item Value) bool {
			out[k] = ToNative(item)
			return true
		})
		return out
	default:
		return nil
	}
}

// Bind projects v's native form into dst (a pointer to a struct or map) via
// mapstructure, the ergonomic layer above the hand-rolled codec used by
// call sites building typed parameters out of a decoded Value. Bind and
// EncodeStruct together bridge the hand-rolled Value tree to and from
// plain Go structs.
func Bind(v Value, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		TagName:          "varlink",
	})
	if err != nil {
		return verror.Panic.Errorf("building mapstructure decoder: %v", err)
	}
	if err := dec.Decode(ToNative(v)); err != nil {
		return verror.TypeMismatch.Errorf("decoding value into %T: %v", dst, err)
	}
	return nil
}

// FromNative converts a plain Go value (as produced by encoding/json
// Unmarshal into any, or hand-built maps/slices) into a Value tree. Maps
// must be map[string]any; unsupported concrete types produce Null.
func FromNative(n any) Value {
	switch t := n.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case []any:
		a := NewArray()
		for _, item := range t {
			_ = a.Append(FromNative(item))
		}
		return FromArray(a)
	case map[string]any:
		o := NewObject()
		for k, item := range t {
			iv := FromNative(item)
			if !iv.IsNull() {
				_ = o.Set(k, iv)
			}
		}
		return FromObject(o)
	default:
		return Null
	}
}

// EncodeStruct projects src (a struct or map) through mapstructure into
// native form, then builds a Value tree from it — the encode-side
// counterpart of Bind, used by handlers building a reply payload from a
// typed Go struct.
func EncodeStruct(src any) (Value, error) {
	var native map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &native,
		TagName: "varlink",
	})
	if err != nil {
		return Value{}, verror.Panic.Errorf("building mapstructure decoder: %v", err)
	}
	if err := dec.Decode(src); err != nil {
		return Value{}, verror.TypeMismatch.Errorf("encoding %T: %v", src, err)
	}
	return FromNative(native), nil
}

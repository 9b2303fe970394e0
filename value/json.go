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
	"github.com/sabouaram/govarlink/scanner"
	"github.com/sabouaram/govarlink/verror"
)

// MaxDepth bounds array/object nesting during Decode. The C reference
// implementation bounds recursion implicitly through its call stack
// (original_source/lib/array.c, lib/object.c); Go's stack guard page would
// otherwise surface a crash instead of a typed error, so Decode enforces
// this explicitly (spec_full supplementary robustness feature #5).
const MaxDepth = 256

// Decode parses strict JSON text into a Value (spec §4.3): trailing commas
// are forbidden, comments are forbidden, numbers follow ECMA-404, and
// strings follow the scanner's escape handling. Object decoding drops
// fields whose value is null. Arrays and objects produced by Decode are
// frozen (write-protected; spec §3, §9).
func Decode(src string) (Value, error) {
	s := scanner.NewPlain(src)
	v, err := decodeValue(s, 0)
	if err != nil {
		return Value{}, err
	}
	if s.Peek() != 0 {
		return Value{}, verror.InvalidJson.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(s *scanner.Scanner, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, verror.InvalidJson.Errorf("maximum nesting depth %d exceeded", MaxDepth)
	}
	switch c := s.Peek(); {
	case c == '{':
		return decodeObject(s, depth)
	case c == '[':
		return decodeArray(s, depth)
	case c == '"':
		str, ok := s.ExpectString()
		if !ok {
			return Value{}, s.Err()
		}
		return String(str), nil
	case c == 't':
		if !s.ReadKeyword("true") {
			return Value{}, verror.InvalidJson.Errorf("invalid literal")
		}
		return Bool(true), nil
	case c == 'f':
		if !s.ReadKeyword("false") {
			return Value{}, verror.InvalidJson.Errorf("invalid literal")
		}
		return Bool(false), nil
	case c == 'n':
		if !s.ReadKeyword("null") {
			return Value{}, verror.InvalidJson.Errorf("invalid literal")
		}
		return Null, nil
	case c == '-' || (c >= '0' && c <= '9'):
		n, ok := s.ReadNumber()
		if !ok {
			return Value{}, s.Err()
		}
		if n.IsFloat {
			return Float(n.Float), nil
		}
		return Int(n.Int), nil
	default:
		return Value{}, verror.InvalidJson.Errorf("unexpected character in JSON input")
	}
}

func decodeArray(s *scanner.Scanner, depth int) (Value, error) {
	if !s.ExpectOperator('[') {
		return Value{}, s.Err()
	}
	arr := NewArray()
	if s.Peek() == ']' {
		_ = s.ExpectOperator(']')
		arr.Freeze()
		return FromArray(arr), nil
	}
	for {
		elem, err := decodeValue(s, depth+1)
		if err != nil {
			return Value{}, err
		}
		if err := arr.Append(elem); err != nil {
			return Value{}, err
		}
		if s.Peek() == ',' {
			_ = s.ExpectOperator(',')
			if s.Peek() == ']' {
				return Value{}, verror.InvalidJson.Errorf("trailing comma in array")
			}
			continue
		}
		break
	}
	if !s.ExpectOperator(']') {
		return Value{}, s.Err()
	}
	arr.Freeze()
	return FromArray(arr), nil
}

func decodeObject(s *scanner.Scanner, depth int) (Value, error) {
	if !s.ExpectOperator('{') {
		return Value{}, s.Err()
	}
	obj := NewObject()
	if s.Peek() == '}' {
		_ = s.ExpectOperator('}')
		obj.Freeze()
		return FromObject(obj), nil
	}
	for {
		key, ok := s.ExpectString()
		if !ok {
			return Value{}, s.Err()
		}
		if !s.ExpectOperator(':') {
			return Value{}, s.Err()
		}
		val, err := decodeValue(s, depth+1)
		if err != nil {
			return Value{}, err
		}
		// JSON null fields disappear on parse (spec §3, §4.3).
		if !val.IsNull() {
			if err := obj.Set(key, val); err != nil {
				return Value{}, err
			}
		}
		if s.Peek() == ',' {
			_ = s.ExpectOperator(',')
			if s.Peek() == '}' {
				return Value{}, verror.InvalidJson.Errorf("trailing comma in object")
			}
			continue
		}
		break
	}
	if !s.ExpectOperator('}') {
		return Value{}, s.Err()
	}
	obj.Freeze()
	return FromObject(obj), nil
}

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

// Package message packs and unpacks the Varlink call and reply envelopes
// (spec §4.8) to and from package value's Value, and frames them through
// package stream.
package message

import (
	"github.com/sabouaram/govarlink/value"
	"github.com/sabouaram/govarlink/verror"
)

// CallFlags are the flags a caller attaches to a call envelope.
type CallFlags uint8

const (
	// More requests a streaming reply (spec §4.8 "call-side MORE = 1").
	More CallFlags = 1 << iota
	// Oneway requests no reply at all (spec §4.8 "ONEWAY = 2").
	Oneway
)

// ReplyFlags are the flags a callee attaches to a reply envelope.
type ReplyFlags uint8

const (
	// Continues marks a non-terminal reply in a streaming sequence (spec
	// §4.8 "reply-side CONTINUES = 1").
	Continues ReplyFlags = 1 << iota
)

// Call is the unpacked form of a call envelope (spec §4.8).
type Call struct {
	Method     string
	Parameters value.Value // Object, or Null if absent
	Flags      CallFlags
}

// Reply is the unpacked form of a reply envelope (spec §4.8).
type Reply struct {
	Error      string // empty means success
	Parameters value.Value
	Flags      ReplyFlags
}

// PackCall encodes a call into its wire JSON form.
func PackCall(c Call) ([]byte, error) {
	if c.Flags&More != 0 && c.Flags&Oneway != 0 {
		return nil, verror.InvalidCall.Error()
	}

	obj := value.NewObject()
	if err := obj.Set("method", value.String(c.Method)); err != nil {
		return nil, err
	}
	if c.Parameters.Kind() == value.KindObject {
		if err := obj.Set("parameters", c.Parameters); err != nil {
			return nil, err
		}
	}
	if c.Flags&More != 0 {
		if err := obj.Set("more", value.Bool(true)); err != nil {
			return nil, err
		}
	}
	if c.Flags&Oneway != 0 {
		if err := obj.Set("oneway", value.Bool(true)); err != nil {
			return nil, err
		}
	}

	return []byte(value.Encode(value.FromObject(obj))), nil
}

// UnpackCall decodes a call envelope from its wire JSON form.
func UnpackCall(frame []byte) (Call, error) {
	v, err := value.Decode(string(frame))
	if err != nil {
		return Call{}, verror.InvalidMessage.Errorf("call envelope: %v", err)
	}
	obj, ok := v.Object()
	if !ok {
		return Call{}, verror.InvalidMessage.Errorf("call envelope must be a JSON object")
	}

	methodV, ok := obj.Get("method")
	method, isStr := methodV.String()
	if !ok || !isStr {
		return Call{}, verror.InvalidMessage.Errorf("call envelope missing string \"method\"")
	}

	c := Call{Method: method, Parameters: value.Null}
	if params, ok := obj.Get("parameters"); ok {
		if params.Kind() != value.KindObject {
			return Call{}, verror.InvalidMessage.Errorf("call \"parameters\" must be an object")
		}
		c.Parameters = params
	}
	if more, ok := obj.Get("more"); ok {
		if b, isBool := more.Bool(); isBool && b {
			c.Flags |= More
		}
	}
	if oneway, ok := obj.Get("oneway"); ok {
		if b, isBool := oneway.Bool(); isBool && b {
			c.Flags |= Oneway
		}
	}
	if c.Flags&More != 0 && c.Flags&Oneway != 0 {
		return Call{}, verror.InvalidCall.Error()
	}
	return c, nil
}

// PackReply encodes a reply into its wire JSON form.
func PackReply(r Reply) ([]byte, error) {
	obj := value.NewObject()
	if r.Error != "" {
		if err := obj.Set("error", value.String(r.Error)); err != nil {
			return nil, err
		}
	}
	if r.Parameters.Kind() == value.KindObject {
		if err := obj.Set("parameters", r.Parameters); err != nil {
			return nil, err
		}
	}
	if r.Flags&Continues != 0 {
		if err := obj.Set("continues", value.Bool(true)); err != nil {
			return nil, err
		}
	}

	return []byte(value.Encode(value.FromObject(obj))), nil
}

// UnpackReply decodes a reply envelope from its wire JSON form.
func UnpackReply(frame []byte) (Reply, error) {
	v, err := value.Decode(string(frame))
	if err != nil {
		return Reply{}, verror.InvalidMessage.Errorf("reply envelope: %v", err)
	}
	obj, ok := v.Object()
	if !ok {
		return Reply{}, verror.InvalidMessage.Errorf("reply envelope must be a JSON object")
	}

	r := Reply{Parameters: value.Null}
	if errName, ok := obj.Get("error"); ok {
		name, isStr := errName.String()
		if !isStr {
			return Reply{}, verror.InvalidMessage.Errorf("reply \"error\" must be a string")
		}
		r.Error = name
	}
	if params, ok := obj.Get("parameters"); ok {
		if params.Kind() != value.KindObject {
			return Reply{}, verror.InvalidMessage.Errorf("reply \"parameters\" must be an object")
		}
		r.Parameters = params
	}
	if cont, ok := obj.Get("continues"); ok {
		if b, isBool := cont.Bool(); isBool && b {
			r.Flags |= Continues
		}
	}
	return r, nil
}

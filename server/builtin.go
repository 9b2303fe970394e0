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

package server

import (
	"github.com/sabouaram/govarlink/idl"
	"github.com/sabouaram/govarlink/value"
)

// BuiltinInterfaceName is the interface every Service serves automatically
// (spec §4.9 "Built-in interface org.varlink.service", spec_full §4).
const BuiltinInterfaceName = "org.varlink.service"

// buildBuiltinInterface constructs the org.varlink.service IDL AST
// (spec_full §4), used both for registration and for
// GetInterfaceDescription's pretty-printed output.
func buildBuiltinInterface() *idl.Interface {
	i, err := idl.NewInterface(BuiltinInterfaceName, "")
	if err != nil {
		panic(err) // the literal name above is always valid
	}

	getInfoOut, _ := idl.ObjectOf([]idl.Field{
		{Name: "vendor", Type: idl.String()},
		{Name: "product", Type: idl.String()},
		{Name: "version", Type: idl.String()},
		{Name: "url", Type: idl.String()},
		{Name: "interfaces", Type: idl.ArrayOf(idl.String())},
	})
	emptyIn, _ := idl.ObjectOf(nil)
	_ = i.AddMember(idl.Member{
		Kind: idl.MemberMethod,
		Name: "GetInfo",
		In:   emptyIn,
		Out:  getInfoOut,
	})

	descIn, _ := idl.ObjectOf([]idl.Field{{Name: "interface", Type: idl.String()}})
	descOut, _ := idl.ObjectOf([]idl.Field{{Name: "description", Type: idl.String()}})
	_ = i.AddMember(idl.Member{
		Kind: idl.MemberMethod,
		Name: "GetInterfaceDescription",
		In:   descIn,
		Out:  descOut,
	})

	ifaceNotFound, _ := idl.ObjectOf([]idl.Field{{Name: "interface", Type: idl.String()}})
	_ = i.AddMember(idl.Member{Kind: idl.MemberError, Name: "InterfaceNotFound", ErrType: ifaceNotFound})

	methodNotFound, _ := idl.ObjectOf([]idl.Field{{Name: "method", Type: idl.String()}})
	_ = i.AddMember(idl.Member{Kind: idl.MemberError, Name: "MethodNotFound", ErrType: methodNotFound})

	methodNotImplemented, _ := idl.ObjectOf([]idl.Field{{Name: "method", Type: idl.String()}})
	_ = i.AddMember(idl.Member{Kind: idl.MemberError, Name: "MethodNotImplemented", ErrType: methodNotImplemented})

	invalidParameter, _ := idl.ObjectOf([]idl.Field{{Name: "parameter", Type: idl.String()}})
	_ = i.AddMember(idl.Member{Kind: idl.MemberError, Name: "InvalidParameter", ErrType: invalidParameter})

	return i
}

// registerBuiltinHandlers wires the two org.varlink.service methods to the
// service's own identity and interface table.
func (s *Service) registerBuiltinHandlers() {
	s.handlers[BuiltinInterfaceName+".GetInfo"] = func(c *Call) error {
		out := value.NewObject()
		_ = out.Set("vendor", value.String(s.opts.Vendor))
		_ = out.Set("product", value.String(s.opts.Product))
		_ = out.Set("version", value.String(s.opts.Version))
		_ = out.Set("url", value.String(s.opts.URL))

		arr := value.NewArray()
		for _, name := range s.interfaceNames() {
			_ = arr.Append(value.String(name))
		}
		_ = out.Set("interfaces", value.FromArray(arr))

		return c.Reply(value.FromObject(out))
	}

	s.handlers[BuiltinInterfaceName+".GetInterfaceDescription"] = func(c *Call) error {
		params, _ := c.Params.Object()
		var ifaceName string
		if params != nil {
			if v, ok := params.Get("interface"); ok {
				ifaceName, _ = v.String()
			}
		}
		iface, ok := s.lookupInterface(ifaceName)
		if !ok {
			return c.errServiceError("InterfaceNotFound", "interface", ifaceName)
		}

		out := value.NewObject()
		_ = out.Set("description", value.String(idl.Print(iface)))
		return c.Reply(value.FromObject(out))
	}
}

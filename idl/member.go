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

// MemberKind tags the three possible member shapes (spec §3 "Interface").
type MemberKind int

const (
	MemberTypeAlias MemberKind = iota
	MemberMethod
	MemberError
)

// Member is one named entry in an interface: a type-alias binding, a
// method, or an error (spec §3, §4.4 grammar "Member").
type Member struct {
	Kind MemberKind
	Name string
	Doc  string

	// AliasType holds the bound type for MemberTypeAlias.
	AliasType *Type

	// In and Out hold the input/output object types for MemberMethod.
	In  *Type
	Out *Type

	// ErrType holds the optional payload object type for MemberError
	// (nil means the error carries no parameters).
	ErrType *Type
}

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

// Package avltree implements a generic, self-balancing ordered map keyed by
// any ordered comparator. It backs the interface member table, object field
// tables and the server's connection table (spec §4.1), replacing the C
// reference implementation's opaque-pointer-keyed tree with a type-safe
// generic one (spec §9: "raw pointer-tagged opaque keys in AVL -> generic
// ordered map over a comparator").
package avltree

import "errors"

// Compare orders two keys: negative if a < b, zero if equal, positive if
// a > b. Ties are the comparator's responsibility (spec §4.1).
type Compare[K any] func(a, b K) int

// ErrKeyExists and ErrUnknownKey mirror the C reference implementation's
// AVL_ERROR_KEY_EXISTS / AVL_ERROR_UNKNOWN_KEY (original_source/lib/avltree.h).
var (
	ErrKeyExists   = errors.New("avltree: key already exists")
	ErrUnknownKey  = errors.New("avltree: unknown key")
)

// Tree is an ordered, self-balancing map from K to V.
type Tree[K any, V any] interface {
	// Insert adds key/value. Returns ErrKeyExists if key is already
	// present.
	Insert(key K, value V) error

	// Remove deletes key. Returns ErrUnknownKey if absent.
	Remove(key K) error

	// Find returns the value stored at key and true, or the zero value and
	// false if absent.
	Find(key K) (V, bool)

	// First returns the smallest key's node, or nil if the tree is empty.
	First() Node[K, V]

	// Last returns the largest key's node, or nil if the tree is empty.
	Last() Node[K, V]

	// Count returns the number of elements currently stored.
	Count() int

	// Height returns the tree height. AVL rebalancing keeps the heights of
	// every node's two subtrees within one of each other, which bounds the
	// height by about 1.44*log2(n); the tighter floor(log2(n)) + 1 bound
	// does not hold for every tree (a 7-node AVL tree can have height 4).
	Height() int

	// Walk visits every node in key order, stopping early if fn returns
	// false.
	Walk(fn func(key K, value V) bool)

	// Destroy removes every node, calling fn (if non-nil) on each value
	// first, the Go analogue of the C tree's finalizer callback.
	Destroy(fn func(value V))
}

// Node is a single tree element with ordered-successor navigation.
type Node[K any, V any] interface {
	Key() K
	Value() V

	// Next returns the next-largest node, or nil if this is the last.
	Next() Node[K, V]

	// Previous returns the next-smallest node, or nil if this is the
	// first.
	Previous() Node[K, V]
}

// New creates an empty Tree ordered by cmp.
func New[K any, V any](cmp Compare[K]) Tree[K, V] {
	return &tree[K, V]{cmp: cmp}
}

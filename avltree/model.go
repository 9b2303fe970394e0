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

package avltree

// node is a single AVL node.
type node[K any, V any] struct {
	key    K
	value  V
	left   *node[K, V]
	right  *node[K, V]
	parent *node[K, V]
	height int
}

func (n *node[K, V]) Key() K   { return n.key }
func (n *node[K, V]) Value() V { return n.value }

func (n *node[K, V]) Next() Node[K, V] {
	if n == nil {
		return nil
	}
	if n.right != nil {
		return leftmost(n.right)
	}
	cur, p := n, n.parent
	for p != nil && cur == p.right {
		cur, p = p, p.parent
	}
	return wrap(p)
}

func (n *node[K, V]) Previous() Node[K, V] {
	if n == nil {
		return nil
	}
	if n.left != nil {
		return rightmost(n.left)
	}
	cur, p := n, n.parent
	for p != nil && cur == p.left {
		cur, p = p, p.parent
	}
	return wrap(p)
}

func wrap[K any, V any](n *node[K, V]) Node[K, V] {
	if n == nil {
		return nil
	}
	return n
}

func leftmost[K any, V any](n *node[K, V]) *node[K, V] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func rightmost[K any, V any](n *node[K, V]) *node[K, V] {
	for n.right != nil {
		n = n.right
	}
	return n
}

type tree[K any, V any] struct {
	cmp   Compare[K]
	root  *node[K, V]
	count int
}

func height[K any, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor[K any, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func updateHeight[K any, V any](n *node[K, V]) {
	l, r := height(n.left), height(n.right)
	if l > r {
		n.height = l + 1
	} else {
		n.height = r + 1
	}
}

func (t *tree[K, V]) rotateLeft(n *node[K, V]) *node[K, V] {
	r := n.right
	n.right = r.left
	if r.left != nil {
		r.left.parent = n
	}
	r.parent = n.parent
	t.replaceChild(n.parent, n, r)
	r.left = n
	n.parent = r
	updateHeight(n)
	updateHeight(r)
	return r
}

func (t *tree[K, V]) rotateRight(n *node[K, V]) *node[K, V] {
	l := n.left
	n.left = l.right
	if l.right != nil {
		l.right.parent = n
	}
	l.parent = n.parent
	t.replaceChild(n.parent, n, l)
	l.right = n
	n.parent = l
	updateHeight(n)
	updateHeight(l)
	return l
}

func (t *tree[K, V]) replaceChild(parent, old, replacement *node[K, V]) {
	if parent == nil {
		t.root = replacement
		return
	}
	if parent.left == old {
		parent.left = replacement
	} else {
		parent.right = replacement
	}
}

// rebalance walks from n up to the root, fixing heights and rotating as
// needed. Returns nothing: t.root is updated in place via replaceChild.
func (t *tree[K, V]) rebalance(n *node[K, V]) {
	for n != nil {
		updateHeight(n)
		bf := balanceFactor(n)

		if bf > 1 {
			if balanceFactor(n.left) < 0 {
				t.rotateLeft(n.left)
			}
			n = t.rotateRight(n)
		} else if bf < -1 {
			if balanceFactor(n.right) > 0 {
				t.rotateRight(n.right)
			}
			n = t.rotateLeft(n)
		}

		n = n.parent
	}
}

func (t *tree[K, V]) Insert(key K, value V) error {
	if t.root == nil {
		t.root = &node[K, V]{key: key, value: value, height: 1}
		t.count++
		return nil
	}

	cur := t.root
	for {
		c := t.cmp(key, cur.key)
		switch {
		case c == 0:
			return ErrKeyExists
		case c < 0:
			if cur.left == nil {
				cur.left = &node[K, V]{key: key, value: value, height: 1, parent: cur}
				t.count++
				t.rebalance(cur)
				return nil
			}
			cur = cur.left
		default:
			if cur.right == nil {
				cur.right = &node[K, V]{key: key, value: value, height: 1, parent: cur}
				t.count++
				t.rebalance(cur)
				return nil
			}
			cur = cur.right
		}
	}
}

func (t *tree[K, V]) findNode(key K) *node[K, V] {
	cur := t.root
	for cur != nil {
		c := t.cmp(key, cur.key)
		switch {
		case c == 0:
			return cur
		case c < 0:
			cur = cur.left
		default:
			cur = cur.right
		}
	}
	return nil
}

func (t *tree[K, V]) Find(key K) (V, bool) {
	if n := t.findNode(key); n != nil {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Remove deletes the node at key. When the node has two children, its
// key/value are overwritten with its in-order successor's, and the
// (single-child-or-leaf) successor node is the one actually unlinked. Any
// Node[K,V] handle held across a Remove call is therefore not guaranteed to
// keep pointing at the same key once a sibling key is removed, matching the
// C reference's avltree semantics, which make no such guarantee either.
func (t *tree[K, V]) Remove(key K) error {
	n := t.findNode(key)
	if n == nil {
		return ErrUnknownKey
	}

	if n.left != nil && n.right != nil {
		succ := leftmost(n.right)
		n.key, n.value = succ.key, succ.value
		n = succ
	}

	// n now has at most one child.
	child := n.left
	if child == nil {
		child = n.right
	}

	parent := n.parent
	t.replaceChild(parent, n, child)
	if child != nil {
		child.parent = parent
	}

	t.count--
	if parent != nil {
		t.rebalance(parent)
	} else if child != nil {
		t.rebalance(child)
	}
	return nil
}

func (t *tree[K, V]) First() Node[K, V] {
	if t.root == nil {
		return nil
	}
	return leftmost(t.root)
}

func (t *tree[K, V]) Last() Node[K, V] {
	if t.root == nil {
		return nil
	}
	return rightmost(t.root)
}

func (t *tree[K, V]) Count() int { return t.count }

func (t *tree[K, V]) Height() int { return height(t.root) }

func (t *tree[K, V]) Walk(fn func(key K, value V) bool) {
	for n := t.First(); n != nil; n = n.Next() {
		if !fn(n.Key(), n.Value()) {
			return
		}
	}
}

func (t *tree[K, V]) Destroy(fn func(value V)) {
	if fn != nil {
		t.Walk(func(_ K, v V) bool {
			fn(v)
			return true
		})
	}
	t.root = nil
	t.count = 0
}

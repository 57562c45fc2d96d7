// Package jsontree provides path-tracked navigation and querying of decoded
// JSON values (the map[string]any / []any shapes produced by encoding/json).
package jsontree

import (
	"fmt"
	"slices"
)

// Cursor points at a node inside a decoded JSON tree and remembers the path
// from the root to that node. Cursors are immutable: navigation returns new
// cursors.
type Cursor struct {
	node any
	path []any
}

// New creates a Cursor positioned at the root of node.
func New(node any) *Cursor {
	return &Cursor{node: node}
}

// Node returns the raw value the cursor points at.
func (c *Cursor) Node() any {
	return c.node
}

// Path returns the keys and indices leading from the root to this node.
func (c *Cursor) Path() []any {
	return c.path
}

func (c *Cursor) child(step any, node any) *Cursor {
	return &Cursor{node: node, path: append(slices.Clone(c.path), step)}
}

// Key descends into a child of an object node by key.
func (c *Cursor) Key(name string) (*Cursor, error) {
	obj, ok := c.node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("current node is not a JSON object")
	}
	value, ok := obj[name]
	if !ok {
		return nil, fmt.Errorf("key '%s' not found in current node", name)
	}
	return c.child(name, value), nil
}

// Index descends into an element of an array node by index.
func (c *Cursor) Index(i int) (*Cursor, error) {
	arr, ok := c.node.([]any)
	if !ok {
		return nil, fmt.Errorf("current node is not a JSON array")
	}
	if i < 0 || i >= len(arr) {
		return nil, fmt.Errorf("array index %d out of range", i)
	}
	return c.child(i, arr[i]), nil
}

// Value returns the terminal value of the current node. It errors when the
// node is an object or an array.
func (c *Cursor) Value() (any, error) {
	if c.OnObject() || c.OnArray() {
		return nil, fmt.Errorf("current node is not a terminal JSON value")
	}
	return c.node, nil
}

// OnObject reports whether the current node is a JSON object.
func (c *Cursor) OnObject() bool {
	_, ok := c.node.(map[string]any)
	return ok
}

// OnArray reports whether the current node is a JSON array.
func (c *Cursor) OnArray() bool {
	_, ok := c.node.([]any)
	return ok
}

// OnValue reports whether the current node is a terminal value.
func (c *Cursor) OnValue() bool {
	return !c.OnObject() && !c.OnArray()
}

// sortedKeys returns an object's keys in lexical order, so traversal does
// not depend on map iteration order.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Search walks the tree depth-first and returns a cursor to the first node
// for which predicate returns true, or nil when nothing matches. The node the
// search starts on is tested as well. Children of object nodes are visited in
// lexical key order.
func (c *Cursor) Search(predicate func(*Cursor) bool) *Cursor {
	if predicate(c) {
		return c
	}

	switch node := c.node.(type) {
	case map[string]any:
		for _, key := range sortedKeys(node) {
			if result := c.child(key, node[key]).Search(predicate); result != nil {
				return result
			}
		}
	case []any:
		for i, item := range node {
			if result := c.child(i, item).Search(predicate); result != nil {
				return result
			}
		}
	}

	return nil
}

// Visit recursively visits every node in the tree. The handler is called with
// entering=true before a container's children and entering=false after them;
// terminal nodes only get the entering call. Returning false from an entering
// call prunes the node: its children are not visited and the exit call is
// skipped.
func (c *Cursor) Visit(handler func(c *Cursor, entering bool) bool) {
	if !handler(c, true) {
		return
	}

	descended := false
	switch node := c.node.(type) {
	case map[string]any:
		descended = true
		for _, key := range sortedKeys(node) {
			c.child(key, node[key]).Visit(handler)
		}
	case []any:
		descended = true
		for i, item := range node {
			c.child(i, item).Visit(handler)
		}
	}

	if descended {
		handler(c, false)
	}
}

// String returns a developer-friendly representation of the cursor.
func (c *Cursor) String() string {
	return fmt.Sprintf("<Cursor node=%v path=%v>", c.node, c.path)
}

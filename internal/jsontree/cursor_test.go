package jsontree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var node any
	require.NoError(t, json.Unmarshal([]byte(raw), &node))
	return node
}

const testDocument = `[{
	"user": {
		"name": "Alice",
		"age": 30,
		"emails": ["alice@example.com", "a.smith@example.com"]
	},
	"active": true
}]`

// TestKeyAndIndex tests descending through objects and arrays with path tracking
func TestKeyAndIndex(t *testing.T) {
	cursor := New(decode(t, testDocument))

	first, err := cursor.Index(0)
	require.NoError(t, err)

	user, err := first.Key("user")
	require.NoError(t, err)

	name, err := user.Key("name")
	require.NoError(t, err)

	value, err := name.Value()
	require.NoError(t, err)
	assert.Equal(t, "Alice", value)
	assert.Equal(t, []any{0, "user", "name"}, name.Path())

	emails, err := user.Key("emails")
	require.NoError(t, err)

	firstEmail, err := emails.Index(0)
	require.NoError(t, err)

	value, err = firstEmail.Value()
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", value)
	assert.Equal(t, []any{0, "user", "emails", 0}, firstEmail.Path())
}

// TestKey_Errors tests key access on non-objects and missing keys
func TestKey_Errors(t *testing.T) {
	cursor := New(decode(t, testDocument))

	_, err := cursor.Key("user")
	assert.ErrorContains(t, err, "not a JSON object")

	first, err := cursor.Index(0)
	require.NoError(t, err)

	_, err = first.Key("nope")
	assert.ErrorContains(t, err, "not found")
}

// TestIndex_Errors tests index access on non-arrays and out-of-range indices
func TestIndex_Errors(t *testing.T) {
	cursor := New(decode(t, testDocument))

	_, err := cursor.Index(5)
	assert.ErrorContains(t, err, "out of range")

	first, err := cursor.Index(0)
	require.NoError(t, err)

	_, err = first.Index(0)
	assert.ErrorContains(t, err, "not a JSON array")
}

// TestValue_OnContainer tests that Value refuses containers
func TestValue_OnContainer(t *testing.T) {
	cursor := New(decode(t, testDocument))

	_, err := cursor.Value()
	assert.Error(t, err)
}

// TestNodeKindPredicates tests OnObject, OnArray and OnValue
func TestNodeKindPredicates(t *testing.T) {
	cursor := New(decode(t, testDocument))
	assert.True(t, cursor.OnArray())
	assert.False(t, cursor.OnObject())
	assert.False(t, cursor.OnValue())

	first, err := cursor.Index(0)
	require.NoError(t, err)
	assert.True(t, first.OnObject())

	active, err := first.Key("active")
	require.NoError(t, err)
	assert.True(t, active.OnValue())
}

// TestSearch tests a depth-first predicate search
func TestSearch(t *testing.T) {
	cursor := New(decode(t, testDocument))

	// JSON numbers decode as float64
	found := cursor.Search(func(c *Cursor) bool {
		value, err := c.Value()
		return err == nil && value == float64(30)
	})
	require.NotNil(t, found)
	assert.Equal(t, []any{0, "user", "age"}, found.Path())

	alice := cursor.Search(func(c *Cursor) bool {
		if !c.OnObject() {
			return false
		}
		obj := c.Node().(map[string]any)
		return obj["name"] == "Alice"
	})
	require.NotNil(t, alice)
	assert.Equal(t, []any{0, "user"}, alice.Path())
}

// TestSearch_LexicalKeyOrder tests that sibling object keys are walked in a
// fixed order, so the first match does not depend on map iteration
func TestSearch_LexicalKeyOrder(t *testing.T) {
	cursor := New(decode(t, `{"zeta": {"id": 1}, "alpha": {"id": 1}, "mid": {"id": 1}}`))

	for i := 0; i < 20; i++ {
		found := cursor.Search(func(c *Cursor) bool {
			if !c.OnObject() {
				return false
			}
			_, ok := c.Node().(map[string]any)["id"]
			return ok
		})
		require.NotNil(t, found)
		assert.Equal(t, []any{"alpha"}, found.Path())
	}
}

// TestVisit_LexicalKeyOrder tests that Visit enters object children in key order
func TestVisit_LexicalKeyOrder(t *testing.T) {
	cursor := New(decode(t, `{"b": 2, "c": 3, "a": 1}`))

	var order []any
	cursor.Visit(func(c *Cursor, entering bool) bool {
		if entering && c.OnValue() {
			order = append(order, c.Node())
		}
		return true
	})
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, order)
}

// TestSearch_NoMatch tests that Search returns nil when nothing matches
func TestSearch_NoMatch(t *testing.T) {
	cursor := New(decode(t, testDocument))

	found := cursor.Search(func(c *Cursor) bool { return false })
	assert.Nil(t, found)
}

// TestVisit tests entry/exit callbacks over all nodes
func TestVisit(t *testing.T) {
	cursor := New(decode(t, `{"a": [1, 2], "b": 3}`))

	var enters, exits, values int
	cursor.Visit(func(c *Cursor, entering bool) bool {
		if !entering {
			exits++
			return true
		}
		enters++
		if c.OnValue() {
			values++
		}
		return true
	})

	// Nodes: root object, array "a", values 1, 2 and 3
	assert.Equal(t, 5, enters)
	// Containers only: root object and the array
	assert.Equal(t, 2, exits)
	assert.Equal(t, 3, values)
}

// TestVisit_Prune tests that returning false skips children and the exit call
func TestVisit_Prune(t *testing.T) {
	cursor := New(decode(t, `{"skip": {"inner": 1}, "keep": 2}`))

	var visited []any
	cursor.Visit(func(c *Cursor, entering bool) bool {
		if !entering {
			return true
		}
		path := c.Path()
		if len(path) > 0 && path[0] == "skip" {
			return false
		}
		visited = append(visited, c.Node())
		return true
	})

	// The pruned subtree's inner value must not appear
	assert.NotContains(t, visited, float64(1))
	assert.Contains(t, visited, float64(2))
}

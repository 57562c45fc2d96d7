package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMustFprintf tests that MustFprintf writes formatted output
func TestMustFprintf(t *testing.T) {
	var sb strings.Builder
	MustFprintf(&sb, "%s (%d)", "Website", 42)
	assert.Equal(t, "Website (42)", sb.String())
}

// TestJoinMapKeys tests joining map keys for error messages
func TestJoinMapKeys(t *testing.T) {
	m := map[string]struct{}{
		"active": {},
		"none":   {},
		"safety": {},
	}

	joined := JoinMapKeys(m)
	parts := strings.Split(joined, ", ")
	require.Len(t, parts, 3)
	assert.ElementsMatch(t, []string{"active", "none", "safety"}, parts)
}

// TestJoinMapKeys_Empty tests joining an empty map
func TestJoinMapKeys_Empty(t *testing.T) {
	assert.Equal(t, "", JoinMapKeys(map[string]struct{}{}))
}

package core

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRestrictToOwner_Unix tests that the Unix path chmods the file to 0600
func TestRestrictToOwner_Unix(t *testing.T) {
	if runtime.GOOS == windowsOS {
		t.Skip("Skipping chmod test on Windows")
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "credentials.json")
	// #nosec G306 -- the test asserts that RestrictToOwner tightens these permissions
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	err := RestrictToOwner(context.Background(), path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// TestRestrictToOwner_MissingFile tests the error when the file does not exist
func TestRestrictToOwner_MissingFile(t *testing.T) {
	if runtime.GOOS == windowsOS {
		t.Skip("Skipping chmod test on Windows")
	}

	err := RestrictToOwner(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestRestrictToOwner_WindowsACLs tests the icacls command sequence through a mock runner
func TestRestrictToOwner_WindowsACLs(t *testing.T) {
	mock := &MockCommandRunner{}
	original := DefaultCommandRunner()
	SetCommandRunner(mock)
	defer SetCommandRunner(original)

	err := restrictToOwner(context.Background(), GOOSWindows, `C:\Users\qa\testmo-overview.json`)
	require.NoError(t, err)

	require.Len(t, mock.Calls, 3)
	assert.Equal(t, "icacls", mock.Calls[0][0])
	assert.Contains(t, mock.Calls[0], "/inheritance:r")
	assert.Contains(t, mock.Calls[1], "/grant:r")
	assert.Contains(t, mock.Calls[2], "/remove")
	assert.Contains(t, mock.Calls[2], "Everyone")
}

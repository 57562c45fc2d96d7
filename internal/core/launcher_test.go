package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenArgs tests the per-platform command lines for opening files
func TestOpenArgs(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		path     string
		expected []string
	}{
		{"windows uses start", GOOSWindows, `C:\Files\Report.xlsx`, []string{"cmd", "/c", "start", "", `C:\Files\Report.xlsx`}},
		{"darwin uses open", GOOSDarwin, "/tmp/Report.xlsx", []string{"open", "/tmp/Report.xlsx"}},
		{"linux uses xdg-open", GOOSLinux, "/tmp/Report.xlsx", []string{"xdg-open", "/tmp/Report.xlsx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := openArgs(tt.goos, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, argv)
		})
	}
}

// TestOpenArgs_UnsupportedPlatform tests the error for unknown platforms
func TestOpenArgs_UnsupportedPlatform(t *testing.T) {
	argv, err := openArgs("plan9", "/tmp/Report.xlsx")
	assert.Error(t, err)
	assert.Nil(t, argv)
	assert.Contains(t, err.Error(), "not supported")
}

// TestOpenWithDefaultApp_MockRunner tests that the launcher goes through the command runner
func TestOpenWithDefaultApp_MockRunner(t *testing.T) {
	mock := &MockCommandRunner{}
	original := DefaultCommandRunner()
	SetCommandRunner(mock)
	defer SetCommandRunner(original)

	err := OpenWithDefaultApp(context.Background(), "/tmp/Report.xlsx")
	require.NoError(t, err)

	require.Len(t, mock.Calls, 1)
	// Last argument is always the file being opened
	argv := mock.Calls[0]
	assert.Equal(t, "/tmp/Report.xlsx", argv[len(argv)-1])
}

// TestOpenWithDefaultApp_StartFailure tests that launcher failures surface as errors
func TestOpenWithDefaultApp_StartFailure(t *testing.T) {
	mock := &MockCommandRunner{StartErr: errors.New("no display")}
	original := DefaultCommandRunner()
	SetCommandRunner(mock)
	defer SetCommandRunner(original)

	err := OpenWithDefaultApp(context.Background(), "/tmp/Report.xlsx")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

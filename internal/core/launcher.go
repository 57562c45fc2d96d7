package core

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// openArgs returns the platform command line for opening a file with its
// default application.
func openArgs(goos, path string) ([]string, error) {
	switch goos {
	case GOOSWindows:
		// start is a cmd.exe builtin; the empty string fills the window-title slot
		return []string{"cmd", "/c", "start", "", path}, nil
	case GOOSDarwin:
		return []string{"open", path}, nil
	case GOOSLinux:
		return []string{"xdg-open", path}, nil
	default:
		return nil, fmt.Errorf("opening files is not supported on %s", goos)
	}
}

// OpenWithDefaultApp opens path with the platform's default application.
func OpenWithDefaultApp(ctx context.Context, path string) error {
	argv, err := openArgs(runtime.GOOS, path)
	if err != nil {
		return err
	}

	result, err := Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("failed to open %s: %s exited with %d: %s",
			path, argv[0], result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return nil
}

package core

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"
)

// RestrictToOwner reduces the permissions of path so that only the owning
// user can read or write it. Used for files holding credentials.
func RestrictToOwner(ctx context.Context, path string) error {
	return restrictToOwner(ctx, runtime.GOOS, path)
}

func restrictToOwner(ctx context.Context, goos, path string) error {
	if goos != GOOSWindows {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to restrict %s to owner: %w", path, err)
		}
		return nil
	}

	current, err := user.Current()
	if err != nil {
		return fmt.Errorf("failed to determine current user: %w", err)
	}

	// NTFS has no chmod equivalent: strip inherited ACLs, grant the owner
	// full control, then drop the broad built-in groups.
	steps := [][]string{
		{"icacls", path, "/inheritance:r"},
		{"icacls", path, "/grant:r", current.Username + ":F"},
		{"icacls", path, "/remove", "Users", "Everyone"},
	}

	for _, argv := range steps {
		result, runErr := Run(ctx, argv[0], argv[1:]...)
		if runErr != nil {
			return fmt.Errorf("failed to run %s: %w", strings.Join(argv, " "), runErr)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%s exited with %d: %s",
				strings.Join(argv, " "), result.ExitCode, strings.TrimSpace(result.Stderr))
		}
	}

	return nil
}

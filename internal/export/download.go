package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/core"
)

// pollInterval is the fallback poll cadence of the download watcher. The
// browser renames its temporary download file in place, which not every
// filesystem reports, so the watcher polls as well.
const pollInterval = time.Second

// DownloadTimeoutError is returned when no new CSV file appears in the
// download directory within the configured wait.
type DownloadTimeoutError struct {
	Dir     string
	Timeout time.Duration
}

func (e *DownloadTimeoutError) Error() string {
	return fmt.Sprintf("no CSV download appeared in '%s' within %s", e.Dir, e.Timeout)
}

// Interface guard for DownloadTimeoutError
var _ error = &DownloadTimeoutError{}

// WaitForDownload waits until a CSV file that was not present at call time
// appears in dir and returns its path. It reacts to filesystem notifications
// and polls at a fixed interval as a fallback.
func WaitForDownload(ctx context.Context, clock clockwork.Clock, dir string, timeout time.Duration) (string, error) {
	baseline, err := csvFiles(dir)
	if err != nil {
		return "", err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("failed to watch download directory: %w", err)
	}
	defer core.LogDeferredError(watcher.Close)
	if err := watcher.Add(dir); err != nil {
		return "", fmt.Errorf("failed to watch download directory: %w", err)
	}

	check := func() (string, bool, error) {
		current, listErr := csvFiles(dir)
		if listErr != nil {
			return "", false, listErr
		}
		for name := range current {
			if _, existed := baseline[name]; !existed {
				return filepath.Join(dir, name), true, nil
			}
		}
		return "", false, nil
	}

	// the download may already have landed between the baseline snapshot
	// and the watch setup
	if path, found, checkErr := check(); checkErr != nil || found {
		return path, checkErr
	}

	deadline := clock.After(timeout)
	ticker := clock.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", &DownloadTimeoutError{Dir: dir, Timeout: timeout}
		case event := <-watcher.Events:
			zap.L().Debug("Download directory changed", zap.String("event", event.String()))
			if path, found, checkErr := check(); checkErr != nil || found {
				return path, checkErr
			}
		case watchErr := <-watcher.Errors:
			zap.L().Debug("Download watcher error", zap.Error(watchErr))
		case <-ticker.Chan():
			if path, found, checkErr := check(); checkErr != nil || found {
				return path, checkErr
			}
		}
	}
}

// csvFiles returns the names of the CSV files currently in dir.
func csvFiles(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list download directory '%s': %w", dir, err)
	}

	files := map[string]struct{}{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files[entry.Name()] = struct{}{}
		}
	}
	return files, nil
}

// renameDownload moves a finished download to its final project-named path,
// replacing an earlier export of the same project.
func renameDownload(downloadPath, finalPath string) error {
	if _, err := os.Stat(finalPath); err == nil {
		if err := os.Remove(finalPath); err != nil {
			return fmt.Errorf("failed to replace earlier export '%s': %w", finalPath, err)
		}
	}
	if err := os.Rename(downloadPath, finalPath); err != nil {
		return fmt.Errorf("failed to move download to '%s': %w", finalPath, err)
	}
	return nil
}

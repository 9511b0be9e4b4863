package watcher

import "context"

// FileWatcher monitors a working tree for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced, sorted,
	// root-relative paths of changed files.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// GitWatcher monitors .git/HEAD for branch switches.
type GitWatcher interface {
	// Start begins watching, calling callback when the checked-out branch changes.
	Start(ctx context.Context, callback func(oldBranch, newBranch string)) error

	// Stop stops the watcher and cleans up resources.
	Stop() error
}

// Rebuilder regenerates output after the working tree changed.
type Rebuilder interface {
	// Rebuild runs one snapshot build. changed lists the paths that
	// triggered it and is empty after a branch switch.
	Rebuild(ctx context.Context, changed []string) error
}

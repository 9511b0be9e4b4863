package watcher

import (
	"context"
	"log"
	"sync"
)

// WatchCoordinator routes file changes and branch switches to a Rebuilder.
// File events arriving during a rebuild are held until it finishes.
type WatchCoordinator struct {
	git       GitWatcher // Optional
	files     FileWatcher
	rebuilder Rebuilder

	ctx context.Context
	mu  sync.Mutex // Serializes rebuilds
}

// NewWatchCoordinator creates a new watch coordinator. git may be nil when
// the root is not a git checkout.
func NewWatchCoordinator(git GitWatcher, files FileWatcher, rebuilder Rebuilder) *WatchCoordinator {
	return &WatchCoordinator{
		git:       git,
		files:     files,
		rebuilder: rebuilder,
	}
}

// Start begins coordinating watchers. Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx

	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}
	if c.git != nil {
		if err := c.git.Start(ctx, c.handleBranchSwitch); err != nil {
			c.cleanup()
			return err
		}
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops both watchers.
func (c *WatchCoordinator) cleanup() {
	if c.git != nil {
		if err := c.git.Stop(); err != nil {
			log.Printf("Warning: git watcher stop failed: %v", err)
		}
	}
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

func (c *WatchCoordinator) handleBranchSwitch(oldBranch, newBranch string) {
	log.Printf("Branch switch detected: %s → %s", oldBranch, newBranch)
	c.rebuild(nil)
}

func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}
	log.Printf("Processing %d file change(s)...", len(files))
	c.rebuild(files)
}

// rebuild pauses file events for the duration of one build. Resume runs
// outside the lock because it may deliver held events synchronously.
func (c *WatchCoordinator) rebuild(changed []string) {
	c.files.Pause()
	c.runLocked(changed)
	c.files.Resume()
}

func (c *WatchCoordinator) runLocked(changed []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if err := c.rebuilder.Rebuild(ctx, changed); err != nil {
		log.Printf("Error: rebuild failed: %v", err)
	}
}

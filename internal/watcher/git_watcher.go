package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// gitWatcher reports branch switches by watching HEAD.
type gitWatcher struct {
	gitDir   string
	headPath string
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopOnce sync.Once

	mu      sync.Mutex // Protects lastRef
	lastRef string
}

// NewGitWatcher creates a GitWatcher for the repository at root. Linked
// worktrees, where .git is a file pointing at the real git directory, are
// followed.
func NewGitWatcher(root string) (GitWatcher, error) {
	gitDir, err := resolveGitDir(root)
	if err != nil {
		return nil, err
	}
	headPath := filepath.Join(gitDir, "HEAD")

	ref, err := readHead(headPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read HEAD: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &gitWatcher{
		gitDir:   gitDir,
		headPath: headPath,
		watcher:  watcher,
		lastRef:  ref,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins monitoring HEAD. The git directory is watched rather than
// the file because git replaces HEAD on checkout.
func (gw *gitWatcher) Start(ctx context.Context, callback func(oldBranch, newBranch string)) error {
	if err := gw.watcher.Add(gw.gitDir); err != nil {
		return fmt.Errorf("failed to watch git directory: %w", err)
	}
	gw.started = true
	go gw.watch(ctx, callback)
	return nil
}

// Stop stops the watcher and cleans up resources.
func (gw *gitWatcher) Stop() error {
	var err error
	gw.stopOnce.Do(func() {
		close(gw.stopCh)
		if gw.started {
			<-gw.doneCh
		}
		err = gw.watcher.Close()
	})
	return err
}

func (gw *gitWatcher) watch(ctx context.Context, callback func(oldBranch, newBranch string)) {
	defer close(gw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-gw.stopCh:
			return

		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != gw.headPath || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			ref, err := readHead(gw.headPath)
			if err != nil {
				log.Printf("Warning: failed to read HEAD: %v", err)
				continue
			}

			gw.mu.Lock()
			old := gw.lastRef
			gw.lastRef = ref
			gw.mu.Unlock()

			if ref != old {
				gw.fire(callback, old, ref)
			}

		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Git watcher error: %v", err)
		}
	}
}

func (gw *gitWatcher) fire(callback func(oldBranch, newBranch string), old, ref string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: git watcher callback panic: %v", r)
		}
	}()
	callback(old, ref)
}

// resolveGitDir returns the git directory for root.
func resolveGitDir(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", fmt.Errorf("cannot access .git: %w", err)
	}
	if info.IsDir() {
		return dotGit, nil
	}

	content, err := os.ReadFile(dotGit)
	if err != nil {
		return "", fmt.Errorf("cannot read .git: %w", err)
	}
	line := strings.TrimSpace(string(content))
	if !strings.HasPrefix(line, "gitdir:") {
		return "", fmt.Errorf("unrecognized .git file: %q", line)
	}
	dir := strings.TrimSpace(strings.TrimPrefix(line, "gitdir:"))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return dir, nil
}

func readHead(headPath string) (string, error) {
	content, err := os.ReadFile(headPath)
	if err != nil {
		return "", err
	}
	return parseHead(content), nil
}

// parseHead returns the branch name for a symbolic HEAD, or "detached@"
// plus the abbreviated commit for a detached one.
func parseHead(content []byte) string {
	line := strings.TrimSpace(string(content))
	if ref, ok := strings.CutPrefix(line, "ref: "); ok {
		return strings.TrimPrefix(strings.TrimSpace(ref), "refs/heads/")
	}
	if len(line) >= 7 {
		return "detached@" + line[:7]
	}
	return line
}

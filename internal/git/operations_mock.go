package git

import (
	"context"
	"fmt"
	"sync"
)

// MockOperations is a mock implementation of Operations for testing.
type MockOperations struct {
	Tracked   []string
	Untracked []string
	DiffText  string
	Repo      bool

	TrackedError   error
	UntrackedError error
	DiffError      error

	mu    sync.Mutex
	calls []string
}

// NewMockOperations creates a mock with sensible defaults.
func NewMockOperations() *MockOperations {
	return &MockOperations{Repo: true}
}

func (m *MockOperations) ListTrackedFiles(ctx context.Context, root string) ([]string, error) {
	m.record("ls-files")
	if m.TrackedError != nil {
		return nil, m.TrackedError
	}
	return append([]string(nil), m.Tracked...), nil
}

func (m *MockOperations) ListUntrackedFiles(ctx context.Context, root string) ([]string, error) {
	m.record("ls-files --others --exclude-standard")
	if m.UntrackedError != nil {
		return nil, m.UntrackedError
	}
	return append([]string(nil), m.Untracked...), nil
}

func (m *MockOperations) Diff(ctx context.Context, root, base, head string) (string, error) {
	m.record(fmt.Sprintf("diff %s..%s", base, head))
	if m.DiffError != nil {
		return "", m.DiffError
	}
	return m.DiffText, nil
}

func (m *MockOperations) IsRepository(ctx context.Context, root string) bool {
	m.record("rev-parse")
	return m.Repo
}

// Calls returns the recorded invocations in order.
func (m *MockOperations) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockOperations) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

package ports

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCommandRunner is an in-memory CommandRunner for tests.
// Unregistered commands succeed with empty output unless Strict is set.
type MockCommandRunner struct {
	mu      sync.Mutex
	results map[string]CommandResult
	errs    map[string]error
	calls   []CommandCall

	// Strict makes unregistered commands return an error.
	Strict bool
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		results: make(map[string]CommandResult),
		errs:    make(map[string]error),
	}
}

// AddResult registers the result returned for a command line.
func (m *MockCommandRunner) AddResult(command string, args []string, result CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[mockKey(command, args)] = result
}

// AddError registers an execution error returned for a command line.
func (m *MockCommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[mockKey(command, args)] = err
}

// Run records the call and returns the registered result.
func (m *MockCommandRunner) Run(_ context.Context, command string, args ...string) (CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, CommandCall{Command: command, Args: append([]string(nil), args...)})

	key := mockKey(command, args)
	if err, ok := m.errs[key]; ok {
		return CommandResult{}, err
	}
	if result, ok := m.results[key]; ok {
		return result, nil
	}
	if m.Strict {
		return CommandResult{}, fmt.Errorf("unexpected command: %s", key)
	}
	return CommandResult{}, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockCommandRunner) Calls() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CommandCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallLines returns recorded invocations as command lines.
func (m *MockCommandRunner) CallLines() []string {
	calls := m.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

func mockKey(command string, args []string) string {
	return strings.TrimSpace(command + " " + strings.Join(args, " "))
}

var _ CommandRunner = (*MockCommandRunner)(nil)

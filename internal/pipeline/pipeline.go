// Package pipeline executes an ordered list of build steps sequentially,
// stopping at the first failure, and tracks cleanup actions that must run on
// every exit path.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Step is a named unit of the build. Steps run strictly in order; a failing
// step aborts the whole pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run executes the steps in order, logging progress to w. It returns the
// first error, wrapped with the failing step's name.
func Run(ctx context.Context, w io.Writer, steps []Step) error {
	total := len(steps)
	for i, step := range steps {
		fmt.Fprintf(w, "==============================\n")
		fmt.Fprintf(w, "Step [%d/%d]: %s\n", i+1, total, step.Name)
		fmt.Fprintf(w, "==============================\n")

		start := time.Now()
		if err := step.Run(ctx); err != nil {
			fmt.Fprintf(w, "❌ Step %s failed (%.2f seconds)\n", step.Name, time.Since(start).Seconds())
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
		fmt.Fprintf(w, "✅ Step %s completed in %.2f seconds\n", step.Name, time.Since(start).Seconds())
	}
	return nil
}

// CleanStack collects cleanup actions and runs them in reverse order of
// registration. Cleanup is idempotent: a second call is a no-op, so the
// stack can be wired into both a defer and a signal handler.
type CleanStack struct {
	mu  sync.Mutex
	fns []func()
}

func NewCleanStack() *CleanStack {
	return &CleanStack{}
}

// Push registers a cleanup action. Actions are best-effort and must not
// panic; errors are the action's own to report.
func (s *CleanStack) Push(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

// Cleanup runs all registered actions, last first, and empties the stack.
func (s *CleanStack) Cleanup() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

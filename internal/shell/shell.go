// Package shell runs external commands with their output streamed
// line-by-line to a log writer, prefixed with the tool name.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Run executes name with args and streams combined output to w. It blocks
// until the command exits and returns the command's own error on a non-zero
// exit.
func Run(ctx context.Context, w io.Writer, name string, args ...string) error {
	return RunEnv(ctx, w, nil, name, args...)
}

// RunEnv is Run with extra environment variables appended to the command's
// environment.
func RunEnv(ctx context.Context, w io.Writer, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stream(stdout, w, name)
	}()
	go func() {
		defer wg.Done()
		stream(stderr, w, name)
	}()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	// drain both pipes fully before Wait, which closes them
	wg.Wait()
	err = cmd.Wait()

	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// stream copies lines from r to w, prefixing each with the tool name.
func stream(r io.Reader, w io.Writer, prefix string) {
	scanner := bufio.NewScanner(r)
	// package installs can emit very long lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Fprintf(w, "%s: %s\n", prefix, scanner.Text())
	}
}

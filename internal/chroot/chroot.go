// Package chroot manages a target filesystem tree with kernel
// pseudo-filesystems bound into it, and runs commands inside it via
// chroot(8). Mounts are tracked and released in reverse order on Close, on
// every exit path.
package chroot

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"liveforge/internal/shell"
)

// Env is a chroot execution environment rooted at a rootfs directory.
type Env struct {
	root   string
	log    io.Writer
	mounts []string
	mutex  sync.Mutex
}

// bindSpec describes a host path bound into the target tree.
type bindSpec struct {
	Source string
	Target string // relative to the rootfs
}

// pseudoFilesystems are bound into the tree before any chrooted command runs
// and must all be gone before the tree is packaged.
var pseudoFilesystems = []bindSpec{
	{Source: "/dev", Target: "dev"},
	{Source: "/dev/pts", Target: "dev/pts"},
	{Source: "/proc", Target: "proc"},
	{Source: "/sys", Target: "sys"},
	{Source: "/run", Target: "run"},
}

func New(root string, log io.Writer) *Env {
	return &Env{
		root: root,
		log:  log,
	}
}

// Root returns the rootfs directory the environment operates on.
func (e *Env) Root() string {
	return e.root
}

// Mount binds the kernel pseudo-filesystems into the tree. Partially
// completed mounts are torn down if any bind fails.
func (e *Env) Mount() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if len(e.mounts) > 0 {
		return fmt.Errorf("pseudo-filesystems already mounted under %s", e.root)
	}

	for _, spec := range pseudoFilesystems {
		target := filepath.Join(e.root, spec.Target)
		if err := os.MkdirAll(target, 0755); err != nil {
			e.unmountAll()
			return fmt.Errorf("failed to create mount target %s: %w", target, err)
		}

		cmd := exec.Command("mount", "--bind", spec.Source, target)
		cmd.Stdout = e.log
		cmd.Stderr = e.log
		if err := cmd.Run(); err != nil {
			e.unmountAll()
			return fmt.Errorf("failed to bind %s to %s: %w", spec.Source, target, err)
		}

		e.mounts = append(e.mounts, target)
	}

	return nil
}

// Run writes script into /tmp of the tree and executes it with bash inside
// the chroot, streaming output to the log writer. The script file is removed
// afterwards.
func (e *Env) Run(ctx context.Context, name, script string) error {
	scriptPath := filepath.Join(e.root, "tmp", name)
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		return fmt.Errorf("failed to write chroot script: %w", err)
	}
	defer os.Remove(scriptPath)

	fmt.Fprintf(e.log, "Chroot command: /bin/bash /tmp/%s\n", name)

	env := []string{"DEBIAN_FRONTEND=noninteractive", "LC_ALL=C"}
	err := shell.RunEnv(ctx, e.log, env, "chroot", e.root, "/bin/bash", "/tmp/"+name)
	if err != nil {
		return fmt.Errorf("chroot script %s: %w", name, err)
	}
	return nil
}

// Close unmounts everything still bound under the tree. Unmount failures are
// logged and swallowed; the packaging steps re-check the mount table anyway.
// Close may be called more than once.
func (e *Env) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	// sweep the mount table too, in case a chrooted command mounted
	// something we did not
	extra, err := MountsUnder(e.root)
	if err != nil {
		fmt.Fprintf(e.log, "Warning: error reading mount table: %v\n", err)
	}
	for _, m := range extra {
		if !contains(e.mounts, m) {
			e.unmount(m)
		}
	}

	e.unmountAll()
	return nil
}

func (e *Env) unmountAll() {
	for i := len(e.mounts) - 1; i >= 0; i-- {
		e.unmount(e.mounts[i])
	}
	e.mounts = nil
}

// unmount makes three attempts with increasing aggressiveness: plain
// umount, a lazy detach, then a forced umount.
func (e *Env) unmount(target string) {
	for attempt := 0; attempt < 3; attempt++ {
		var err error
		switch attempt {
		case 0:
			err = exec.Command("umount", target).Run()
		case 1:
			err = unix.Unmount(target, unix.MNT_DETACH)
		default:
			err = exec.Command("umount", "-f", target).Run()
		}

		if err == nil {
			return
		}
		if attempt == 2 {
			fmt.Fprintf(e.log, "Warning: failed to unmount %s after all attempts\n", target)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// MountsUnder returns the mount points below path, deepest first, so that
// unmounting in order never hits a busy parent.
func MountsUnder(path string) ([]string, error) {
	data, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return nil, err
	}
	return mountsUnder(path, string(data)), nil
}

func mountsUnder(path, mountTable string) []string {
	var mounts []string
	prefix := strings.TrimSuffix(path, "/") + "/"
	for _, line := range strings.Split(mountTable, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.HasPrefix(fields[1], prefix) {
			mounts = append(mounts, fields[1])
		}
	}

	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i]) > len(mounts[j])
	})
	return mounts
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

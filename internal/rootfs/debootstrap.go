// Package rootfs builds and configures the target system's filesystem tree.
package rootfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"liveforge/internal/chroot"
	"liveforge/internal/shell"
	"liveforge/internal/structures"
)

// Build creates the base filesystem with debootstrap, binds the kernel
// pseudo-filesystems into it and installs the desktop package set inside a
// chroot, so dependency resolution happens natively in the target.
func Build(ctx context.Context, cfg *structures.BuildConfig, env *chroot.Env, w io.Writer) error {
	if err := prepareRootfsDir(env, cfg.RootfsDir()); err != nil {
		return err
	}

	fmt.Fprintln(w, "invoking debootstrap (this may take a while)...")
	if err := shell.Run(ctx, w, "debootstrap", DebootstrapArgs(cfg)...); err != nil {
		return err
	}

	if err := env.Mount(); err != nil {
		return err
	}

	fmt.Fprintln(w, "installing desktop packages inside chroot...")
	return env.Run(ctx, "install-packages.bash", InstallScript(cfg))
}

// mountReleaser unmounts anything still bound under the rootfs tree.
type mountReleaser interface {
	Close() error
}

// prepareRootfsDir clears the rootfs directory for a fresh bootstrap. A run
// killed outright leaves pseudo-filesystems bound under the tree, and
// RemoveAll would recurse through a live bind mount into the host /dev, so
// the mounts are released first.
func prepareRootfsDir(env mountReleaser, dir string) error {
	env.Close()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear rootfs directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create rootfs directory: %w", err)
	}
	return nil
}

// DebootstrapArgs builds the debootstrap command line for stage one.
func DebootstrapArgs(cfg *structures.BuildConfig) []string {
	return []string{
		fmt.Sprintf("--arch=%s", cfg.Arch),
		"--variant=minbase",
		fmt.Sprintf("--include=%s", strings.Join(cfg.BasePackages, ",")),
		cfg.Suite,
		cfg.RootfsDir(),
		cfg.Mirror,
	}
}

// InstallScript is the stage-two package installation executed inside the
// chroot with the target's own package manager.
func InstallScript(cfg *structures.BuildConfig) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("set -e\n")
	b.WriteString("apt-get update\n")
	b.WriteString("apt-get install -y --no-install-recommends \\\n    ")
	b.WriteString(strings.Join(cfg.DesktopPackages, " \\\n    "))
	b.WriteString("\n")
	b.WriteString("apt-get clean\n")
	return b.String()
}

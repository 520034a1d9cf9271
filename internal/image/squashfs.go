package image

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	units "github.com/docker/go-units"

	"liveforge/internal/chroot"
	"liveforge/internal/shell"
	"liveforge/internal/structures"
)

// PackSquashfs compresses the rootfs tree into live/filesystem.squashfs.
// The chroot environment is closed first: the tree must be free of
// pseudo-filesystem mounts before mksquashfs walks it.
func PackSquashfs(ctx context.Context, cfg *structures.BuildConfig, env *chroot.Env, w io.Writer) error {
	env.Close()

	out := filepath.Join(cfg.ISODir(), "live", "filesystem.squashfs")
	fmt.Fprintln(w, "compressing rootfs (this may take a while)...")

	err := shell.Run(ctx, w, "mksquashfs", SquashfsArgs(cfg.RootfsDir(), out, cfg.Squashfs.Compression)...)
	if err != nil {
		return err
	}

	if fi, err := os.Stat(out); err == nil {
		fmt.Fprintf(w, "squashfs image: %s (%s)\n", out, units.HumanSize(float64(fi.Size())))
	}
	return nil
}

// SquashfsArgs builds the mksquashfs command line. /boot is excluded because
// the kernel and initrd are shipped uncompressed in the ISO tree, and
// -noappend overwrites any image left by a previous run.
func SquashfsArgs(rootfsDir, out, compression string) []string {
	return []string{
		rootfsDir,
		out,
		"-comp", compression,
		"-e", "boot",
		"-noappend",
	}
}

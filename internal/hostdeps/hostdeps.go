// Package hostdeps ensures the build host has the packaging toolchain the
// pipeline delegates to.
package hostdeps

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"liveforge/internal/shell"
)

// hostPackages are installed on the build host before anything else runs.
var hostPackages = []string{
	"debootstrap",
	"squashfs-tools",
	"grub-pc-bin",
	"grub-efi-amd64-bin",
	"grub-common",
	"xorriso",
	"mtools",
	"dosfstools",
}

// requiredTools maps a short name to the binary the pipeline invokes.
var requiredTools = map[string]string{
	"debootstrap":   "debootstrap",
	"chroot":        "chroot",
	"mount":         "mount",
	"umount":        "umount",
	"mksquashfs":    "mksquashfs",
	"grub-mkrescue": "grub-mkrescue",
	"xorriso":       "xorriso",
}

// Install refreshes the host package index and installs the toolchain.
// Failure is fatal to the pipeline.
func Install(ctx context.Context, w io.Writer) error {
	if err := shell.Run(ctx, w, "apt-get", "update"); err != nil {
		return fmt.Errorf("refreshing package index: %w", err)
	}
	if err := shell.Run(ctx, w, "apt-get", installArgs()...); err != nil {
		return fmt.Errorf("installing host dependencies: %w", err)
	}
	return nil
}

func installArgs() []string {
	args := []string{"install", "-y"}
	return append(args, hostPackages...)
}

// Check reports the location of every required binary and returns an error
// listing the ones that are missing.
func Check(w io.Writer) error {
	var missing []string
	for _, tool := range requiredTools {
		path, err := exec.LookPath(tool)
		if err != nil {
			fmt.Fprintf(w, "%v not found\n", tool)
			missing = append(missing, tool)
		} else {
			fmt.Fprintf(w, "%v found at: %v\n", tool, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Package image assembles the ISO staging tree and produces the final
// bootable image.
package image

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"liveforge/internal/structures"
)

// BuildLayout recreates the ISO directory skeleton and copies the kernel and
// initrd out of the rootfs. The previous tree, if any, is removed first so
// reruns produce an equivalent layout.
func BuildLayout(fs afero.Fs, cfg *structures.BuildConfig, w io.Writer) error {
	isoDir := cfg.ISODir()

	if err := fs.RemoveAll(isoDir); err != nil {
		return fmt.Errorf("failed to clear iso directory: %w", err)
	}
	for _, dir := range []string{"live", "boot/grub", ".disk"} {
		if err := fs.MkdirAll(filepath.Join(isoDir, dir), 0755); err != nil {
			return fmt.Errorf("failed to create iso directory %s: %w", dir, err)
		}
	}

	kernel, initrd, err := FindBootFiles(fs, cfg.RootfsDir())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "kernel: %s\n", kernel)
	fmt.Fprintf(w, "initrd: %s\n", initrd)

	if err := copyFile(fs, kernel, filepath.Join(isoDir, "live", "vmlinuz")); err != nil {
		return fmt.Errorf("failed to copy kernel: %w", err)
	}
	if err := copyFile(fs, initrd, filepath.Join(isoDir, "live", "initrd.img")); err != nil {
		return fmt.Errorf("failed to copy initrd: %w", err)
	}

	info := fmt.Sprintf("%s %s - build %s - %s\n",
		cfg.Name, cfg.Version, uuid.NewString(), time.Now().UTC().Format("2006-01-02"))
	if err := afero.WriteFile(fs, filepath.Join(isoDir, ".disk", "info"), []byte(info), 0644); err != nil {
		return fmt.Errorf("failed to write .disk/info: %w", err)
	}
	return nil
}

// FindBootFiles locates the kernel image and initrd in the rootfs /boot.
// Anything other than exactly one match per pattern is an error: a missing
// kernel means the package installation went wrong, and multiple kernels
// would make the boot menu ambiguous.
func FindBootFiles(fs afero.Fs, rootfsDir string) (kernel, initrd string, err error) {
	kernel, err = globOne(fs, filepath.Join(rootfsDir, "boot", "vmlinuz-*"))
	if err != nil {
		return "", "", err
	}
	initrd, err = globOne(fs, filepath.Join(rootfsDir, "boot", "initrd.img-*"))
	if err != nil {
		return "", "", err
	}
	return kernel, initrd, nil
}

func globOne(fs afero.Fs, pattern string) (string, error) {
	matches, err := afero.Glob(fs, pattern)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no file matches %s", pattern)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d files match %s, expected exactly one", len(matches), pattern)
	}
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

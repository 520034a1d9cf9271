package image

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	units "github.com/docker/go-units"
	"github.com/fatih/color"

	"liveforge/internal/shell"
	"liveforge/internal/structures"
)

// CreateISO invokes grub-mkrescue against the staged ISO tree and reports
// the size of the resulting image. This is the terminal step of the
// pipeline.
func CreateISO(ctx context.Context, cfg *structures.BuildConfig, w io.Writer) error {
	if _, err := os.Stat(cfg.ISODir()); os.IsNotExist(err) {
		return fmt.Errorf("iso directory does not exist: %s", cfg.ISODir())
	}

	path, err := exec.LookPath("grub-mkrescue")
	if err != nil {
		return fmt.Errorf("grub-mkrescue not found in PATH")
	}
	fmt.Fprintf(w, "Using grub-mkrescue from: %s\n", path)

	args := RescueArgs(cfg.Output, cfg.ISODir(), cfg.ISO.Label)
	if err := shell.Run(ctx, w, "grub-mkrescue", args...); err != nil {
		return fmt.Errorf("failed to create ISO: %w", err)
	}

	fi, err := os.Stat(cfg.Output)
	if err != nil {
		return fmt.Errorf("output image missing after grub-mkrescue: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("output image %s is empty", cfg.Output)
	}

	color.New(color.FgGreen).Fprintf(w, "ISO image created: %s (%s)\n", cfg.Output, units.HumanSize(float64(fi.Size())))
	return nil
}

// RescueArgs builds the grub-mkrescue command line. Arguments after "--" are
// passed through to xorriso; the volume ID is what installers and file
// managers display for the medium.
func RescueArgs(output, isoDir, label string) []string {
	return []string{
		"-o", output,
		isoDir,
		"--",
		"-volid", label,
	}
}

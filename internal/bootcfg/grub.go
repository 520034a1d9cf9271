// Package bootcfg emits the GRUB boot menu for the live image. Purely
// textual; no external tools are invoked.
package bootcfg

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"liveforge/internal/structures"
)

const (
	kernelPath = "/live/vmlinuz"
	initrdPath = "/live/initrd.img"
)

// Entry is one boot menu item. All entries boot the same kernel/initrd pair
// and differ only in the kernel command line.
type Entry struct {
	Title   string
	Cmdline string
}

// Entries returns the three standard live-boot menu entries for a
// distribution name.
func Entries(name string) []Entry {
	return []Entry{
		{Title: name, Cmdline: "boot=live quiet splash"},
		{Title: name + " (safe mode)", Cmdline: "boot=live nomodeset"},
		{Title: name + " (text mode)", Cmdline: "boot=live systemd.unit=multi-user.target"},
	}
}

var grubTemplate = template.Must(template.New("grub.cfg").Parse(`set default=0
set timeout=5

insmod all_video
insmod gfxterm

{{range .Entries}}menuentry "{{.Title}}" {
    linux {{$.Kernel}} {{.Cmdline}}
    initrd {{$.Initrd}}
}

{{end}}`))

// WriteGrubCfg renders boot/grub/grub.cfg into the ISO tree.
func WriteGrubCfg(fs afero.Fs, isoDir string, cfg *structures.BuildConfig) error {
	data := struct {
		Kernel  string
		Initrd  string
		Entries []Entry
	}{
		Kernel:  kernelPath,
		Initrd:  initrdPath,
		Entries: Entries(cfg.Name),
	}

	var buf bytes.Buffer
	if err := grubTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering grub.cfg: %w", err)
	}

	grubDir := filepath.Join(isoDir, "boot", "grub")
	if err := fs.MkdirAll(grubDir, 0755); err != nil {
		return fmt.Errorf("failed to create grub directory: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(grubDir, "grub.cfg"), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write grub.cfg: %w", err)
	}

	return writeGrubEnv(fs, grubDir)
}

const (
	grubEnvHeader = "# GRUB Environment Block\n"
	grubEnvSize   = 1024
)

// writeGrubEnv writes the grubenv block next to grub.cfg in the format
// grub-editenv produces: the header line, key=value entries, and '#' padding
// to exactly 1024 bytes, so load_env can read it.
func writeGrubEnv(fs afero.Fs, grubDir string) error {
	body, err := godotenv.Marshal(map[string]string{
		"default": "0",
		"timeout": "5",
	})
	if err != nil {
		return fmt.Errorf("marshaling grubenv: %w", err)
	}

	content := grubEnvHeader + body + "\n"
	if len(content) > grubEnvSize {
		return fmt.Errorf("grubenv contents exceed %d bytes", grubEnvSize)
	}
	content += strings.Repeat("#", grubEnvSize-len(content))

	err = afero.WriteFile(fs, filepath.Join(grubDir, "grubenv"), []byte(content), 0644)
	if err != nil {
		return fmt.Errorf("failed to write grubenv: %w", err)
	}
	return nil
}

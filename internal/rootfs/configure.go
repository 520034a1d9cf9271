package rootfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	cp "github.com/otiai10/copy"
	"github.com/spf13/afero"

	"liveforge/internal/chroot"
	"liveforge/internal/structures"
)

// Configurer writes the target system's identity and desktop configuration
// into the rootfs tree. File writes go through an afero.Fs so they can be
// exercised against an in-memory filesystem.
type Configurer struct {
	fs  afero.Fs
	cfg *structures.BuildConfig
	log io.Writer
}

func NewConfigurer(fs afero.Fs, cfg *structures.BuildConfig, log io.Writer) *Configurer {
	return &Configurer{fs: fs, cfg: cfg, log: log}
}

// Configure runs the full configuration pass: identity files, branding
// assets, desktop configs, then the in-chroot user and service setup.
func Configure(ctx context.Context, cfg *structures.BuildConfig, env *chroot.Env, w io.Writer) error {
	c := NewConfigurer(afero.NewOsFs(), cfg, w)

	if err := c.WriteIdentity(); err != nil {
		return err
	}
	if err := c.CopyAssets(); err != nil {
		return err
	}
	if err := c.WriteDesktop(); err != nil {
		return err
	}

	fmt.Fprintln(w, "configuring users and services inside chroot...")
	return env.Run(ctx, "setup-system.bash", SetupScript(cfg))
}

// WriteIdentity writes hostname, hosts and the locale selection.
func (c *Configurer) WriteIdentity() error {
	hosts := fmt.Sprintf(`127.0.0.1	localhost
127.0.1.1	%s

::1		localhost ip6-localhost ip6-loopback
ff02::1		ip6-allnodes
ff02::2		ip6-allrouters
`, c.cfg.Hostname)

	if err := c.write("etc/hostname", c.cfg.Hostname+"\n", 0644); err != nil {
		return err
	}
	if err := c.write("etc/hosts", hosts, 0644); err != nil {
		return err
	}
	return c.write("etc/locale.gen", c.cfg.Locale+" UTF-8\n", 0644)
}

// CopyAssets installs the wallpaper and logo into the tree. A missing asset
// is a warning; the generated configs keep referencing the target path
// regardless.
func (c *Configurer) CopyAssets() error {
	assets := []struct {
		src  string
		dst  string
		name string
	}{
		{c.cfg.Assets.Wallpaper, c.cfg.WallpaperTarget(), "wallpaper"},
		{c.cfg.Assets.Logo, c.cfg.LogoTarget(), "logo"},
	}

	for _, a := range assets {
		if a.src == "" {
			continue
		}
		if _, err := os.Stat(a.src); os.IsNotExist(err) {
			color.New(color.FgYellow).Fprintf(c.log, "Warning: %s asset not found at %s, skipping\n", a.name, a.src)
			continue
		}

		dst := filepath.Join(c.cfg.RootfsDir(), a.dst)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("failed to create asset directory: %w", err)
		}
		if err := cp.Copy(a.src, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", a.name, err)
		}
		fmt.Fprintf(c.log, "installed %s to %s\n", a.name, a.dst)
	}
	return nil
}

// SetupScript is the second chroot block: locale generation, passwords, the
// live user, enabled services, the user's dock launchers and ownership.
func SetupScript(cfg *structures.BuildConfig) string {
	user := cfg.User
	home := "/home/" + user.Name
	launchers := home + "/.config/plank/dock1/launchers"

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("set -e\n\n")

	b.WriteString("locale-gen\n")
	fmt.Fprintf(&b, "update-locale LANG=%s\n\n", cfg.Locale)

	fmt.Fprintf(&b, "ln -sf /usr/share/zoneinfo/%s /etc/localtime\n\n", cfg.Timezone)

	fmt.Fprintf(&b, "echo 'root:%s' | chpasswd\n", cfg.RootPassword)
	fmt.Fprintf(&b, "useradd -m -s /bin/bash -G %s %s\n", strings.Join(user.Groups, ","), user.Name)
	fmt.Fprintf(&b, "echo '%s:%s' | chpasswd\n\n", user.Name, user.Password)

	// lightdm autologin requires membership in the autologin group
	b.WriteString("groupadd -f autologin\n")
	fmt.Fprintf(&b, "usermod -aG autologin %s\n\n", user.Name)

	for _, svc := range cfg.Services {
		fmt.Fprintf(&b, "systemctl enable %s\n", svc)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "mkdir -p %s\n", launchers)
	for _, item := range dockItems {
		fmt.Fprintf(&b, "cat > %s/%s.dockitem << 'EOF'\n", launchers, item.name)
		b.WriteString("[PlankDockItemPreferences]\n")
		fmt.Fprintf(&b, "Launcher=file://%s\n", item.desktopFile)
		b.WriteString("EOF\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "chown -R %s:%s %s\n", user.Name, user.Name, home)
	return b.String()
}

// write writes a file under the rootfs, creating parent directories.
func (c *Configurer) write(rel, content string, mode os.FileMode) error {
	path := filepath.Join(c.cfg.RootfsDir(), rel)
	if err := c.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := afero.WriteFile(c.fs, path, []byte(content), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

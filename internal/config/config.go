package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"liveforge/internal/structures"
)

// Default returns the built-in build configuration. A build with no config
// file uses exactly these values.
func Default() *structures.BuildConfig {
	return &structures.BuildConfig{
		Name:    "nimbus",
		Version: "1.0",

		WorkDir: "/var/tmp/liveforge",
		Output:  "nimbus-live.iso",

		Mirror: "http://deb.debian.org/debian",
		Suite:  "bookworm",
		Arch:   "amd64",

		Hostname: "nimbus",
		Locale:   "en_US.UTF-8",
		Timezone: "UTC",

		BasePackages: []string{
			"linux-image-amd64",
			"live-boot",
			"systemd-sysv",
		},
		DesktopPackages: []string{
			"xorg",
			"xinit",
			"openbox",
			"obconf",
			"lightdm",
			"lightdm-gtk-greeter",
			"picom",
			"plank",
			"feh",
			"network-manager",
			"network-manager-gnome",
			"xterm",
			"pcmanfm",
			"firefox-esr",
			"fonts-dejavu",
			"sudo",
			"locales",
		},

		RootPassword: "root",
		User: structures.UserConfig{
			Name:     "nimbus",
			Password: "nimbus",
			Groups:   []string{"sudo", "audio", "video", "netdev", "plugdev"},
		},

		Services: []string{"NetworkManager", "lightdm"},

		Assets: structures.AssetConfig{
			Wallpaper: "assets/wallpaper.png",
			Logo:      "assets/logo.png",
		},
		Squashfs: structures.SquashfsConfig{
			Compression: "xz",
		},
		ISO: structures.ISOConfig{
			Label:     "NIMBUS_LIVE",
			Publisher: "Nimbus Linux",
		},
	}
}

// Load reads a YAML file over the given configuration, overriding only the
// fields the file sets.
func Load(path string, cfg *structures.BuildConfig) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	return nil
}

// Validate rejects configurations that would make the pipeline misbehave in
// ways worse than a failed command.
func Validate(cfg *structures.BuildConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("distribution name must not be empty")
	}
	if cfg.Suite == "" {
		return fmt.Errorf("suite must not be empty")
	}
	if cfg.Arch == "" {
		return fmt.Errorf("arch must not be empty")
	}
	if cfg.Mirror == "" {
		return fmt.Errorf("mirror must not be empty")
	}
	if cfg.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	switch cfg.WorkDir {
	case "", "/":
		// the rootfs step clears the work directory before building
		return fmt.Errorf("refusing to use %q as work directory", cfg.WorkDir)
	}
	if len(cfg.BasePackages) == 0 {
		return fmt.Errorf("base package list must not be empty")
	}
	if cfg.User.Name == "" {
		return fmt.Errorf("user name must not be empty")
	}
	return nil
}

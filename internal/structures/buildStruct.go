package structures

import "path/filepath"

// BuildConfig describes a complete live image build. Every field has a
// built-in default (see config.Default), so a YAML file only needs to
// override what differs.
type BuildConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	WorkDir string `yaml:"work_dir"`
	Output  string `yaml:"output"`

	Mirror string `yaml:"mirror"`
	Suite  string `yaml:"suite"`
	Arch   string `yaml:"arch"`

	Hostname string `yaml:"hostname"`
	Locale   string `yaml:"locale"`
	Timezone string `yaml:"timezone"`

	BasePackages    []string `yaml:"base_packages"`
	DesktopPackages []string `yaml:"desktop_packages"`

	RootPassword string     `yaml:"root_password"`
	User         UserConfig `yaml:"user"`

	Services []string `yaml:"services"`

	Assets   AssetConfig    `yaml:"assets"`
	Squashfs SquashfsConfig `yaml:"squashfs"`
	ISO      ISOConfig      `yaml:"iso"`
}

// UserConfig describes the default live-session user created inside the
// target system.
type UserConfig struct {
	Name     string   `yaml:"name"`
	Password string   `yaml:"password"`
	Groups   []string `yaml:"groups"`
}

// AssetConfig holds paths to optional branding files on the host. A missing
// asset is a warning, not a build failure.
type AssetConfig struct {
	Wallpaper string `yaml:"wallpaper"`
	Logo      string `yaml:"logo"`
}

type SquashfsConfig struct {
	Compression string `yaml:"compression"`
}

type ISOConfig struct {
	Label     string `yaml:"label"`
	Publisher string `yaml:"publisher"`
}

// RootfsDir is the directory the target filesystem is assembled in.
func (c *BuildConfig) RootfsDir() string {
	return filepath.Join(c.WorkDir, "rootfs")
}

// ISODir is the staging tree the final image is generated from.
func (c *BuildConfig) ISODir() string {
	return filepath.Join(c.WorkDir, "iso")
}

// WallpaperTarget is the path the wallpaper is installed to inside the
// rootfs. Configs reference this path even when the asset is missing.
func (c *BuildConfig) WallpaperTarget() string {
	return filepath.Join("/usr/share/backgrounds", c.Name, "wallpaper.png")
}

// LogoTarget is the path the logo is installed to inside the rootfs.
func (c *BuildConfig) LogoTarget() string {
	return filepath.Join("/usr/share/pixmaps", c.Name+"-logo.png")
}

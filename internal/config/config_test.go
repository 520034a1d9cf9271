package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "bookworm", cfg.Suite)
	assert.Equal(t, "amd64", cfg.Arch)
	assert.Contains(t, cfg.BasePackages, "live-boot")
	assert.NotEmpty(t, cfg.DesktopPackages)
	assert.Equal(t, filepath.Join(cfg.WorkDir, "rootfs"), cfg.RootfsDir())
	assert.Equal(t, filepath.Join(cfg.WorkDir, "iso"), cfg.ISODir())
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
name: aurora
suite: trixie
user:
  name: aurora
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg := Default()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "aurora", cfg.Name)
	assert.Equal(t, "trixie", cfg.Suite)
	assert.Equal(t, "aurora", cfg.User.Name)
	// untouched fields keep their defaults
	assert.Equal(t, "amd64", cfg.Arch)
	assert.Equal(t, "http://deb.debian.org/debian", cfg.Mirror)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Default()
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [broken"), 0644))

	err := Load(path, Default())
	require.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cfg := Default()
	cfg.Suite = ""
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.WorkDir = "/"
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.WorkDir = ""
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.BasePackages = nil
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.User.Name = ""
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Output = ""
	assert.Error(t, Validate(cfg))
}

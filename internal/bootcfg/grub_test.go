package bootcfg

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveforge/internal/config"
)

func TestEntriesShareBootFilesAndDifferInCmdline(t *testing.T) {
	entries := Entries("nimbus")
	require.Len(t, entries, 3)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Cmdline], "duplicate cmdline %q", e.Cmdline)
		seen[e.Cmdline] = true
		assert.Contains(t, e.Cmdline, "boot=live")
	}

	assert.Contains(t, entries[0].Cmdline, "quiet splash")
	assert.Contains(t, entries[1].Cmdline, "nomodeset")
	assert.Contains(t, entries[2].Cmdline, "systemd.unit=multi-user.target")
}

func TestWriteGrubCfg(t *testing.T) {
	cfg := config.Default()
	fs := afero.NewMemMapFs()
	isoDir := "/work/iso"

	require.NoError(t, WriteGrubCfg(fs, isoDir, cfg))

	data, err := afero.ReadFile(fs, filepath.Join(isoDir, "boot/grub/grub.cfg"))
	require.NoError(t, err)
	content := string(data)

	assert.Equal(t, 3, strings.Count(content, "menuentry "))
	// every entry boots the same kernel/initrd pair
	assert.Equal(t, 3, strings.Count(content, "linux "+kernelPath))
	assert.Equal(t, 3, strings.Count(content, "initrd "+initrdPath))
	assert.Contains(t, content, "set default=0")
	assert.Contains(t, content, `menuentry "`+cfg.Name+`"`)
	assert.Contains(t, content, `menuentry "`+cfg.Name+` (safe mode)"`)
	assert.Contains(t, content, `menuentry "`+cfg.Name+` (text mode)"`)
}

func TestWriteGrubCfgWritesGrubEnvBlock(t *testing.T) {
	cfg := config.Default()
	fs := afero.NewMemMapFs()

	require.NoError(t, WriteGrubCfg(fs, "/work/iso", cfg))

	data, err := afero.ReadFile(fs, "/work/iso/boot/grub/grubenv")
	require.NoError(t, err)

	// grub-editenv format: header, entries, '#' padding, exactly 1024 bytes
	assert.Len(t, data, grubEnvSize)
	assert.True(t, strings.HasPrefix(string(data), grubEnvHeader))
	assert.Contains(t, string(data), "default=0")
	assert.Contains(t, string(data), "timeout=5")
	assert.True(t, strings.HasSuffix(string(data), "#"))
}

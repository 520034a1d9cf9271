package chroot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPseudoFilesystemOrder(t *testing.T) {
	// /dev must be bound before /dev/pts so the reverse-order unmount
	// releases the nested mount first
	var devIdx, ptsIdx int
	for i, spec := range pseudoFilesystems {
		switch spec.Target {
		case "dev":
			devIdx = i
		case "dev/pts":
			ptsIdx = i
		}
	}
	assert.Less(t, devIdx, ptsIdx)

	targets := make([]string, 0, len(pseudoFilesystems))
	for _, spec := range pseudoFilesystems {
		targets = append(targets, spec.Target)
	}
	assert.ElementsMatch(t, []string{"dev", "dev/pts", "proc", "sys", "run"}, targets)
}

func TestMountsUnderFiltersAndSortsDeepestFirst(t *testing.T) {
	table := `sysfs /sys sysfs rw 0 0
proc /proc proc rw 0 0
/dev/sda1 / ext4 rw 0 0
none /var/tmp/liveforge/rootfs/dev devtmpfs rw 0 0
none /var/tmp/liveforge/rootfs/dev/pts devpts rw 0 0
none /var/tmp/liveforge/rootfs/proc proc rw 0 0
none /var/tmp/liveforge-other/proc proc rw 0 0
`
	mounts := mountsUnder("/var/tmp/liveforge/rootfs", table)

	assert.Equal(t, []string{
		"/var/tmp/liveforge/rootfs/dev/pts",
		"/var/tmp/liveforge/rootfs/proc",
		"/var/tmp/liveforge/rootfs/dev",
	}, mounts)
}

func TestMountsUnderExcludesUnrelatedPrefixes(t *testing.T) {
	table := "none /data/rootfs2/proc proc rw 0 0\n"
	assert.Empty(t, mountsUnder("/data/rootfs", table))
}

func TestMountsUnderIgnoresMalformedLines(t *testing.T) {
	table := "garbage\n\nnone /x/rootfs/proc proc rw 0 0\n"
	assert.Equal(t, []string{"/x/rootfs/proc"}, mountsUnder("/x/rootfs", table))
}

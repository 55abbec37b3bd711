package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerUsage(t *testing.T) {
	general := &ConfigGeneral{Config: GeneralConfig{DiskSpace: "1"}}
	m := NewManager(t.TempDir(), general, nil, nil)
	m.usage = func(string) int64 { return int64(0.5 * gigabyte) }

	usage, err := m.Usage()
	require.NoError(t, err)
	require.Equal(t, 50, usage.Percent)
	require.Equal(t, 1, usage.Max)
	require.Equal(t, "500MB", usage.Formatted)
}

func TestManagerUsageUnlimited(t *testing.T) {
	general := &ConfigGeneral{Config: GeneralConfig{DiskSpace: ""}}
	m := NewManager(t.TempDir(), general, nil, nil)
	m.usage = func(string) int64 { return 1000 }

	usage, err := m.Usage()
	require.NoError(t, err)
	require.Equal(t, 0, usage.Percent)
	require.Equal(t, 1000, usage.Used)
}

func TestManagerPurge(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4"} {
		err := os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0o600)
		require.NoError(t, err)
	}

	general := &ConfigGeneral{Config: GeneralConfig{DiskSpace: "1"}}
	m := NewManager(tempDir, general, nil, nil)
	m.usage = func(string) int64 { return int64(gigabyte) }

	require.NoError(t, m.purge())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestManagerPurgeBelowThreshold(t *testing.T) {
	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "a.mp4"), []byte("x"), 0o600)
	require.NoError(t, err)

	general := &ConfigGeneral{Config: GeneralConfig{DiskSpace: "1"}}
	m := NewManager(tempDir, general, nil, nil)
	m.usage = func(string) int64 { return int64(0.5 * gigabyte) }

	require.NoError(t, m.purge())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

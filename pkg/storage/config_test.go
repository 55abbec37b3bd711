package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigEnv(t *testing.T) {
	envYAML := []byte(`
port: "8080"
ffmpegBin: /usr/bin/ffmpeg
homeDir: /var/lib/vidmash
stashAddr: http://stash:9999
stashApiKey: secret
`)
	env, err := NewConfigEnv("/var/lib/vidmash/configs/env.yaml", envYAML)
	require.NoError(t, err)

	require.Equal(t, "8080", env.Port)
	require.Equal(t, "/var/lib/vidmash/configs", env.ConfigDir)
	require.Equal(t, "/var/lib/vidmash/storage", env.StorageDir)
	require.Equal(t, "/var/lib/vidmash/temp", env.TempDir)
	require.Equal(t, "/var/lib/vidmash/temp/videos", env.TempVideoDir())
	require.Equal(t, "/var/lib/vidmash/temp/music", env.MusicDir())
	require.Equal(t, "/var/lib/vidmash/storage/compilations", env.CompilationDir())
	require.Equal(t, "http://stash:9999", env.StashAddr)
}

func TestNewConfigEnvDefaults(t *testing.T) {
	env, err := NewConfigEnv("/var/lib/vidmash/configs/env.yaml", nil)
	require.NoError(t, err)
	require.Equal(t, "5174", env.Port)
	require.Equal(t, "/usr/bin/ffmpeg", env.FFmpegBin)
	require.Equal(t, "/var/lib/vidmash", env.HomeDir)
}

func TestNewConfigEnvRelativePath(t *testing.T) {
	_, err := NewConfigEnv("/configs/env.yaml", []byte("ffmpegBin: ffmpeg"))
	require.Error(t, err)
}

func TestPrepareEnvironment(t *testing.T) {
	tempDir := t.TempDir()
	env, err := NewConfigEnv(filepath.Join(tempDir, "configs", "env.yaml"), nil)
	require.NoError(t, err)
	require.NoError(t, env.PrepareEnvironment())
	require.DirExists(t, env.TempVideoDir())
	require.DirExists(t, env.MusicDir())
	require.DirExists(t, env.CompilationDir())
}

func TestConfigGeneral(t *testing.T) {
	tempDir := t.TempDir()
	general, err := NewConfigGeneral(tempDir)
	require.NoError(t, err)
	require.Equal(t, "100", general.Get().DiskSpace)

	require.NoError(t, general.Set(GeneralConfig{DiskSpace: "50", Theme: "dark"}))

	reloaded, err := NewConfigGeneral(tempDir)
	require.NoError(t, err)
	require.Equal(t, "50", reloaded.Get().DiskSpace)
	require.Equal(t, "dark", reloaded.Get().Theme)
}

func TestFormatDiskUsage(t *testing.T) {
	require.Equal(t, "1MB", formatDiskUsage(megabyte))
	require.Equal(t, "1.00GB", formatDiskUsage(gigabyte))
	require.Equal(t, "15.5GB", formatDiskUsage(15.5*gigabyte))
	require.Equal(t, "500GB", formatDiskUsage(500*gigabyte))
	require.Equal(t, "1.00TB", formatDiskUsage(terabyte))
}

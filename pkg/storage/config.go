// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

// ConfigEnv stores system configuration.
type ConfigEnv struct {
	Port      string `yaml:"port"`
	FFmpegBin string `yaml:"ffmpegBin"`

	HomeDir    string `yaml:"homeDir"`
	StorageDir string `yaml:"storageDir"`
	TempDir    string `yaml:"tempDir"`
	WebDir     string `yaml:"webDir"`
	ConfigDir  string

	StashAddr   string `yaml:"stashAddr"`
	StashAPIKey string `yaml:"stashApiKey"`
}

// NewConfigEnv return new environment configuration.
func NewConfigEnv(envPath string, envYAML []byte) (*ConfigEnv, error) {
	var env ConfigEnv

	if err := yaml.Unmarshal(envYAML, &env); err != nil {
		return nil, fmt.Errorf("could not unmarshal env.yaml: %w", err)
	}

	env.ConfigDir = filepath.Dir(envPath)

	if env.Port == "" {
		env.Port = "5174"
	}
	if env.FFmpegBin == "" {
		env.FFmpegBin = "/usr/bin/ffmpeg"
	}
	if env.HomeDir == "" {
		env.HomeDir = filepath.Dir(env.ConfigDir)
	}
	if env.StorageDir == "" {
		env.StorageDir = filepath.Join(env.HomeDir, "storage")
	}
	if env.TempDir == "" {
		env.TempDir = filepath.Join(env.HomeDir, "temp")
	}
	if env.WebDir == "" {
		env.WebDir = filepath.Join(env.HomeDir, "web")
	}

	if !filepath.IsAbs(env.FFmpegBin) {
		return nil, fmt.Errorf("ffmpegBin '%v' is not an absolute path", env.FFmpegBin)
	}
	if !filepath.IsAbs(env.HomeDir) {
		return nil, fmt.Errorf("homeDir '%v' is not an absolute path", env.HomeDir)
	}
	if !filepath.IsAbs(env.StorageDir) {
		return nil, fmt.Errorf("storageDir '%v' is not an absolute path", env.StorageDir)
	}
	if !filepath.IsAbs(env.TempDir) {
		return nil, fmt.Errorf("tempDir '%v' is not an absolute path", env.TempDir)
	}
	if !filepath.IsAbs(env.WebDir) {
		return nil, fmt.Errorf("webDir '%v' is not an absolute path", env.WebDir)
	}

	return &env, nil
}

// TempVideoDir returns the clip cache directory.
func (env *ConfigEnv) TempVideoDir() string {
	return filepath.Join(env.TempDir, "videos")
}

// MusicDir returns the per-compilation music working directory root.
func (env *ConfigEnv) MusicDir() string {
	return filepath.Join(env.TempDir, "music")
}

// CompilationDir returns where final compilations are written.
func (env *ConfigEnv) CompilationDir() string {
	return filepath.Join(env.StorageDir, "compilations")
}

// DatabasePath returns the sqlite catalog path.
func (env *ConfigEnv) DatabasePath() string {
	return filepath.Join(env.StorageDir, "vidmash.db")
}

// LogDBPath returns the sqlite log store path.
func (env *ConfigEnv) LogDBPath() string {
	return filepath.Join(env.StorageDir, "logs.db")
}

// PrepareEnvironment prepares directories.
func (env *ConfigEnv) PrepareEnvironment() error {
	dirs := []string{
		env.StorageDir,
		env.TempVideoDir(),
		env.MusicDir(),
		env.CompilationDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil && !os.IsExist(err) {
			return fmt.Errorf("could not create directory %v: %w", dir, err)
		}
	}
	return nil
}

// GeneralConfig stores general config values.
type GeneralConfig struct {
	DiskSpace string `json:"diskSpace"` // Clip cache budget in GB.
	Theme     string `json:"theme"`
}

// ConfigGeneral stores config and path.
type ConfigGeneral struct {
	Config GeneralConfig

	path string
	mu   sync.Mutex
}

// NewConfigGeneral return new general configuration.
func NewConfigGeneral(path string) (*ConfigGeneral, error) {
	var general ConfigGeneral
	general.Config.Theme = "default"

	configPath := filepath.Join(path, "general.json")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := generateGeneralConfig(configPath); err != nil {
			return nil, fmt.Errorf("could not generate general config: %w", err)
		}
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(file, &general.Config); err != nil {
		return nil, err
	}

	general.path = configPath
	return &general, nil
}

func generateGeneralConfig(path string) error {
	config := GeneralConfig{
		DiskSpace: "100",
		Theme:     "default",
	}
	c, _ := json.MarshalIndent(config, "", "    ")

	return os.WriteFile(path, c, 0o600)
}

// Get returns general config.
func (general *ConfigGeneral) Get() GeneralConfig {
	defer general.mu.Unlock()
	general.mu.Lock()
	return general.Config
}

// Set sets config value and saves file.
func (general *ConfigGeneral) Set(newConfig GeneralConfig) error {
	general.mu.Lock()
	defer general.mu.Unlock()

	config, _ := json.MarshalIndent(newConfig, "", "    ")

	if err := os.WriteFile(general.path, config, 0o600); err != nil {
		return err
	}

	general.Config = newConfig
	return nil
}

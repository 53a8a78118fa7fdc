// Package brand provides centralized branding constants for the generator.
//
// The brand identity is loaded from brand.json at compile time via go:embed,
// so packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name              string `json:"name"`
	Website           string `json:"website"`
	Description       string `json:"description"`
	Tagline           string `json:"tagline"`
	ConfigEnvPrefix   string `json:"configEnvPrefix"`
	DefaultConfigDir  string `json:"defaultConfigDir"`
	DefaultNetworkDir string `json:"defaultNetworkDir"`
	DefaultRunDir     string `json:"defaultRunDir"`
	BinaryName        string `json:"binaryName"`
	ConfigFileName    string `json:"configFileName"`
	LockFileName      string `json:"lockFileName"`
	Copyright         string `json:"copyright"`
	License           string `json:"license"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	Website = b.Website
	Description = b.Description
	Tagline = b.Tagline
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultNetworkDir = b.DefaultNetworkDir
	DefaultRunDir = b.DefaultRunDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	LockFileName = b.LockFileName
	Copyright = b.Copyright
	License = b.License
}

// Exported variables for convenience
var (
	Name              string
	Website           string
	Description       string
	Tagline           string
	ConfigEnvPrefix   string
	DefaultConfigDir  string
	DefaultNetworkDir string
	DefaultRunDir     string
	BinaryName        string
	ConfigFileName    string
	LockFileName      string
	Copyright         string
	License           string

	// Version is set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
)

// VersionInfo returns the text printed by the version command.
func VersionInfo() string {
	return fmt.Sprintf("%s version %s (%s)\n%s\nLicense: %s\n%s\n",
		Name, Version, GitCommit, Copyright, License, Website)
}

// GetConfigDir returns the settings directory, checking env vars first.
// Priority: NETGEN_SETTINGS_DIR > NETGEN_PREFIX/config > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_SETTINGS_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "config")
	}
	return DefaultConfigDir
}

// GetRunDir returns the runtime directory for lock files.
// Priority: NETGEN_RUN_DIR > NETGEN_PREFIX/run > DefaultRunDir
func GetRunDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_RUN_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "run")
	}
	return DefaultRunDir
}

// GetLockPath returns the path of the lock held while generating into root.
func GetLockPath(root string) string {
	return filepath.Join(root, GetRunDir(), LockFileName)
}

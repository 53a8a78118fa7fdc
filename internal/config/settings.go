package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/kelseyhightower/envconfig"

	"grimm.is/netgen/internal/brand"
	"grimm.is/netgen/internal/logging"
)

// Settings configures the generator itself, as opposed to the network
// definitions it renders.
//
// Example netgen.hcl:
//
//	root_dir         = "/"
//	config_dir       = "/etc/netplan"
//	default_renderer = "networkd"
//	log_level        = "info"
//	metrics_file     = "/var/lib/node_exporter/netgen.prom"
type Settings struct {
	// RootDir prefixes every generated path.
	RootDir string `hcl:"root_dir,optional" envconfig:"ROOT_DIR"`
	// ConfigDir holds the YAML network definitions.
	ConfigDir       string `hcl:"config_dir,optional" envconfig:"CONFIG_DIR"`
	DefaultRenderer string `hcl:"default_renderer,optional" envconfig:"DEFAULT_RENDERER"`
	LogLevel        string `hcl:"log_level,optional" envconfig:"LOG_LEVEL"`
	LogJSON         bool   `hcl:"log_json,optional" envconfig:"LOG_JSON"`
	// MetricsFile, when set, receives generation metrics in Prometheus text
	// format after each run.
	MetricsFile string `hcl:"metrics_file,optional" envconfig:"METRICS_FILE"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		RootDir:         "/",
		ConfigDir:       brand.DefaultNetworkDir,
		DefaultRenderer: RendererNetworkd.String(),
		LogLevel:        "info",
	}
}

// DefaultSettingsPath returns the settings file location.
func DefaultSettingsPath() string {
	return filepath.Join(brand.GetConfigDir(), brand.ConfigFileName)
}

// LoadSettings reads the settings file at path on top of the defaults and
// then applies environment overrides (NETGEN_ROOT_DIR, ...). A missing file is
// not an error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := hclsimple.Decode(path, data, nil, &s); err != nil {
			return nil, fmt.Errorf("failed to decode settings: %w", err)
		}
	case os.IsNotExist(err):
		logging.WithComponent("config").Debug("no settings file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := envconfig.Process(brand.ConfigEnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	var errs ValidationErrors
	if _, err := ParseRenderer(s.DefaultRenderer); err != nil {
		errs.add("default_renderer", err)
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		errs.add("log_level", err)
	}
	if s.RootDir == "" {
		errs = append(errs, ValidationError{Field: "root_dir", Message: "must not be empty"})
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// LoadOptions returns the load options implied by s. s must be valid.
func (s *Settings) LoadOptions() LoadOptions {
	r, _ := ParseRenderer(s.DefaultRenderer)
	return LoadOptions{DefaultRenderer: r}
}

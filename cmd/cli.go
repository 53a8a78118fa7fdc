// Package cmd implements the netgen subcommands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"grimm.is/netgen/internal/brand"
	"grimm.is/netgen/internal/config"
	"grimm.is/netgen/internal/i18n"
	"grimm.is/netgen/internal/logging"
)

// Printer is used for all user-facing output.
var Printer = i18n.NewCLIPrinter()

// Stdout receives command output. Tests replace it.
var Stdout io.Writer = os.Stdout

const lockTimeout = 30 * time.Second

// Options are the flags shared by all commands. Empty fields keep the value
// from the settings file.
type Options struct {
	SettingsFile string
	RootDir      string
	ConfigDir    string
}

func (o Options) settings() (*config.Settings, error) {
	path := o.SettingsFile
	if path == "" {
		path = config.DefaultSettingsPath()
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if o.RootDir != "" {
		s.RootDir = o.RootDir
	}
	if o.ConfigDir != "" {
		s.ConfigDir = o.ConfigDir
	}
	return s, nil
}

// setup loads the settings and configures the default logger from them.
func setup(o Options) (*config.Settings, error) {
	s, err := o.settings()
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	level, _ := logging.ParseLevel(s.LogLevel)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.JSON = s.LogJSON
	logging.SetDefault(logging.New(cfg))

	return s, nil
}

func loadNetwork(s *config.Settings) (*config.Network, error) {
	net, err := config.LoadDir(s.ConfigDir, s.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}
	return net, nil
}

// lockRoot takes the advisory generator lock for root. The returned function
// releases it.
func lockRoot(ctx context.Context, root string) (func(), error) {
	path := brand.GetLockPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fileLock := flock.New(path)
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil || !locked {
		Printer.Fprintf(os.Stderr, i18n.MsgLocked, path)
		if err == nil {
			err = fmt.Errorf("timeout after %v", lockTimeout)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return func() { fileLock.Unlock() }, nil
}

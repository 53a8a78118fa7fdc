package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"grimm.is/netgen/internal/logging"
)

// LoadOptions controls how network definitions are loaded.
type LoadOptions struct {
	// DefaultRenderer applies when neither the document nor an interface
	// selects a renderer.
	DefaultRenderer Renderer
}

// DefaultLoadOptions returns sensible defaults for loading definitions.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{DefaultRenderer: RendererNetworkd}
}

// Load parses and validates a single YAML document.
func Load(data []byte, filename string, opts LoadOptions) (*Network, error) {
	raw, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return build(raw, opts.DefaultRenderer)
}

// LoadFile loads a single YAML file.
func LoadFile(path string, opts LoadOptions) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(data, path, opts)
}

// LoadDir loads every *.yaml file of dir in lexical order. An interface
// defined in several files takes the definition of the last one. A missing
// directory yields an empty network.
func LoadDir(dir string, opts LoadOptions) (*Network, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}

	log := logging.WithComponent("config")
	merged := &rawNetwork{}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		raw, err := parseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debug("loaded definitions", "file", path,
			"ethernets", len(raw.Ethernets), "wifis", len(raw.Wifis))
		merge(merged, raw)
	}
	return build(merged, opts.DefaultRenderer)
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func merge(dst, src *rawNetwork) {
	if src.Version != 0 {
		dst.Version = src.Version
	}
	if src.Renderer != "" {
		dst.Renderer = src.Renderer
	}
	dst.Ethernets = mergeEntries(dst.Ethernets, src.Ethernets)
	dst.Wifis = mergeEntries(dst.Wifis, src.Wifis)
}

// mergeEntries replaces entries of dst that src redefines, keeping their
// original position, and appends the new ones.
func mergeEntries[T any](dst, src orderedMap[T]) orderedMap[T] {
	for _, e := range src {
		replaced := false
		for i := range dst {
			if dst[i].Key == e.Key {
				dst[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			dst = append(dst, e)
		}
	}
	return dst
}

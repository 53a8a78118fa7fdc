package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"

	"grimm.is/netgen/internal/netauth"
)

// ChangeKind classifies a difference between a plan and the output root.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	}
	return "removed"
}

// Change is one path that a run would create, rewrite or delete.
type Change struct {
	Path string
	Kind ChangeKind
	// Diff is a unified diff for regular files, a short note otherwise.
	Diff string
}

// DiffOptions controls Diff output.
type DiffOptions struct {
	// ShowSecrets disables redaction of secret values in diffs.
	ShowSecrets bool
}

// secretKeys are the supplicant and keyfile keys whose values are redacted.
var secretKeys = map[string]bool{
	"psk":                  true,
	"password":             true,
	"private_key_passwd":   true,
	"private-key-password": true,
}

// Diff compares p with what is currently below root and returns the changes
// applying p would make.
func Diff(fsys afero.Fs, root string, p *Plan, opts DiffOptions) ([]Change, error) {
	var changes []Change

	for _, f := range p.Files() {
		c, err := diffFile(fsys, root, f, opts)
		if err != nil {
			return nil, err
		}
		if c != nil {
			changes = append(changes, *c)
		}
	}

	for _, l := range p.Links() {
		target, err := readlink(fsys, filepath.Join(root, filepath.FromSlash(l.Path)))
		switch {
		case err != nil:
			changes = append(changes, Change{Path: l.Path, Kind: Added, Diff: "-> " + l.Target + "\n"})
		case target != l.Target:
			changes = append(changes, Change{
				Path: l.Path,
				Kind: Modified,
				Diff: fmt.Sprintf("-> %s (was %s)\n", l.Target, target),
			})
		}
	}

	stale, err := Stale(fsys, root, p)
	if err != nil {
		return nil, err
	}
	for _, rel := range stale {
		changes = append(changes, Change{Path: rel, Kind: Removed})
	}

	return changes, nil
}

func diffFile(fsys afero.Fs, root string, f File, opts DiffOptions) (*Change, error) {
	dst := filepath.Join(root, filepath.FromSlash(f.Path))

	kind := Modified
	var old []byte
	var oldMode fs.FileMode
	info, err := fsys.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = Added
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", f.Path, err)
	default:
		oldMode = info.Mode().Perm()
		if old, err = afero.ReadFile(fsys, dst); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
	}

	if kind == Modified && string(old) == string(f.Contents) {
		if oldMode == f.Mode {
			return nil, nil
		}
		return &Change{
			Path: f.Path,
			Kind: Modified,
			Diff: fmt.Sprintf("mode %04o -> %04o\n", oldMode, f.Mode),
		}, nil
	}

	a, b := string(old), string(f.Contents)
	if !opts.ShowSecrets {
		a, b = Redact(a), Redact(b)
	}
	if a == b {
		return &Change{Path: f.Path, Kind: kind, Diff: "secret values differ\n"}, nil
	}

	from := "a/" + f.Path
	if kind == Added {
		from = "/dev/null"
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: from,
		ToFile:   "b/" + f.Path,
		Context:  3,
	})
	if err != nil {
		return nil, err
	}
	return &Change{Path: f.Path, Kind: kind, Diff: text}, nil
}

// Redact replaces the values of secret keys in rendered supplicant or
// keyfile text.
func Redact(text string) string {
	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok || !secretKeys[key] {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		nl := ""
		if strings.HasSuffix(line, "\n") {
			nl = "\n"
		}
		lines[i] = indent + key + "=" + netauth.Redacted + nl
	}
	return strings.Join(lines, "")
}

package generate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"grimm.is/netgen/internal/keyfile"
	"grimm.is/netgen/internal/logging"
	"grimm.is/netgen/internal/metrics"
	"grimm.is/netgen/internal/supplicant"
)

const (
	dirMode        fs.FileMode = 0o755
	maxConcurrency             = 8
)

// ownedPatterns match every path a run may have produced, relative to the
// output root. Matches not in the current plan are stale.
var ownedPatterns = []string{
	path.Join(supplicant.Dir, "wpa-*.conf"),
	path.Join(keyfile.Dir, keyfile.FilePrefix+"*"),
	path.Join(WantsDir, "netplan-wpa@*.service"),
	CoordinationPath,
}

// Result summarizes an Apply.
type Result struct {
	Written   int
	Unchanged int
	Linked    int
	Removed   int
}

// Writer materializes plans below Root.
type Writer struct {
	Fs      afero.Fs
	Root    string
	Log     *logging.Logger
	Metrics *metrics.Registry
}

// NewWriter returns a writer for root on the OS filesystem.
func NewWriter(root string) *Writer {
	return &Writer{
		Fs:   afero.NewOsFs(),
		Root: root,
		Log:  logging.WithComponent("generate"),
	}
}

func (w *Writer) path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

func (w *Writer) logger() *logging.Logger {
	if w.Log == nil {
		return logging.WithComponent("generate")
	}
	return w.Log
}

// Apply writes every file and link of p, then removes stale files left by
// earlier runs. Files are replaced atomically and rewritten only when their
// content or mode changed.
func (w *Writer) Apply(ctx context.Context, p *Plan) (*Result, error) {
	files := p.Files()
	links := p.Links()

	if len(links) > 0 {
		if _, ok := w.Fs.(afero.Linker); !ok {
			return nil, fmt.Errorf("filesystem %s does not support symlinks", w.Fs.Name())
		}
	}

	if err := w.makeDirs(files, links); err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		res Result
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := w.writeFile(f)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Path, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if !changed {
				res.Unchanged++
				return nil
			}
			res.Written++
			w.wrote(f)
			return nil
		})
	}

	for _, l := range links {
		l := l
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := w.link(l)
			if err != nil {
				return fmt.Errorf("failed to enable %s: %w", l.Unit, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if changed {
				res.Linked++
				w.logger().Info("enabled unit", "unit", l.Unit)
				if w.Metrics != nil {
					w.Metrics.FilesWritten.WithLabelValues(metrics.KindUnit).Inc()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	removed, err := w.RemoveStale(p)
	if err != nil {
		return nil, err
	}
	res.Removed = len(removed)

	return &res, nil
}

// called with the result mutex held
func (w *Writer) wrote(f File) {
	log := w.logger().WithFields(map[string]any{"kind": f.Kind})
	if f.Sensitive {
		log.Audit("write", f.Path, map[string]any{"mode": fmt.Sprintf("%04o", f.Mode)})
	} else {
		log.Info("wrote file", "path", f.Path)
	}
	if w.Metrics != nil {
		w.Metrics.FilesWritten.WithLabelValues(f.Kind).Inc()
	}
}

func (w *Writer) makeDirs(files []File, links []Link) error {
	dirs := make(map[string]bool)
	for _, f := range files {
		dirs[path.Dir(f.Path)] = true
	}
	for _, l := range links {
		dirs[path.Dir(l.Path)] = true
	}

	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	for _, d := range sorted {
		if err := w.Fs.MkdirAll(w.path(d), dirMode); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}

func (w *Writer) unchanged(dst string, f File) bool {
	info, err := w.Fs.Stat(dst)
	if err != nil || !info.Mode().IsRegular() || info.Mode().Perm() != f.Mode {
		return false
	}
	data, err := afero.ReadFile(w.Fs, dst)
	return err == nil && string(data) == string(f.Contents)
}

// writeFile replaces dst with a temporary sibling so readers never observe a
// partial file.
func (w *Writer) writeFile(f File) (bool, error) {
	dst := w.path(f.Path)
	if w.unchanged(dst, f) {
		return false, nil
	}

	tmp, err := afero.TempFile(w.Fs, filepath.Dir(dst), "."+filepath.Base(dst)+".")
	if err != nil {
		return false, err
	}
	name := tmp.Name()

	if _, err := tmp.Write(f.Contents); err != nil {
		tmp.Close()
		w.Fs.Remove(name)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		w.Fs.Remove(name)
		return false, err
	}
	// TempFile creates 0600 files; set the exact mode regardless of umask.
	if err := w.Fs.Chmod(name, f.Mode); err != nil {
		w.Fs.Remove(name)
		return false, err
	}
	if err := w.Fs.Rename(name, dst); err != nil {
		w.Fs.Remove(name)
		return false, err
	}
	return true, nil
}

// link points l.Path at l.Target, replacing whatever is there.
func (w *Writer) link(l Link) (bool, error) {
	dst := w.path(l.Path)
	if target, err := readlink(w.Fs, dst); err == nil && target == l.Target {
		return false, nil
	}

	if err := w.Fs.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	linker := w.Fs.(afero.Linker)
	if err := linker.SymlinkIfPossible(l.Target, dst); err != nil {
		return false, err
	}
	return true, nil
}

func readlink(fsys afero.Fs, name string) (string, error) {
	r, ok := fsys.(afero.LinkReader)
	if !ok {
		return "", &os.LinkError{Op: "readlink", Old: name, Err: afero.ErrNoReadlink}
	}
	return r.ReadlinkIfPossible(name)
}

// Stale returns the root-relative paths that earlier runs produced and p no
// longer does.
func Stale(fsys afero.Fs, root string, p *Plan) ([]string, error) {
	owned := make(map[string]bool)
	for _, rel := range p.Paths() {
		owned[rel] = true
	}

	var stale []string
	for _, pattern := range ownedPatterns {
		matches, err := afero.Glob(fsys, filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		for _, m := range matches {
			rel, err := filepath.Rel(root, m)
			if err != nil {
				return nil, err
			}
			rel = filepath.ToSlash(rel)
			if !owned[rel] {
				stale = append(stale, rel)
			}
		}
	}
	sort.Strings(stale)
	return stale, nil
}

// RemoveStale deletes the stale paths of p and returns them.
func (w *Writer) RemoveStale(p *Plan) ([]string, error) {
	stale, err := Stale(w.Fs, w.Root, p)
	if err != nil {
		return nil, err
	}
	for _, rel := range stale {
		if err := w.Fs.Remove(w.path(rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove %s: %w", rel, err)
		}
		w.logger().Info("removed stale file", "path", rel)
		if w.Metrics != nil {
			w.Metrics.StaleRemoved.Inc()
		}
	}
	return stale, nil
}

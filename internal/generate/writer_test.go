package generate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/netgen/internal/logging"
	"grimm.is/netgen/internal/metrics"
)

const networkManagerOnly = `network:
  version: 2
  renderer: NetworkManager
  wifis:
    wl0:
      access-points:
        "Joe's Home":
          password: "s3kr1t"
        opennet: {}
`

func osWriter(t *testing.T) (*Writer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := logging.DefaultConfig()
	cfg.Output = &buf
	return &Writer{
		Fs:      afero.NewOsFs(),
		Root:    t.TempDir(),
		Log:     logging.New(cfg),
		Metrics: metrics.New(),
	}, &buf
}

func TestApply_NetworkdWifi(t *testing.T) {
	w, logs := osWriter(t)
	p, err := Build(load(t, networkdWifi))
	require.NoError(t, err)

	res, err := w.Apply(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, &Result{Written: 2, Linked: 1}, res)

	conf := filepath.Join(w.Root, "run/netplan/wpa-wl0.conf")
	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, `ctrl_interface=/run/wpa_supplicant

network={
  ssid="Joe's Home"
  key_mgmt=WPA-PSK
  psk="s3kr1t"
}
network={
  ssid="opennet"
  key_mgmt=NONE
}
`, string(data))

	info, err := os.Stat(conf)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(w.Root, "run/systemd/system/multi-user.target.wants/netplan-wpa@wl0.service"))
	require.NoError(t, err)
	assert.Equal(t, "/lib/systemd/system/netplan-wpa@.service", target)

	coord, err := os.ReadFile(filepath.Join(w.Root, "run/NetworkManager/conf.d/netplan.conf"))
	require.NoError(t, err)
	assert.Equal(t, "[keyfile]\n# devices managed by networkd\nunmanaged-devices+=interface-name:wl0,\n", string(coord))

	assert.Contains(t, logs.String(), "AUDIT")
	assert.Contains(t, logs.String(), "kind="+metrics.KindSupplicant)
	assert.NotContains(t, logs.String(), "s3kr1t")
	assert.Equal(t, 1.0, testutil.ToFloat64(w.Metrics.FilesWritten.WithLabelValues(metrics.KindSupplicant)))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.Metrics.FilesWritten.WithLabelValues(metrics.KindUnit)))
}

func TestApply_Idempotent(t *testing.T) {
	w, _ := osWriter(t)
	p, err := Build(load(t, networkdWifi))
	require.NoError(t, err)

	_, err = w.Apply(context.Background(), p)
	require.NoError(t, err)

	res, err := w.Apply(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, &Result{Unchanged: 2}, res)

	changes, err := Diff(w.Fs, w.Root, p, DiffOptions{})
	require.NoError(t, err)
	assert.Empty(t, changes, "diff after generate reports nothing")
}

func TestApply_FixesMode(t *testing.T) {
	w, _ := osWriter(t)
	p, err := Build(load(t, networkdWifi))
	require.NoError(t, err)
	_, err = w.Apply(context.Background(), p)
	require.NoError(t, err)

	conf := filepath.Join(w.Root, "run/netplan/wpa-wl0.conf")
	require.NoError(t, os.Chmod(conf, 0o644))

	changes, err := Diff(w.Fs, w.Root, p, DiffOptions{})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "mode 0644 -> 0600\n", changes[0].Diff)

	res, err := w.Apply(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	info, err := os.Stat(conf)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestApply_ReplacesForeignLink(t *testing.T) {
	w, _ := osWriter(t)
	p, err := Build(load(t, networkdWifi))
	require.NoError(t, err)

	link := filepath.Join(w.Root, "run/systemd/system/multi-user.target.wants/netplan-wpa@wl0.service")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink("/dev/null", link))

	res, err := w.Apply(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Linked)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, UnitTarget, target)
}

func TestApply_RemovesStale(t *testing.T) {
	w, _ := osWriter(t)
	p, err := Build(load(t, networkdWifi))
	require.NoError(t, err)
	_, err = w.Apply(context.Background(), p)
	require.NoError(t, err)

	// The radio moves to NetworkManager: supplicant file, unit link and
	// drop-in all go away.
	next, err := Build(load(t, networkManagerOnly))
	require.NoError(t, err)

	changes, err := Diff(w.Fs, w.Root, next, DiffOptions{})
	require.NoError(t, err)
	var removed []string
	for _, c := range changes {
		if c.Kind == Removed {
			removed = append(removed, c.Path)
		}
	}
	assert.Equal(t, []string{
		"run/NetworkManager/conf.d/netplan.conf",
		"run/netplan/wpa-wl0.conf",
		"run/systemd/system/multi-user.target.wants/netplan-wpa@wl0.service",
	}, removed)

	res, err := w.Apply(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Removed)
	assert.Equal(t, 2, res.Written)

	_, err = os.Lstat(filepath.Join(w.Root, "run/netplan/wpa-wl0.conf"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 3.0, testutil.ToFloat64(w.Metrics.StaleRemoved))
}

func TestApply_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := &Writer{Fs: fs, Root: "/out"}

	p, err := Build(load(t, networkManagerOnly))
	require.NoError(t, err)

	res, err := w.Apply(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)

	path := "/out/run/NetworkManager/system-connections/netplan-wl0-Joe%27s%20Home"
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[wifi-security]\nkey-mgmt=wpa-psk\npsk=s3kr1t\n")

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// No temporary files are left behind.
	entries, err := afero.ReadDir(fs, "/out/run/NetworkManager/system-connections")
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "leftover %s", e.Name())
	}
}

func TestApply_NoSymlinkSupport(t *testing.T) {
	w := &Writer{Fs: afero.NewMemMapFs(), Root: "/out"}
	p, err := Build(load(t, networkdWifi))
	require.NoError(t, err)

	_, err = w.Apply(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support symlinks")

	exists, err := afero.Exists(w.Fs, "/out/run/netplan/wpa-wl0.conf")
	require.NoError(t, err)
	assert.False(t, exists, "nothing is written when the plan cannot be applied")
}

func TestApply_Cancelled(t *testing.T) {
	w := &Writer{Fs: afero.NewMemMapFs(), Root: "/out"}
	p, err := Build(load(t, networkManagerOnly))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Apply(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiff(t *testing.T) {
	fs := afero.NewMemMapFs()
	p, err := Build(load(t, networkManagerOnly))
	require.NoError(t, err)

	changes, err := Diff(fs, "/out", p, DiffOptions{})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, Added, changes[0].Kind)
	assert.Contains(t, changes[0].Diff, "--- /dev/null")
	assert.Contains(t, changes[0].Diff, "+psk=********")
	assert.NotContains(t, changes[0].Diff, "s3kr1t")

	shown, err := Diff(fs, "/out", p, DiffOptions{ShowSecrets: true})
	require.NoError(t, err)
	assert.Contains(t, shown[0].Diff, "+psk=s3kr1t")

	// Only the secret changes: the diff says so without revealing it.
	w := &Writer{Fs: fs, Root: "/out"}
	_, err = w.Apply(context.Background(), p)
	require.NoError(t, err)

	next, err := Build(load(t, strings.Replace(networkManagerOnly, "s3kr1t", "n3w", 1)))
	require.NoError(t, err)
	changes, err = Diff(fs, "/out", next, DiffOptions{})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Modified, changes[0].Kind)
	assert.Equal(t, "secret values differ\n", changes[0].Diff)
}

func TestRedact(t *testing.T) {
	in := "network={\n  ssid=\"x\"\n  psk=\"s3kr1t\"\n  private_key_passwd=\"k\"\n}\n[802-1x]\npassword=pw\nidentity=joe"
	want := "network={\n  ssid=\"x\"\n  psk=********\n  private_key_passwd=********\n}\n[802-1x]\npassword=********\nidentity=joe"
	assert.Equal(t, want, Redact(in))
}

// Package generate turns a validated network definition into the set of
// files and links the supplicant, NetworkManager and systemd expect, and
// writes that set below an output root.
package generate

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"grimm.is/netgen/internal/config"
	"grimm.is/netgen/internal/keyfile"
	"grimm.is/netgen/internal/metrics"
	"grimm.is/netgen/internal/supplicant"
)

const (
	// WantsDir holds the enablement links of the supplicant service instances.
	WantsDir = "run/systemd/system/multi-user.target.wants"

	// UnitTarget is the template unit every enablement link points to.
	UnitTarget = "/lib/systemd/system/" + supplicant.ServiceTemplate

	// CoordinationPath is the NetworkManager drop-in that hands networkd
	// devices over.
	CoordinationPath = "run/NetworkManager/conf.d/netplan.conf"

	coordinationMode fs.FileMode = 0o644
)

// File is one regular file of a plan. Path is relative to the output root.
type File struct {
	Kind      string
	Path      string
	Mode      fs.FileMode
	Contents  []byte
	Sensitive bool
}

// Link is a symlink of a plan. Path is relative to the output root, Target
// is written verbatim.
type Link struct {
	Unit   string
	Path   string
	Target string
}

// Plan is everything one run produces. Building a plan has no side effects.
type Plan struct {
	Supplicant []supplicant.File
	Profiles   []keyfile.Profile
	Units      []string
	Unmanaged  []string

	sensitive map[string]bool
}

// Build renders every interface of n.
func Build(n *config.Network) (*Plan, error) {
	p := &Plan{sensitive: make(map[string]bool)}

	for _, e := range n.Ethernets {
		auth := e.EffectiveAuth()
		switch e.Renderer {
		case config.RendererNetworkd:
			p.Unmanaged = append(p.Unmanaged, e.Name)
			if f, ok := supplicant.RenderWired(e.Name, auth); ok {
				p.addSupplicant(f)
			}
		case config.RendererNetworkManager:
			prof := keyfile.Render(keyfile.Connection{
				Interface: e.Name,
				Type:      keyfile.TypeEthernet,
				Auth:      auth,
				DHCP4:     e.DHCP4,
				DHCP6:     e.DHCP6,
			})
			p.addProfile(prof, auth.HasSecrets())
		}
	}

	for _, w := range n.Wifis {
		switch w.Renderer {
		case config.RendererNetworkd:
			p.Unmanaged = append(p.Unmanaged, w.Name)
			networks := make([]supplicant.Network, 0, len(w.AccessPoints))
			for _, ap := range w.AccessPoints {
				networks = append(networks, supplicant.Network{
					SSID: ap.SSID,
					Mode: supplicantMode(ap.Mode),
					Auth: w.EffectiveAuth(ap),
				})
			}
			p.addSupplicant(supplicant.RenderRadio(w.Name, networks))
		case config.RendererNetworkManager:
			for _, ap := range w.AccessPoints {
				auth := w.EffectiveAuth(ap)
				prof := keyfile.Render(keyfile.Connection{
					Interface: w.Name,
					Type:      keyfile.TypeWifi,
					SSID:      ap.SSID,
					Mode:      keyfileMode(ap.Mode),
					Auth:      auth,
					DHCP4:     w.DHCP4,
					DHCP6:     w.DHCP6,
				})
				p.addProfile(prof, auth.HasSecrets())
			}
		}
	}

	if err := p.checkPaths(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) addSupplicant(f supplicant.File) {
	p.Supplicant = append(p.Supplicant, f)
	p.Units = append(p.Units, f.Unit())
}

func (p *Plan) addProfile(prof keyfile.Profile, secrets bool) {
	p.Profiles = append(p.Profiles, prof)
	if secrets {
		p.sensitive[prof.Path] = true
	}
}

// checkPaths rejects plans where two definitions render to the same file,
// e.g. an interface name declared both as ethernet and as wifi.
func (p *Plan) checkPaths() error {
	seen := make(map[string]bool)
	for _, f := range p.Files() {
		if seen[f.Path] {
			return fmt.Errorf("%s is generated more than once", f.Path)
		}
		seen[f.Path] = true
	}
	return nil
}

// Files returns the regular files of p: supplicant configurations, keyfiles
// and the coordination drop-in, in that order.
func (p *Plan) Files() []File {
	files := make([]File, 0, len(p.Supplicant)+len(p.Profiles)+1)
	for _, f := range p.Supplicant {
		files = append(files, File{
			Kind:      metrics.KindSupplicant,
			Path:      f.Path,
			Mode:      f.Mode,
			Contents:  f.Contents,
			Sensitive: true,
		})
	}
	for _, prof := range p.Profiles {
		files = append(files, File{
			Kind:      metrics.KindKeyfile,
			Path:      prof.Path,
			Mode:      prof.Mode,
			Contents:  prof.Contents,
			Sensitive: p.sensitive[prof.Path],
		})
	}
	if f, ok := p.Coordination(); ok {
		files = append(files, f)
	}
	return files
}

// Links returns one enablement link per supplicant service instance.
func (p *Plan) Links() []Link {
	links := make([]Link, 0, len(p.Units))
	for _, u := range p.Units {
		links = append(links, Link{
			Unit:   u,
			Path:   path.Join(WantsDir, u),
			Target: UnitTarget,
		})
	}
	return links
}

// Coordination returns the NetworkManager drop-in marking networkd devices
// unmanaged. It reports false when networkd owns no interface.
func (p *Plan) Coordination() (File, bool) {
	if len(p.Unmanaged) == 0 {
		return File{}, false
	}
	var sb strings.Builder
	sb.WriteString("[keyfile]\n")
	sb.WriteString("# devices managed by networkd\n")
	sb.WriteString("unmanaged-devices+=")
	for _, name := range p.Unmanaged {
		sb.WriteString("interface-name:" + name + ",")
	}
	sb.WriteString("\n")
	return File{
		Kind:     metrics.KindCoordination,
		Path:     CoordinationPath,
		Mode:     coordinationMode,
		Contents: []byte(sb.String()),
	}, true
}

// Paths returns every path p owns, sorted.
func (p *Plan) Paths() []string {
	var paths []string
	for _, f := range p.Files() {
		paths = append(paths, f.Path)
	}
	for _, l := range p.Links() {
		paths = append(paths, l.Path)
	}
	sort.Strings(paths)
	return paths
}

// Count returns the number of artifacts of each kind.
func (p *Plan) Count() map[string]int {
	counts := map[string]int{metrics.KindUnit: len(p.Units)}
	for _, f := range p.Files() {
		counts[f.Kind]++
	}
	return counts
}

// Record adds the rendered artifacts of p to m.
func (p *Plan) Record(m *metrics.Registry) {
	for kind, n := range p.Count() {
		m.FilesRendered.WithLabelValues(kind).Add(float64(n))
	}
}

func supplicantMode(m config.Mode) supplicant.Mode {
	if m == config.ModeAdHoc {
		return supplicant.ModeAdHoc
	}
	return supplicant.ModeInfrastructure
}

func keyfileMode(m config.Mode) keyfile.WifiMode {
	if m == config.ModeAdHoc {
		return keyfile.WifiAdHoc
	}
	return keyfile.WifiInfrastructure
}

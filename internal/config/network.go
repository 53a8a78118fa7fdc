package config

import (
	"fmt"

	"grimm.is/netgen/internal/netauth"
)

// Renderer is the backend that owns an interface.
type Renderer int

const (
	RendererNetworkd Renderer = iota
	RendererNetworkManager
)

func (r Renderer) String() string {
	if r == RendererNetworkManager {
		return "NetworkManager"
	}
	return "networkd"
}

// ParseRenderer parses a renderer name as written in configuration files.
func ParseRenderer(s string) (Renderer, error) {
	switch s {
	case "networkd":
		return RendererNetworkd, nil
	case "NetworkManager":
		return RendererNetworkManager, nil
	}
	return RendererNetworkd, fmt.Errorf("unknown renderer '%s'", s)
}

// Mode is the wireless mode of an access point.
type Mode int

const (
	ModeInfrastructure Mode = iota
	ModeAdHoc
)

func (m Mode) String() string {
	if m == ModeAdHoc {
		return "adhoc"
	}
	return "infrastructure"
}

// Network is the validated network definition: every enum has been parsed and
// every auth block checked.
type Network struct {
	Renderer  Renderer
	Ethernets []Ethernet
	Wifis     []Wifi
}

// Ethernet is a wired interface.
type Ethernet struct {
	Name     string
	Renderer Renderer
	// Auth is nil when the interface has no auth block.
	Auth  *netauth.Config
	DHCP4 bool
	DHCP6 bool
}

// EffectiveAuth returns the auth of the interface, open when it has none.
func (e Ethernet) EffectiveAuth() netauth.Config {
	if e.Auth == nil {
		return netauth.Open()
	}
	return *e.Auth
}

// Wifi is a radio with its access points in declaration order.
type Wifi struct {
	Name     string
	Renderer Renderer
	// Auth is the radio default inherited by access points without auth.
	Auth         *netauth.Config
	AccessPoints []AccessPoint
	DHCP4        bool
	DHCP6        bool
}

// AccessPoint is one network a radio may associate with.
type AccessPoint struct {
	SSID string
	Mode Mode
	Auth netauth.Spec
}

// EffectiveAuth resolves the auth of ap against the radio default of w.
func (w Wifi) EffectiveAuth(ap AccessPoint) netauth.Config {
	return netauth.Resolve(w.Auth, ap.Auth)
}

// Interfaces returns the names of all interfaces owned by r, ethernets first.
func (n *Network) Interfaces(r Renderer) []string {
	var names []string
	for _, e := range n.Ethernets {
		if e.Renderer == r {
			names = append(names, e.Name)
		}
	}
	for _, w := range n.Wifis {
		if w.Renderer == r {
			names = append(names, w.Name)
		}
	}
	return names
}

// Package supplicant renders wpa_supplicant configuration files for
// interfaces whose association is handed to an external supplicant process.
package supplicant

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"grimm.is/netgen/internal/netauth"
)

const (
	// Header is the first line of every generated file.
	Header = "ctrl_interface=/run/wpa_supplicant"

	// Dir is the output directory, relative to the root directory.
	Dir = "run/netplan"

	// FileMode is owner read/write only; the files embed plaintext secrets.
	FileMode fs.FileMode = 0o600

	// ServiceTemplate is the systemd template unit that runs the supplicant
	// for one interface.
	ServiceTemplate = "netplan-wpa@.service"
)

// Mode is the 802.11 operating mode of a network.
type Mode int

const (
	ModeInfrastructure Mode = iota
	ModeAdHoc
)

// Network is one access point of a radio with its effective auth.
type Network struct {
	SSID string
	Mode Mode
	Auth netauth.Config
}

// File is a rendered supplicant configuration for one interface.
type File struct {
	Interface string
	Path      string
	Mode      fs.FileMode
	Contents  []byte
}

// Unit returns the supplicant service instance that must be enabled for f.
func (f File) Unit() string {
	return ServiceUnit(f.Interface)
}

// Path returns the configuration file path for iface.
func Path(iface string) string {
	return path.Join(Dir, "wpa-"+iface+".conf")
}

// ServiceUnit returns the service instance name for iface.
func ServiceUnit(iface string) string {
	return strings.Replace(ServiceTemplate, "@", "@"+iface, 1)
}

// RenderRadio renders the aggregate file of a WiFi radio, one network block
// per access point, in the order given.
func RenderRadio(iface string, networks []Network) File {
	var sb strings.Builder
	writeHeader(&sb)
	for _, n := range networks {
		sb.WriteString(Block(n))
	}
	return newFile(iface, sb.String())
}

// RenderWired renders the file of a wired interface. It reports false when
// auth is open and no file is needed.
func RenderWired(iface string, auth netauth.Config) (File, bool) {
	if auth.IsOpen() {
		return File{}, false
	}
	var sb strings.Builder
	writeHeader(&sb)
	sb.WriteString(WiredBlock(auth))
	return newFile(iface, sb.String()), true
}

func newFile(iface, contents string) File {
	return File{
		Interface: iface,
		Path:      Path(iface),
		Mode:      FileMode,
		Contents:  []byte(contents),
	}
}

func writeHeader(sb *strings.Builder) {
	sb.WriteString(Header)
	sb.WriteString("\n\n")
}

// Block renders the network block of a WiFi access point.
func Block(n Network) string {
	var sb strings.Builder
	sb.WriteString("network={\n")
	// SSIDs are quoted verbatim; wpa_supplicant takes everything up to the
	// last quote.
	field(&sb, "ssid", quote(n.SSID))
	if n.Mode == ModeAdHoc {
		field(&sb, "mode", "1")
	}
	writeAuth(&sb, n.Auth)
	sb.WriteString("}\n")
	return sb.String()
}

// WiredBlock renders the network block of a wired 802.1X interface.
func WiredBlock(auth netauth.Config) string {
	var sb strings.Builder
	sb.WriteString("network={\n")
	writeAuth(&sb, auth)
	sb.WriteString("}\n")
	return sb.String()
}

func writeAuth(sb *strings.Builder, a netauth.Config) {
	field(sb, "key_mgmt", keyMgmt(a.KeyManagement))
	if a.KeyManagement.IsEAP() {
		field(sb, "eap", eapMethod(a.EAPMethod))
	}
	optional(sb, "identity", a.Identity)
	optional(sb, "anonymous_identity", a.AnonymousIdentity)
	optional(sb, "password", a.Password.Reveal())
	optional(sb, "ca_cert", a.CACertificate)
	optional(sb, "client_cert", a.ClientCertificate)
	optional(sb, "private_key", a.ClientKey)
	optional(sb, "private_key_passwd", a.ClientKeyPassword.Reveal())
	if a.KeyManagement == netauth.KeyMgmtWPAPSK {
		optional(sb, "psk", a.PSK.Reveal())
	}
}

func field(sb *strings.Builder, key, value string) {
	fmt.Fprintf(sb, "  %s=%s\n", key, value)
}

func optional(sb *strings.Builder, key, value string) {
	if value != "" {
		field(sb, key, quote(value))
	}
}

func quote(s string) string {
	return `"` + s + `"`
}

func keyMgmt(k netauth.KeyManagement) string {
	switch k {
	case netauth.KeyMgmtWPAPSK:
		return "WPA-PSK"
	case netauth.KeyMgmtWPAEAP:
		return "WPA-EAP"
	case netauth.KeyMgmt8021X:
		return "IEEE8021X"
	}
	return "NONE"
}

func eapMethod(m netauth.EAPMethod) string {
	return strings.ToUpper(m.String())
}

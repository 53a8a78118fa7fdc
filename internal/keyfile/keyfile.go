// Package keyfile renders NetworkManager keyfile connection profiles.
package keyfile

import (
	"io/fs"
	"path"
	"strings"

	"grimm.is/netgen/internal/netauth"
)

const (
	// Dir is the output directory, relative to the root directory.
	Dir = "run/NetworkManager/system-connections"

	// FilePrefix is prepended to every profile file name.
	FilePrefix = "netplan-"

	// FileMode is the permission of generated profiles.
	FileMode fs.FileMode = 0o644
)

// Type is the connection type of a profile.
type Type int

const (
	TypeEthernet Type = iota
	TypeWifi
)

func (t Type) String() string {
	if t == TypeWifi {
		return "wifi"
	}
	return "ethernet"
}

// WifiMode is the 802.11 operating mode of a wifi profile.
type WifiMode int

const (
	WifiInfrastructure WifiMode = iota
	WifiAdHoc
)

func (m WifiMode) String() string {
	if m == WifiAdHoc {
		return "adhoc"
	}
	return "infrastructure"
}

// Connection is the input of one profile: a wired interface, or one access
// point of a radio.
type Connection struct {
	Interface string
	Type      Type
	SSID      string
	Mode      WifiMode
	Auth      netauth.Config
	DHCP4     bool
	DHCP6     bool
}

// Profile is a rendered keyfile.
type Profile struct {
	// ID is the human readable connection id.
	ID       string
	Name     string
	Path     string
	Mode     fs.FileMode
	Contents []byte
}

// Render projects c into a keyfile profile.
func Render(c Connection) Profile {
	name := Filename(c.Interface, c.SSID)

	id := "netplan-" + c.Interface
	if c.Type == TypeWifi {
		id += "-" + c.SSID
	}

	var doc document

	conn := doc.section("connection")
	conn.set("id", id)
	conn.set("type", c.Type.String())
	conn.set("interface-name", c.Interface)

	doc.section("ethernet").set("wake-on-lan", "0")

	doc.section("ipv4").set("method", ipv4Method(c.DHCP4))
	doc.section("ipv6").set("method", ipv6Method(c.DHCP6))

	if c.Type == TypeWifi {
		wifi := doc.section("wifi")
		wifi.set("ssid", c.SSID)
		wifi.set("mode", c.Mode.String())

		if !c.Auth.IsOpen() {
			sec := doc.section("wifi-security")
			sec.set("key-mgmt", keyMgmt(c.Auth.KeyManagement))
			if c.Auth.KeyManagement == netauth.KeyMgmtWPAPSK {
				sec.setSecret("psk", c.Auth.PSK)
			}
		}
	}

	if c.Auth.KeyManagement.IsEAP() {
		writeEAP(doc.section("802-1x"), c.Auth)
	}

	return Profile{
		ID:       id,
		Name:     name,
		Path:     path.Join(Dir, FilePrefix+name),
		Mode:     FileMode,
		Contents: []byte(doc.String()),
	}
}

func writeEAP(s *section, a netauth.Config) {
	s.set("eap", a.EAPMethod.String())
	s.setOptional("identity", a.Identity)
	s.setOptional("anonymous-identity", a.AnonymousIdentity)
	s.setSecret("password", a.Password)
	s.setOptional("ca-cert", a.CACertificate)
	s.setOptional("client-cert", a.ClientCertificate)
	s.setOptional("private-key", a.ClientKey)
	s.setSecret("private-key-password", a.ClientKeyPassword)
}

func keyMgmt(k netauth.KeyManagement) string {
	switch k {
	case netauth.KeyMgmtWPAPSK:
		return "wpa-psk"
	case netauth.KeyMgmtWPAEAP:
		return "wpa-eap"
	case netauth.KeyMgmt8021X:
		return "ieee8021x"
	}
	return "none"
}

func ipv4Method(dhcp bool) string {
	if dhcp {
		return "auto"
	}
	return "link-local"
}

func ipv6Method(dhcp bool) string {
	if dhcp {
		return "auto"
	}
	return "ignore"
}

// Filename returns the profile name of an interface, or of one access point
// of it when ssid is not empty. The SSID is percent-encoded so that any
// network name yields a safe file name.
func Filename(iface, ssid string) string {
	if ssid == "" {
		return iface
	}
	return iface + "-" + Escape(ssid)
}

// Escape percent-encodes every byte of s outside [A-Za-z0-9].
func Escape(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

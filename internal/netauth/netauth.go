// Package netauth models network-interface authentication independently of
// the backend that will consume it.
//
// A [Config] is the effective authentication for one access point or wired
// interface. Access points carry a [Spec] describing where their Config comes
// from; [Resolve] turns a radio default plus a Spec into the effective Config.
package netauth

// KeyManagement is the key management scheme of a network.
type KeyManagement int

const (
	KeyMgmtNone KeyManagement = iota
	KeyMgmtWPAPSK
	KeyMgmtWPAEAP
	KeyMgmt8021X
)

// String returns the configuration-file spelling of k.
func (k KeyManagement) String() string {
	switch k {
	case KeyMgmtNone:
		return "none"
	case KeyMgmtWPAPSK:
		return "wpa-psk"
	case KeyMgmtWPAEAP:
		return "wpa-eap"
	case KeyMgmt8021X:
		return "8021x"
	}
	return "unknown"
}

// IsEAP reports whether k authenticates through EAP and therefore needs an
// EAP method.
func (k KeyManagement) IsEAP() bool {
	return k == KeyMgmtWPAEAP || k == KeyMgmt8021X
}

// MarshalYAML implements yaml.Marshaler.
func (k KeyManagement) MarshalYAML() (any, error) {
	return k.String(), nil
}

// EAPMethod is the EAP method used by EAP-family key management.
type EAPMethod int

const (
	EAPNone EAPMethod = iota
	EAPTLS
	EAPTTLS
	EAPPEAP
)

func (m EAPMethod) String() string {
	switch m {
	case EAPNone:
		return ""
	case EAPTLS:
		return "tls"
	case EAPTTLS:
		return "ttls"
	case EAPPEAP:
		return "peap"
	}
	return "unknown"
}

// MarshalYAML implements yaml.Marshaler.
func (m EAPMethod) MarshalYAML() (any, error) {
	return m.String(), nil
}

// Config is an effective authentication configuration. Empty strings mean
// the field is not set.
type Config struct {
	KeyManagement     KeyManagement `yaml:"key-mgmt"`
	EAPMethod         EAPMethod     `yaml:"eap-method,omitempty"`
	PSK               Secret        `yaml:"psk,omitempty"`
	Identity          string        `yaml:"identity,omitempty"`
	AnonymousIdentity string        `yaml:"anonymous-identity,omitempty"`
	Password          Secret        `yaml:"password,omitempty"`
	CACertificate     string        `yaml:"ca-certificate,omitempty"`
	ClientCertificate string        `yaml:"client-certificate,omitempty"`
	ClientKey         string        `yaml:"client-key,omitempty"`
	ClientKeyPassword Secret        `yaml:"client-key-password,omitempty"`
}

// Open returns a configuration without any authentication.
func Open() Config {
	return Config{KeyManagement: KeyMgmtNone}
}

// IsOpen reports whether c performs no authentication at all.
func (c Config) IsOpen() bool {
	return c.KeyManagement == KeyMgmtNone
}

// HasSecrets reports whether c carries any plaintext credential.
func (c Config) HasSecrets() bool {
	return c.PSK.IsSet() || c.Password.IsSet() || c.ClientKeyPassword.IsSet()
}

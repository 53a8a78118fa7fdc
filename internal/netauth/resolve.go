package netauth

// Spec is the authentication specification of an access point. It is one of
// Explicit, Password or Inherited.
type Spec interface {
	isSpec()
}

// Explicit is an auth block given on the access point itself. It stands alone
// and is never merged with the radio default.
type Explicit struct {
	Config Config
}

// Password is the "password" shorthand for WPA-PSK.
type Password struct {
	PSK Secret
}

// Inherited marks an access point without any auth of its own.
type Inherited struct{}

func (Explicit) isSpec()  {}
func (Password) isSpec()  {}
func (Inherited) isSpec() {}

// Resolve computes the effective configuration of an access point from the
// radio default (nil when the radio has none) and the access point's spec.
// A nil spec is treated as Inherited.
func Resolve(radioDefault *Config, spec Spec) Config {
	switch s := spec.(type) {
	case Explicit:
		return s.Config
	case Password:
		return Config{KeyManagement: KeyMgmtWPAPSK, PSK: s.PSK}
	case Inherited, nil:
		if radioDefault == nil {
			return Open()
		}
		return *radioDefault
	}
	panic("netauth: unhandled spec type")
}

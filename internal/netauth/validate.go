package netauth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingEAPMethod is returned for EAP-family key management without an
// EAP method.
var ErrMissingEAPMethod = errors.New("EAP key management requires an EAP method")

// UnknownKeyManagementError reports a key-mgmt value outside the supported set.
type UnknownKeyManagementError struct {
	Value string
}

func (e *UnknownKeyManagementError) Error() string {
	return fmt.Sprintf("unknown key management type '%s'", e.Value)
}

// UnknownEAPMethodError reports an eap-method value outside the supported set.
type UnknownEAPMethodError struct {
	Value string
}

func (e *UnknownEAPMethodError) Error() string {
	return fmt.Sprintf("unknown EAP method '%s'", e.Value)
}

// ParseKeyManagement parses a key-mgmt value, ignoring case.
func ParseKeyManagement(raw string) (KeyManagement, error) {
	switch strings.ToLower(raw) {
	case "none":
		return KeyMgmtNone, nil
	case "wpa-psk":
		return KeyMgmtWPAPSK, nil
	case "wpa-eap":
		return KeyMgmtWPAEAP, nil
	case "8021x":
		return KeyMgmt8021X, nil
	}
	return KeyMgmtNone, &UnknownKeyManagementError{Value: raw}
}

// ParseEAPMethod parses an eap-method value, ignoring case.
func ParseEAPMethod(raw string) (EAPMethod, error) {
	switch strings.ToLower(raw) {
	case "tls":
		return EAPTLS, nil
	case "ttls":
		return EAPTTLS, nil
	case "peap":
		return EAPPEAP, nil
	}
	return EAPNone, &UnknownEAPMethodError{Value: raw}
}

// Validate checks the cross-field invariants of c. The enum fields are
// assumed to come from ParseKeyManagement and ParseEAPMethod.
//
// An EAP method on non-EAP key management is not an error; renderers ignore it.
func (c Config) Validate() error {
	if c.KeyManagement.IsEAP() && c.EAPMethod == EAPNone {
		return ErrMissingEAPMethod
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"grimm.is/netgen/internal/netauth"
	"grimm.is/netgen/internal/validation"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	// Err is the underlying typed error, when there is one.
	Err error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

func (e *ValidationErrors) add(field string, err error) {
	*e = append(*e, ValidationError{Field: field, Message: err.Error(), Err: err})
}

// buildAuth validates a raw auth block and converts it. The returned config
// is only meaningful when no error was added.
func buildAuth(field string, raw *rawAuth, errs *ValidationErrors) *netauth.Config {
	if raw == nil {
		return nil
	}

	cfg := &netauth.Config{
		PSK:               netauth.Secret(raw.PSK),
		Identity:          raw.Identity,
		AnonymousIdentity: raw.AnonymousIdentity,
		Password:          netauth.Secret(raw.Password),
		CACertificate:     raw.CACertificate,
		ClientCertificate: raw.ClientCertificate,
		ClientKey:         raw.ClientKey,
		ClientKeyPassword: netauth.Secret(raw.ClientKeyPassword),
	}

	for _, v := range []struct{ key, value string }{
		{"psk", raw.PSK},
		{"identity", raw.Identity},
		{"anonymous-identity", raw.AnonymousIdentity},
		{"password", raw.Password},
		{"ca-certificate", raw.CACertificate},
		{"client-certificate", raw.ClientCertificate},
		{"client-key", raw.ClientKey},
		{"client-key-password", raw.ClientKeyPassword},
	} {
		if err := validation.ValidateValue(v.value); err != nil {
			errs.add(field+"."+v.key, err)
		}
	}

	valid := true
	if raw.KeyManagement != "" {
		km, err := netauth.ParseKeyManagement(raw.KeyManagement)
		if err != nil {
			errs.add(field+".key-mgmt", err)
			valid = false
		}
		cfg.KeyManagement = km
	}
	// The method is checked even where it will be ignored so that typos
	// never pass silently.
	if raw.EAPMethod != "" {
		m, err := netauth.ParseEAPMethod(raw.EAPMethod)
		if err != nil {
			errs.add(field+".eap-method", err)
			valid = false
		}
		cfg.EAPMethod = m
	}
	if valid {
		if err := cfg.Validate(); err != nil {
			if errors.Is(err, netauth.ErrMissingEAPMethod) {
				err = fmt.Errorf("%w (key-mgmt %s)", err, cfg.KeyManagement)
			}
			errs.add(field+".eap-method", err)
		}
	}
	return cfg
}

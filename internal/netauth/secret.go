package netauth

import "encoding/json"

// Redacted replaces secret values in any human-facing output.
const Redacted = "********"

// Secret holds a plaintext credential such as a pre-shared key or an EAP
// password. Formatting, logging and marshalling a Secret all yield a redacted
// placeholder; only Reveal returns the value.
type Secret string

// Reveal returns the plaintext value. Callers must only write the result to
// owner-only or otherwise secret-bearing outputs.
func (s Secret) Reveal() string {
	return string(s)
}

// IsSet reports whether the secret holds a value.
func (s Secret) IsSet() bool {
	return s != ""
}

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return Redacted
}

func (s Secret) GoString() string {
	return `netauth.Secret("` + s.String() + `")`
}

// MarshalYAML implements yaml.Marshaler.
func (s Secret) MarshalYAML() (any, error) {
	return s.String(), nil
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

package netauth

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolve_Inherited(t *testing.T) {
	def := &Config{KeyManagement: KeyMgmtWPAPSK, PSK: "d3f4ul7"}

	got := Resolve(def, Inherited{})
	assert.Equal(t, *def, got)

	// The copy must not alias the default.
	got.PSK = "changed"
	assert.Equal(t, Secret("d3f4ul7"), def.PSK)

	assert.Equal(t, Open(), Resolve(nil, Inherited{}))
	assert.Equal(t, *def, Resolve(def, nil))
}

func TestResolve_PasswordIgnoresDefault(t *testing.T) {
	defaults := []*Config{
		nil,
		{KeyManagement: KeyMgmtWPAPSK, PSK: "d3f4ul7"},
		{KeyManagement: KeyMgmtWPAEAP, EAPMethod: EAPTTLS, Identity: "joe", Password: "pw"},
	}
	for _, def := range defaults {
		got := Resolve(def, Password{PSK: "s3kr1t"})
		assert.Equal(t, Config{KeyManagement: KeyMgmtWPAPSK, PSK: "s3kr1t"}, got)
	}
}

func TestResolve_ExplicitStandsAlone(t *testing.T) {
	def := &Config{KeyManagement: KeyMgmtWPAPSK, PSK: "d3f4ul7"}

	// An empty explicit block is open, not inherited.
	assert.Equal(t, Open(), Resolve(def, Explicit{}))

	eap := Config{
		KeyManagement:     KeyMgmtWPAEAP,
		EAPMethod:         EAPPEAP,
		Identity:          "joe@internal.example.com",
		Password:          "v3ryS3kr1t",
		CACertificate:     "/etc/ssl/work2-cacrt.pem",
		ClientKeyPassword: "",
	}
	assert.Equal(t, eap, Resolve(def, Explicit{Config: eap}))
}

func TestSecretRedaction(t *testing.T) {
	cfg := Config{KeyManagement: KeyMgmtWPAPSK, PSK: "s3kr1t", Password: "pw"}

	assert.Equal(t, "s3kr1t", cfg.PSK.Reveal())
	assert.NotContains(t, fmt.Sprintf("%v", cfg), "s3kr1t")
	assert.NotContains(t, fmt.Sprintf("%+v", cfg), "s3kr1t")
	assert.NotContains(t, fmt.Sprintf("%#v", cfg), "s3kr1t")
	assert.Equal(t, "", Secret("").String())

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "s3kr1t")
	assert.Contains(t, string(out), "key-mgmt: wpa-psk")
	assert.NotContains(t, string(out), "eap-method")

	js, err := json.Marshal(cfg.PSK)
	require.NoError(t, err)
	assert.Equal(t, `"********"`, string(js))
}

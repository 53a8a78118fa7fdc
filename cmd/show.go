package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"grimm.is/netgen/internal/config"
	"grimm.is/netgen/internal/netauth"
)

type shownInterface struct {
	Name         string             `yaml:"name"`
	Type         string             `yaml:"type"`
	Renderer     string             `yaml:"renderer"`
	Auth         *netauth.Config    `yaml:"auth,omitempty"`
	AccessPoints []shownAccessPoint `yaml:"access-points,omitempty"`
}

type shownAccessPoint struct {
	SSID string `yaml:"ssid"`
	Mode string `yaml:"mode"`
	// Source tells where the effective auth comes from.
	Source string         `yaml:"source"`
	Auth   netauth.Config `yaml:"auth"`
}

// RunShow prints the effective auth of every interface and access point as
// YAML. Secrets are always redacted.
func RunShow(opts Options) error {
	s, err := setup(opts)
	if err != nil {
		return err
	}
	net, err := loadNetwork(s)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(effective(net)); err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	return enc.Close()
}

func effective(net *config.Network) []shownInterface {
	out := make([]shownInterface, 0, len(net.Ethernets)+len(net.Wifis))
	for _, e := range net.Ethernets {
		auth := e.EffectiveAuth()
		out = append(out, shownInterface{
			Name:     e.Name,
			Type:     "ethernet",
			Renderer: e.Renderer.String(),
			Auth:     &auth,
		})
	}
	for _, w := range net.Wifis {
		si := shownInterface{
			Name:     w.Name,
			Type:     "wifi",
			Renderer: w.Renderer.String(),
			Auth:     w.Auth,
		}
		for _, ap := range w.AccessPoints {
			si.AccessPoints = append(si.AccessPoints, shownAccessPoint{
				SSID:   ap.SSID,
				Mode:   ap.Mode.String(),
				Source: authSource(ap.Auth),
				Auth:   w.EffectiveAuth(ap),
			})
		}
		out = append(out, si)
	}
	return out
}

func authSource(spec netauth.Spec) string {
	switch spec.(type) {
	case netauth.Explicit:
		return "explicit"
	case netauth.Password:
		return "password"
	}
	return "inherited"
}

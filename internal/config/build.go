package config

import (
	"errors"
	"fmt"

	"grimm.is/netgen/internal/netauth"
	"grimm.is/netgen/internal/validation"
)

// ErrAmbiguousAuth is returned for an access point that has both the
// password shorthand and an auth block.
var ErrAmbiguousAuth = errors.New("'password' and 'auth' are mutually exclusive")

// ErrEmptyPassword is returned for a "password:" key without a value.
var ErrEmptyPassword = errors.New("password shorthand needs a value")

// build validates raw and converts it into a Network. defaultRenderer is used
// when neither the document nor the interface names one.
func build(raw *rawNetwork, defaultRenderer Renderer) (*Network, error) {
	var errs ValidationErrors

	if raw.Version != 0 && raw.Version != 2 {
		errs = append(errs, ValidationError{
			Field:   "network.version",
			Message: fmt.Sprintf("only version 2 is supported, got %d", raw.Version),
		})
	}

	net := &Network{Renderer: defaultRenderer}
	if raw.Renderer != "" {
		r, err := ParseRenderer(raw.Renderer)
		if err != nil {
			errs.add("network.renderer", err)
		}
		net.Renderer = r
	}

	renderer := func(field, s string) Renderer {
		if s == "" {
			return net.Renderer
		}
		r, err := ParseRenderer(s)
		if err != nil {
			errs.add(field, err)
		}
		return r
	}

	for _, e := range raw.Ethernets {
		field := "ethernets." + e.Key
		if err := validation.ValidateInterfaceName(e.Key); err != nil {
			errs.add(field, err)
		}
		net.Ethernets = append(net.Ethernets, Ethernet{
			Name:     e.Key,
			Renderer: renderer(field+".renderer", e.Value.Renderer),
			Auth:     buildAuth(field+".auth", e.Value.Auth, &errs),
			DHCP4:    e.Value.DHCP4,
			DHCP6:    e.Value.DHCP6,
		})
	}

	for _, w := range raw.Wifis {
		field := "wifis." + w.Key
		if err := validation.ValidateInterfaceName(w.Key); err != nil {
			errs.add(field, err)
		}
		wifi := Wifi{
			Name:     w.Key,
			Renderer: renderer(field+".renderer", w.Value.Renderer),
			Auth:     buildAuth(field+".auth", w.Value.Auth, &errs),
			DHCP4:    w.Value.DHCP4,
			DHCP6:    w.Value.DHCP6,
		}
		for _, ap := range w.Value.AccessPoints {
			wifi.AccessPoints = append(wifi.AccessPoints,
				buildAccessPoint(field+".access-points."+ap.Key, ap.Key, ap.Value, &errs))
		}
		net.Wifis = append(net.Wifis, wifi)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return net, nil
}

func buildAccessPoint(field, ssid string, raw rawAccessPoint, errs *ValidationErrors) AccessPoint {
	ap := AccessPoint{SSID: ssid, Auth: netauth.Inherited{}}

	if err := validation.ValidateSSID(ssid); err != nil {
		errs.add(field, err)
	}

	switch raw.Mode {
	case "", "infrastructure":
	case "adhoc":
		ap.Mode = ModeAdHoc
	default:
		errs.add(field+".mode", fmt.Errorf("unknown wifi mode '%s'", raw.Mode))
	}

	switch {
	case raw.hasPassword && raw.hasAuth:
		errs.add(field, ErrAmbiguousAuth)
	case raw.hasPassword && raw.Password == nil:
		errs.add(field+".password", ErrEmptyPassword)
	case raw.Password != nil:
		if err := validation.ValidateValue(*raw.Password); err != nil {
			errs.add(field+".password", err)
		}
		ap.Auth = netauth.Password{PSK: netauth.Secret(*raw.Password)}
	case raw.Auth != nil:
		if cfg := buildAuth(field+".auth", raw.Auth, errs); cfg != nil {
			ap.Auth = netauth.Explicit{Config: *cfg}
		}
	}
	return ap
}

// Package config loads the YAML network definitions and the generator
// settings.
//
// # Network definitions
//
// Definitions live in *.yaml files under the config directory and are read in
// lexical order:
//
//	network:
//	  version: 2
//	  renderer: networkd
//	  ethernets:
//	    eth0:
//	      auth:
//	        key-mgmt: 8021x
//	        eap-method: tls
//	        client-certificate: /etc/ssl/crt.pem
//	  wifis:
//	    wl0:
//	      auth:              # radio default
//	        key-mgmt: wpa-psk
//	        psk: "d3f4ul7"
//	      access-points:
//	        "Joe's Home":
//	          password: "s3kr1t"   # WPA-PSK shorthand
//	        opennet:
//	          auth: {}             # explicit, open; never inherits
//	        office: {}             # inherits the radio default
//
// [LoadDir] validates the whole set before returning: enum values, required
// EAP methods, renderer names, interface names, SSID lengths, line breaks in
// values and unknown keys. Any failure is reported as
// [ValidationErrors] and no [Network] is returned, so callers never render a
// partially valid configuration.
//
// Access points keep their declaration order; the renderers rely on it for
// stable output.
//
// # Settings
//
// [LoadSettings] reads the HCL settings file (see [Settings]) and applies
// NETGEN_* environment overrides.
package config

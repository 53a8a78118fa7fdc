package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// The raw* types mirror the YAML document before validation. Enum values stay
// strings here; they are parsed by build so that errors carry their field path.

type rawDocument struct {
	Network *rawNetwork `yaml:"network"`
}

type rawNetwork struct {
	Version   int                     `yaml:"version"`
	Renderer  string                  `yaml:"renderer"`
	Ethernets orderedMap[rawEthernet] `yaml:"ethernets"`
	Wifis     orderedMap[rawWifi]     `yaml:"wifis"`
}

type rawEthernet struct {
	Renderer string   `yaml:"renderer"`
	Auth     *rawAuth `yaml:"auth"`
	DHCP4    bool     `yaml:"dhcp4"`
	DHCP6    bool     `yaml:"dhcp6"`
}

type rawWifi struct {
	Renderer     string                     `yaml:"renderer"`
	Auth         *rawAuth                   `yaml:"auth"`
	AccessPoints orderedMap[rawAccessPoint] `yaml:"access-points"`
	DHCP4        bool                       `yaml:"dhcp4"`
	DHCP6        bool                       `yaml:"dhcp6"`
}

type rawAccessPoint struct {
	Mode     string   `yaml:"mode"`
	Password *string  `yaml:"password"`
	Auth     *rawAuth `yaml:"auth"`

	// Set when the key is present, including with a null value.
	hasPassword bool
	hasAuth     bool
}

type rawAuth struct {
	KeyManagement     string `yaml:"key-mgmt"`
	EAPMethod         string `yaml:"eap-method"`
	PSK               string `yaml:"psk"`
	Identity          string `yaml:"identity"`
	AnonymousIdentity string `yaml:"anonymous-identity"`
	Password          string `yaml:"password"`
	CACertificate     string `yaml:"ca-certificate"`
	ClientCertificate string `yaml:"client-certificate"`
	ClientKey         string `yaml:"client-key"`
	ClientKeyPassword string `yaml:"client-key-password"`
}

var (
	documentKeys    = []string{"network"}
	networkKeys     = []string{"version", "renderer", "ethernets", "wifis"}
	ethernetKeys    = []string{"renderer", "auth", "dhcp4", "dhcp6"}
	wifiKeys        = []string{"renderer", "auth", "access-points", "dhcp4", "dhcp6"}
	accessPointKeys = []string{"mode", "password", "auth"}
	authKeys        = []string{
		"key-mgmt", "eap-method", "psk", "identity", "anonymous-identity", "password",
		"ca-certificate", "client-certificate", "client-key", "client-key-password",
	}
)

func (d *rawDocument) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, documentKeys); err != nil {
		return err
	}
	type plain rawDocument
	return node.Decode((*plain)(d))
}

func (n *rawNetwork) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, networkKeys); err != nil {
		return err
	}
	type plain rawNetwork
	return node.Decode((*plain)(n))
}

func (e *rawEthernet) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, ethernetKeys); err != nil {
		return err
	}
	type plain rawEthernet
	return node.Decode((*plain)(e))
}

func (w *rawWifi) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, wifiKeys); err != nil {
		return err
	}
	type plain rawWifi
	return node.Decode((*plain)(w))
}

func (ap *rawAccessPoint) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, accessPointKeys); err != nil {
		return err
	}
	type plain rawAccessPoint
	if err := node.Decode((*plain)(ap)); err != nil {
		return err
	}
	ap.hasPassword = hasKey(node, "password")
	ap.hasAuth = hasKey(node, "auth")
	if ap.hasAuth && ap.Auth == nil {
		// "auth:" with no value is an empty, open block.
		ap.Auth = &rawAuth{}
	}
	return nil
}

func (a *rawAuth) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, authKeys); err != nil {
		return err
	}
	type plain rawAuth
	return node.Decode((*plain)(a))
}

// checkKeys rejects mapping keys outside allowed. Null nodes (an empty
// "key:") are accepted and decode to the zero value.
func checkKeys(node *yaml.Node, allowed []string) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := node.Content[i]
		if !slices.Contains(allowed, k.Value) {
			return fmt.Errorf("line %d: unknown key '%s'", k.Line, k.Value)
		}
	}
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

type mapEntry[T any] struct {
	Key   string
	Value T
	Line  int
}

// orderedMap is a YAML mapping decoded in declaration order.
type orderedMap[T any] []mapEntry[T]

func (m *orderedMap[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if prev, ok := seen[k.Value]; ok {
			return fmt.Errorf("line %d: duplicate key '%s' (first defined on line %d)", k.Line, k.Value, prev)
		}
		seen[k.Value] = k.Line

		var val T
		if err := v.Decode(&val); err != nil {
			return err
		}
		*m = append(*m, mapEntry[T]{Key: k.Value, Value: val, Line: k.Line})
	}
	return nil
}

func parseDocument(data []byte) (*rawNetwork, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Network == nil {
		return &rawNetwork{}, nil
	}
	return doc.Network, nil
}

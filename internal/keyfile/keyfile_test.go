package keyfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"grimm.is/netgen/internal/netauth"
)

func TestRender_Wifi(t *testing.T) {
	tests := []struct {
		name     string
		conn     Connection
		wantName string
		want     string
	}{
		{
			name: "psk with quote and space",
			conn: Connection{
				SSID: "Joe's Home",
				Auth: netauth.Config{KeyManagement: netauth.KeyMgmtWPAPSK, PSK: "s3kr1t"},
			},
			wantName: "wl0-Joe%27s%20Home",
			want: `[connection]
id=netplan-wl0-Joe's Home
type=wifi
interface-name=wl0

[ethernet]
wake-on-lan=0

[ipv4]
method=auto

[ipv6]
method=ignore

[wifi]
ssid=Joe's Home
mode=infrastructure

[wifi-security]
key-mgmt=wpa-psk
psk=s3kr1t
`,
		},
		{
			name: "peap",
			conn: Connection{
				SSID: "workplace2",
				Auth: netauth.Config{
					KeyManagement: netauth.KeyMgmtWPAEAP,
					EAPMethod:     netauth.EAPPEAP,
					Identity:      "joe@internal.example.com",
					Password:      "v3ryS3kr1t",
					CACertificate: "/etc/ssl/work2-cacrt.pem",
				},
			},
			wantName: "wl0-workplace2",
			want: `[connection]
id=netplan-wl0-workplace2
type=wifi
interface-name=wl0

[ethernet]
wake-on-lan=0

[ipv4]
method=auto

[ipv6]
method=ignore

[wifi]
ssid=workplace2
mode=infrastructure

[wifi-security]
key-mgmt=wpa-eap

[802-1x]
eap=peap
identity=joe@internal.example.com
password=v3ryS3kr1t
ca-cert=/etc/ssl/work2-cacrt.pem
`,
		},
		{
			name: "8021x tls",
			conn: Connection{
				SSID: "customernet",
				Auth: netauth.Config{
					KeyManagement:     netauth.KeyMgmt8021X,
					EAPMethod:         netauth.EAPTLS,
					Identity:          "cert-joe@cust.example.com",
					AnonymousIdentity: "@cust.example.com",
					CACertificate:     "/etc/ssl/cust-cacrt.pem",
					ClientCertificate: "/etc/ssl/cust-crt.pem",
					ClientKey:         "/etc/ssl/cust-key.pem",
					ClientKeyPassword: "d3cryptPr1v4t3K3y",
				},
			},
			wantName: "wl0-customernet",
			want: `[connection]
id=netplan-wl0-customernet
type=wifi
interface-name=wl0

[ethernet]
wake-on-lan=0

[ipv4]
method=auto

[ipv6]
method=ignore

[wifi]
ssid=customernet
mode=infrastructure

[wifi-security]
key-mgmt=ieee8021x

[802-1x]
eap=tls
identity=cert-joe@cust.example.com
anonymous-identity=@cust.example.com
ca-cert=/etc/ssl/cust-cacrt.pem
client-cert=/etc/ssl/cust-crt.pem
private-key=/etc/ssl/cust-key.pem
private-key-password=d3cryptPr1v4t3K3y
`,
		},
		{
			name:     "open",
			conn:     Connection{SSID: "opennet", Auth: netauth.Open()},
			wantName: "wl0-opennet",
			want: `[connection]
id=netplan-wl0-opennet
type=wifi
interface-name=wl0

[ethernet]
wake-on-lan=0

[ipv4]
method=auto

[ipv6]
method=ignore

[wifi]
ssid=opennet
mode=infrastructure
`,
		},
		{
			name:     "adhoc",
			conn:     Connection{SSID: "peer2peer", Mode: WifiAdHoc, Auth: netauth.Open()},
			wantName: "wl0-peer2peer",
			want: `[connection]
id=netplan-wl0-peer2peer
type=wifi
interface-name=wl0

[ethernet]
wake-on-lan=0

[ipv4]
method=auto

[ipv6]
method=ignore

[wifi]
ssid=peer2peer
mode=adhoc
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.conn
			c.Interface = "wl0"
			c.Type = TypeWifi
			c.DHCP4 = true

			p := Render(c)
			if diff := cmp.Diff(tt.want, string(p.Contents)); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, Dir+"/netplan-"+tt.wantName, p.Path)
			assert.Equal(t, "netplan-wl0-"+c.SSID, p.ID)
			assert.Equal(t, FileMode, p.Mode)
		})
	}
}

func TestRender_Wired8021X(t *testing.T) {
	p := Render(Connection{
		Interface: "eth0",
		Type:      TypeEthernet,
		DHCP4:     true,
		Auth: netauth.Config{
			KeyManagement:     netauth.KeyMgmt8021X,
			EAPMethod:         netauth.EAPTLS,
			Identity:          "cert-joe@cust.example.com",
			AnonymousIdentity: "@cust.example.com",
			CACertificate:     "/etc/ssl/cust-cacrt.pem",
			ClientCertificate: "/etc/ssl/cust-crt.pem",
			ClientKey:         "/etc/ssl/cust-key.pem",
			ClientKeyPassword: "d3cryptPr1v4t3K3y",
		},
	})

	want := `[connection]
id=netplan-eth0
type=ethernet
interface-name=eth0

[ethernet]
wake-on-lan=0

[ipv4]
method=auto

[ipv6]
method=ignore

[802-1x]
eap=tls
identity=cert-joe@cust.example.com
anonymous-identity=@cust.example.com
ca-cert=/etc/ssl/cust-cacrt.pem
client-cert=/etc/ssl/cust-crt.pem
private-key=/etc/ssl/cust-key.pem
private-key-password=d3cryptPr1v4t3K3y
`
	assert.Equal(t, want, string(p.Contents))
	assert.Equal(t, "eth0", p.Name)
	assert.Equal(t, "netplan-eth0", p.ID)
}

func TestRender_AddressingMethods(t *testing.T) {
	p := Render(Connection{Interface: "eth1", DHCP6: true})
	f, err := ini.Load(p.Contents)
	require.NoError(t, err)
	assert.Equal(t, "link-local", f.Section("ipv4").Key("method").String())
	assert.Equal(t, "auto", f.Section("ipv6").Key("method").String())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "wl0-Joe%27s%20Home", Filename("wl0", "Joe's Home"))
	assert.Equal(t, "wl0-a%2Db%2Fc%C3%A9", Filename("wl0", "a-b/cé"))
	assert.Equal(t, "eth0", Filename("eth0", ""))
	assert.Equal(t, "ABCxyz019", Escape("ABCxyz019"))
}

func TestRender_IniRoundTrip(t *testing.T) {
	auths := []netauth.Config{
		netauth.Open(),
		{KeyManagement: netauth.KeyMgmtWPAPSK, PSK: "s3kr1t"},
		{KeyManagement: netauth.KeyMgmtWPAEAP, EAPMethod: netauth.EAPTTLS, AnonymousIdentity: "@x", Password: "pw"},
		{KeyManagement: netauth.KeyMgmt8021X, EAPMethod: netauth.EAPTLS, ClientKey: "/k.pem", ClientKeyPassword: "kp"},
	}

	for _, a := range auths {
		p := Render(Connection{Interface: "wl0", Type: TypeWifi, SSID: "net", Auth: a})
		f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, p.Contents)
		require.NoError(t, err)

		assert.Equal(t, !a.IsOpen(), f.HasSection("wifi-security"), a.KeyManagement.String())
		assert.Equal(t, a.KeyManagement.IsEAP(), f.HasSection("802-1x"), a.KeyManagement.String())

		if !a.KeyManagement.IsEAP() {
			continue
		}
		got := make(map[string]string)
		for _, k := range f.Section("802-1x").Keys() {
			got[k.Name()] = k.Value()
		}
		want := map[string]string{"eap": a.EAPMethod.String()}
		add := func(k, v string) {
			if v != "" {
				want[k] = v
			}
		}
		add("identity", a.Identity)
		add("anonymous-identity", a.AnonymousIdentity)
		add("password", a.Password.Reveal())
		add("ca-cert", a.CACertificate)
		add("client-cert", a.ClientCertificate)
		add("private-key", a.ClientKey)
		add("private-key-password", a.ClientKeyPassword.Reveal())
		assert.Equal(t, want, got)
	}
}

func TestRender_SecretsOnlyInSecuritySections(t *testing.T) {
	p := Render(Connection{
		Interface: "wl0",
		Type:      TypeWifi,
		SSID:      "net",
		Auth:      netauth.Config{KeyManagement: netauth.KeyMgmtWPAPSK, PSK: "s3kr1t"},
	})
	f, err := ini.Load(p.Contents)
	require.NoError(t, err)

	for _, s := range f.Sections() {
		for _, k := range s.Keys() {
			if k.Value() == "s3kr1t" {
				assert.Equal(t, "wifi-security", s.Name())
			}
		}
	}
}

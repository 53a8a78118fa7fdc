package keyfile

import (
	"strings"

	"grimm.is/netgen/internal/netauth"
)

// document is an ordered list of keyfile sections.
type document struct {
	sections []*section
}

type section struct {
	name    string
	entries []entry
}

type entry struct {
	key   string
	value string
}

func (d *document) section(name string) *section {
	s := &section{name: name}
	d.sections = append(d.sections, s)
	return s
}

// set adds a plain value. Secrets cannot be passed here; they go through
// setSecret so that only the security sections ever reveal them.
func (s *section) set(key, value string) {
	s.entries = append(s.entries, entry{key: key, value: value})
}

func (s *section) setOptional(key, value string) {
	if value != "" {
		s.set(key, value)
	}
}

func (s *section) setSecret(key string, value netauth.Secret) {
	if value.IsSet() {
		s.entries = append(s.entries, entry{key: key, value: value.Reveal()})
	}
}

func (d *document) String() string {
	var sb strings.Builder
	for i, s := range d.sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("[" + s.name + "]\n")
		for _, e := range s.entries {
			sb.WriteString(e.key + "=" + e.value + "\n")
		}
	}
	return sb.String()
}

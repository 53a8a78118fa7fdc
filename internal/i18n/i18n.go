// Package i18n localizes the command-line summaries printed by netgen.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// Message keys for CLI output. The English text is the key itself.
const (
	MsgGenerated    = "Wrote %d file(s) and %d unit link(s) under %s\n"
	MsgCheckOK      = "Configuration is valid: %d interface(s)\n"
	MsgCheckFailed  = "Configuration has %d error(s)\n"
	MsgNoChanges    = "No changes\n"
	MsgChanged      = "%d file(s) would change\n"
	MsgLocked       = "Another generator run holds %s\n"
	MsgRemovedStale = "Removed %d stale file(s)\n"
)

func init() {
	de := map[string]string{
		MsgGenerated:    "%d Datei(en) und %d Unit-Link(s) unter %s geschrieben\n",
		MsgCheckOK:      "Konfiguration ist gültig: %d Schnittstelle(n)\n",
		MsgCheckFailed:  "Konfiguration enthält %d Fehler\n",
		MsgNoChanges:    "Keine Änderungen\n",
		MsgChanged:      "%d Datei(en) würden sich ändern\n",
		MsgLocked:       "Ein anderer Generatorlauf hält %s\n",
		MsgRemovedStale: "%d veraltete Datei(en) entfernt\n",
	}
	for key, msg := range de {
		if err := message.SetString(language.German, key, msg); err != nil {
			panic(err)
		}
	}
}

// MatchLanguage returns the best supported language for a list of
// Accept-Language style tags.
func MatchLanguage(accept string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(accept)
	_, idx, _ := matcher.Match(tags...)
	return SupportedLangs[idx]
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// LocaleFromEnv returns the locale named by LC_ALL, LC_MESSAGES or LANG, in
// that order, without its encoding suffix.
func LocaleFromEnv() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		lang := os.Getenv(name)
		if lang == "" {
			continue
		}
		// en_US.UTF-8, de_DE@euro
		if i := strings.IndexAny(lang, ".@"); i != -1 {
			lang = lang[:i]
		}
		return strings.ReplaceAll(lang, "_", "-")
	}
	return ""
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	lang := LocaleFromEnv()
	if lang == "" || lang == "C" || lang == "POSIX" {
		return message.NewPrinter(DefaultLang)
	}
	return message.NewPrinter(MatchLanguage(lang))
}

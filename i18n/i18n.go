// Package i18n provides internationalization support for resxgen itself.
//
// It wraps the gotext library to provide T(), Tf() and N() for
// translating resxgen's user-facing strings: prompts, progress sections
// and summaries. Translations are embedded in the binary via //go:embed
// and loaded at startup via Init().
//
// Usage:
//
//	i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T("Regenerating src files"))
//	fmt.Println(i18n.N("%d chunk", "%d chunks", count))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the translation catalogues.
// Directory structure: locales/{lang}/LC_MESSAGES/resxgen.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for resxgen.
const domain = "resxgen"

var (
	po   *gotext.Locale
	lang string
)

// Init loads the catalogue for lang. If lang is empty, it is detected
// from LANGUAGE, LC_ALL, LC_MESSAGES and LANG, in that order.
func Init(l string) {
	if l == "" {
		l = detectLanguage()
	}
	lang = l

	po = gotext.NewLocaleFSWithPath(l, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Language returns the language passed to or detected by Init.
func Language() string {
	if lang == "" {
		return "en"
	}
	return lang
}

// T translates a string. Untranslated strings are returned unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// Tf translates a format string and applies args.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// N translates a string with plural forms and applies n as the only
// format argument.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return fmt.Sprintf(singular, n)
		}
		return fmt.Sprintf(plural, n)
	}
	return po.GetN(singular, plural, n, n)
}

// detectLanguage follows the GNU gettext environment priority.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// "ru_RU.UTF-8" -> "ru_RU"
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}

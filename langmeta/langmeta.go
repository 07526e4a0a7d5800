// Package langmeta provides language display metadata (native and English
// names, emoji flags) for CLI output. Names come from the CLDR data in
// golang.org/x/text; the flag is derived from the most likely region of
// the language.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Name    string
	English string
	Flag    string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR and pt-BR. Unknown codes are returned
// unchanged as the name, without a flag.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil {
		return Meta{Name: lang, English: lang}
	}

	m := Meta{
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
		Flag:    flag(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = m.Name
	}
	return m
}

// Label returns "<flag> <name> (<code>)" for list output.
func Label(lang string) string {
	m := Resolve(lang)
	if m.Flag == "" {
		return m.Name + " (" + lang + ")"
	}
	return m.Flag + " " + m.Name + " (" + lang + ")"
}

// flag builds the regional-indicator pair of the tag's region. Regions
// guessed with low confidence and non-country regions get no flag.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf < language.Low {
		return ""
	}
	code := region.String()
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return ""
	}
	return string([]rune{
		rune(0x1F1E6 + int(code[0]-'A')),
		rune(0x1F1E6 + int(code[1]-'A')),
	})
}

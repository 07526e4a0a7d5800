package generate

import (
	"regexp"

	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/resxerr"
)

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// reserved words cannot name an exported binding. They remain valid as
// property names, so keys are only checked against the identifier grammar.
var reserved = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// prototypeMembers are inherited by every object literal. A key with one
// of these names would shadow the fallback lookup of the facade, and
// __proto__ in a literal sets the prototype instead of a property.
var prototypeMembers = map[string]bool{
	"__proto__": true, "__defineGetter__": true, "__defineSetter__": true,
	"__lookupGetter__": true, "__lookupSetter__": true, "constructor": true,
	"hasOwnProperty": true, "isPrototypeOf": true, "propertyIsEnumerable": true,
	"toLocaleString": true, "toString": true, "valueOf": true,
}

// IsIdentifier reports whether s is an ASCII ECMAScript identifier.
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// ValidateChunkName checks that name can be used as a file name segment
// and as an exported binding.
func ValidateChunkName(name string) error {
	switch {
	case name == "":
		return &resxerr.InvalidNameError{Kind: "chunk", Name: name, Reason: "name is empty"}
	case !IsIdentifier(name):
		return &resxerr.InvalidNameError{Kind: "chunk", Name: name, Reason: "must be an identifier (letters, digits, _ or $, not starting with a digit)"}
	case reserved[name]:
		return &resxerr.InvalidNameError{Kind: "chunk", Name: name, Reason: "is a reserved word"}
	case prototypeMembers[name]:
		return &resxerr.InvalidNameError{Kind: "chunk", Name: name, Reason: "is an Object.prototype member"}
	}
	return nil
}

// ValidateKeyName checks that name can be used as an accessor name.
func ValidateKeyName(name string) error {
	switch {
	case name == "":
		return &resxerr.InvalidNameError{Kind: "key", Name: name, Reason: "name is empty"}
	case !IsIdentifier(name):
		return &resxerr.InvalidNameError{Kind: "key", Name: name, Reason: "must be an identifier (letters, digits, _ or $, not starting with a digit)"}
	case prototypeMembers[name]:
		return &resxerr.InvalidNameError{Kind: "key", Name: name, Reason: "is an Object.prototype member"}
	}
	return nil
}

// importAlias returns the binding a language module is imported under.
func importAlias(chunk, lang string) string {
	return chunk + config.LangSuffix(lang)
}

// propertyKey renders lang as an object literal key.
func propertyKey(lang string) string {
	if IsIdentifier(lang) {
		return lang
	}
	return "'" + EscapeString(lang) + "'"
}

// memberAccess renders obj.lang, or obj['lang'] for non-identifier codes.
func memberAccess(obj, lang string) string {
	if IsIdentifier(lang) {
		return obj + "." + lang
	}
	return obj + "['" + EscapeString(lang) + "']"
}

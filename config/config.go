// Package config implements .resxprocessor configuration file support.
//
// The configuration is read once at startup and passed explicitly to every
// component. The file is JSON or YAML; JSON documents are valid YAML flow
// documents, so both are read with the same decoder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name, looked up in the working directory.
const FileName = ".resxprocessor"

// Line ending names accepted by LineEnding.
const (
	LineEndingLF   = "lf"
	LineEndingCRLF = "crlf"
)

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Config is the typed .resxprocessor structure.
type Config struct {
	// SrcFolder holds the <chunk>.<lang>.json source dictionaries.
	SrcFolder string `yaml:"srcFolder"`
	// DistFolder receives the generated modules.
	DistFolder string `yaml:"distFolder"`
	// ResxPrefix is appended to the chunk name in generated file and export names.
	ResxPrefix string `yaml:"resxPrefix"`
	// JSNamespace is the global object the facades are attached to (e.g. "ep.resources").
	JSNamespace string `yaml:"jsNamespace"`
	// Languages is the ordered list of language codes. The first one is the
	// default unless DefaultLang says otherwise.
	Languages []string `yaml:"languages"`
	// DefaultLang is the authoritative language.
	DefaultLang string `yaml:"defaultLang"`
	// CurrentLangNS is the runtime expression naming the active language.
	CurrentLangNS string `yaml:"currentLangNS"`
	// TabSize is the indentation width of generated text.
	TabSize int `yaml:"tabSize"`

	// Ext is the facade and declaration module extension (default "ts").
	Ext string `yaml:"ext"`
	// LangExt is the per-language module extension (default "js").
	LangExt string `yaml:"langExt"`
	// LineEnding is "lf" or "crlf".
	LineEnding string `yaml:"lineEnding"`
	// Declarations enables the <chunk><prefix>.d.<ext> type-declaration module.
	Declarations bool `yaml:"declarations"`
	// TypesInterface is the global interface augmented by declaration modules.
	// Derived from JSNamespace when empty ("ep.resources" -> "EpResources").
	TypesInterface string `yaml:"typesInterface"`
	// StrictDefault rejects null values in the default language dictionary.
	StrictDefault *bool `yaml:"strictDefault"`
	// ServerAddr is the listen address of the query endpoints.
	ServerAddr string `yaml:"serverAddr"`

	path string `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads, defaults and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes config data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.SrcFolder == "" {
		c.SrcFolder = "./resxSrc/"
	}
	if c.DistFolder == "" {
		c.DistFolder = "./resxDist/"
	}
	if c.ResxPrefix == "" {
		c.ResxPrefix = "Resx"
	}
	if c.JSNamespace == "" {
		c.JSNamespace = "ep.resources"
	}
	if c.CurrentLangNS == "" {
		c.CurrentLangNS = "ep.currentLang"
	}
	if c.TabSize == 0 {
		c.TabSize = 4
	}
	if c.Ext == "" {
		c.Ext = "ts"
	}
	if c.LangExt == "" {
		c.LangExt = "js"
	}
	if c.LineEnding == "" {
		c.LineEnding = LineEndingLF
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":3000"
	}
	for i, l := range c.Languages {
		c.Languages[i] = strings.TrimSpace(l)
	}
	if c.DefaultLang == "" && len(c.Languages) > 0 {
		c.DefaultLang = c.Languages[0]
	}
	if c.TypesInterface == "" {
		c.TypesInterface = interfaceName(c.JSNamespace)
	}
	if c.StrictDefault == nil {
		strict := true
		c.StrictDefault = &strict
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

var (
	namespaceRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)
	identRe     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	langRe      = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{2,8})*$`)
	extRe       = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// Validate checks the field constraints. It is called by Load and Parse.
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages: at least one language is required")
	}
	seen := make(map[string]bool, len(c.Languages))
	suffixes := make(map[string]string, len(c.Languages))
	for _, l := range c.Languages {
		if !langRe.MatchString(l) {
			return fmt.Errorf("languages: %q is not a language code", l)
		}
		if seen[l] {
			return fmt.Errorf("languages: %q is listed twice", l)
		}
		seen[l] = true
		// generated import bindings are <chunk><suffix>
		if other, ok := suffixes[LangSuffix(l)]; ok {
			return fmt.Errorf("languages: %q and %q map to the same identifier suffix %q", other, l, LangSuffix(l))
		}
		suffixes[LangSuffix(l)] = l
	}
	if !seen[c.DefaultLang] {
		return fmt.Errorf("defaultLang: %q is not in languages %v", c.DefaultLang, c.Languages)
	}
	if !namespaceRe.MatchString(c.JSNamespace) {
		return fmt.Errorf("jsNamespace: %q is not a dotted identifier path", c.JSNamespace)
	}
	if !identRe.MatchString(c.TypesInterface) {
		return fmt.Errorf("typesInterface: %q is not an identifier", c.TypesInterface)
	}
	if c.ResxPrefix != "" && !identRe.MatchString(c.ResxPrefix) {
		return fmt.Errorf("resxPrefix: %q must be usable inside an identifier", c.ResxPrefix)
	}
	if strings.TrimSpace(c.CurrentLangNS) == "" || strings.ContainsAny(c.CurrentLangNS, "\r\n") {
		return fmt.Errorf("currentLangNS: %q is not a single-line expression", c.CurrentLangNS)
	}
	if c.TabSize < 1 || c.TabSize > 16 {
		return fmt.Errorf("tabSize: %d is out of range 1..16", c.TabSize)
	}
	if !extRe.MatchString(c.Ext) || !extRe.MatchString(c.LangExt) {
		return fmt.Errorf("ext/langExt: extensions must be alphanumeric, got %q and %q", c.Ext, c.LangExt)
	}
	if c.LineEnding != LineEndingLF && c.LineEnding != LineEndingCRLF {
		return fmt.Errorf("lineEnding: %q (valid: lf, crlf)", c.LineEnding)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// NewLine returns the configured line terminator.
func (c *Config) NewLine() string {
	if c.LineEnding == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// Tab returns one indentation level.
func (c *Config) Tab() string {
	return strings.Repeat(" ", c.TabSize)
}

// IsStrictDefault reports whether null values are rejected in the default language.
func (c *Config) IsStrictDefault() bool {
	return c.StrictDefault == nil || *c.StrictDefault
}

// OtherLanguages returns the configured languages except the default one,
// in configuration order.
func (c *Config) OtherLanguages() []string {
	out := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		if l != c.DefaultLang {
			out = append(out, l)
		}
	}
	return out
}

// HasLanguage reports whether lang is configured.
func (c *Config) HasLanguage(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// EnsureFolders creates the source and output folders when missing and
// reports which ones were created.
func (c *Config) EnsureFolders() (created []string, err error) {
	for _, dir := range []string{c.SrcFolder, c.DistFolder} {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			continue
		}
		if err := os.MkdirAll(filepath.Clean(dir), 0755); err != nil {
			return created, fmt.Errorf("creating %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}

// LangSuffix returns lang with every character that cannot appear in an
// identifier replaced by '_' ("pt-BR" -> "pt_BR").
func LangSuffix(lang string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, lang)
}

// interfaceName derives a PascalCase interface name from a dotted namespace.
func interfaceName(ns string) string {
	var b strings.Builder
	for _, part := range strings.Split(ns, ".") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "Resources"
	}
	return b.String()
}

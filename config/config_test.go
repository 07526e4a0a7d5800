package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"languages": ["en", "ru", "de"]}`))
	require.NoError(t, err)

	assert.Equal(t, "./resxSrc/", cfg.SrcFolder)
	assert.Equal(t, "./resxDist/", cfg.DistFolder)
	assert.Equal(t, "Resx", cfg.ResxPrefix)
	assert.Equal(t, "en", cfg.DefaultLang)
	assert.Equal(t, 4, cfg.TabSize)
	assert.Equal(t, "ts", cfg.Ext)
	assert.Equal(t, "js", cfg.LangExt)
	assert.Equal(t, "EpResources", cfg.TypesInterface)
	assert.True(t, cfg.IsStrictDefault())
	assert.Equal(t, "\n", cfg.NewLine())
	assert.Equal(t, "    ", cfg.Tab())
	assert.Equal(t, []string{"ru", "de"}, cfg.OtherLanguages())
}

func TestParseYAMLAndExplicitValues(t *testing.T) {
	data := "srcFolder: src\n" +
		"distFolder: dist\n" +
		"languages: [en, ru]\n" +
		"defaultLang: ru\n" +
		"tabSize: 2\n" +
		"lineEnding: crlf\n" +
		"strictDefault: false\n" +
		"jsNamespace: app.i18n\n"

	cfg, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "ru", cfg.DefaultLang)
	assert.Equal(t, []string{"en"}, cfg.OtherLanguages())
	assert.Equal(t, "\r\n", cfg.NewLine())
	assert.Equal(t, "  ", cfg.Tab())
	assert.False(t, cfg.IsStrictDefault())
	assert.Equal(t, "AppI18n", cfg.TypesInterface)
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{name: "no languages", data: `{}`, want: "at least one language"},
		{name: "duplicate language", data: `{"languages": ["en", "en"]}`, want: "listed twice"},
		{name: "unknown default", data: `{"languages": ["en"], "defaultLang": "fr"}`, want: "defaultLang"},
		{name: "bad language", data: `{"languages": ["en", "r u"]}`, want: "not a language code"},
		{name: "colliding identifier suffix", data: `{"languages": ["en", "zh-CN", "zh_CN"]}`, want: "same identifier suffix"},
		{name: "bad namespace", data: `{"languages": ["en"], "jsNamespace": "ep..x"}`, want: "jsNamespace"},
		{name: "bad tab size", data: `{"languages": ["en"], "tabSize": -1}`, want: "tabSize"},
		{name: "bad line ending", data: `{"languages": ["en"], "lineEnding": "cr"}`, want: "lineEnding"},
		{name: "multi-line selector", data: "{\"languages\": [\"en\"], \"currentLangNS\": \"a\\nb\"}", want: "currentLangNS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadAndEnsureFolders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	src := filepath.Join(dir, "src")
	dist := filepath.Join(dir, "dist")
	data := `{"languages": ["en"], "srcFolder": "` + filepath.ToSlash(src) + `", "distFolder": "` + filepath.ToSlash(dist) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())

	created, err := cfg.EnsureFolders()
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.DirExists(t, src)
	assert.DirExists(t, dist)

	created, err = cfg.EnsureFolders()
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLangSuffix(t *testing.T) {
	assert.Equal(t, "en", LangSuffix("en"))
	assert.Equal(t, "pt_BR", LangSuffix("pt-BR"))
	assert.Equal(t, "zh_Hant_TW", LangSuffix("zh-Hant-TW"))
}

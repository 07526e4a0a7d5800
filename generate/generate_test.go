package generate

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/resxgen/chunkfile"
	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/lockfile"
	"github.com/minios-linux/resxgen/resxerr"
	"github.com/minios-linux/resxgen/store"
)

func testConfig(t *testing.T, cfgJSON string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(cfgJSON))
	require.NoError(t, err)
	return cfg
}

func newTestStore(t *testing.T, cfgJSON string) *store.Store {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig(t, cfgJSON)
	cfg.SrcFolder = filepath.Join(dir, "src")
	cfg.DistFolder = filepath.Join(dir, "dist")
	_, err := cfg.EnsureFolders()
	require.NoError(t, err)
	return store.New(cfg)
}

func dict(t *testing.T, src string) *chunkfile.Dictionary {
	t.Helper()
	d, err := chunkfile.Parse([]byte(src))
	require.NoError(t, err)
	return d
}

func writeSrc(t *testing.T, s *store.Store, chunk, lang, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.SrcPath(chunk, lang), []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// unescapeJS decodes the body of a single-quoted ECMAScript string literal.
func unescapeJS(t *testing.T, lit string) string {
	t.Helper()
	var b strings.Builder
	r := []rune(lit)
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch c {
		case '\'', '\n', '\r':
			t.Fatalf("unescaped %q in literal %q", c, lit)
		case '\\':
		default:
			b.WriteRune(c)
			continue
		}
		i++
		require.Less(t, i, len(r), "dangling backslash in %q", lit)
		switch e := r[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'x':
			n, err := strconv.ParseUint(string(r[i+1:i+3]), 16, 8)
			require.NoError(t, err)
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			n, err := strconv.ParseUint(string(r[i+1:i+5]), 16, 32)
			require.NoError(t, err)
			b.WriteRune(rune(n))
			i += 4
		default:
			b.WriteRune(e)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Escaping
// ---------------------------------------------------------------------------

func TestEscapeStringRoundTrip(t *testing.T) {
	tests := []string{
		"plain",
		"it's",
		`say "hi"`,
		`C:\path\to`,
		"line1\nline2\r\nline3",
		"tab\there",
		"sep\u2028para\u2029end",
		"bell\x07nul\x00del\x7f",
		"unicode: Привет, 日本語, 🎉",
		"</script>",
		`\'`,
	}

	for _, s := range tests {
		esc := EscapeString(s)
		assert.NotContains(t, esc, "\n")
		assert.NotContains(t, esc, "\u2028")
		assert.Equal(t, s, unescapeJS(t, esc), "literal %q", esc)
	}
}

func TestCommentText(t *testing.T) {
	assert.Equal(t, `a *\/ b c`, commentText("a */ b\nc"))
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestRenderLangModule(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["en", "ru"]}`)

	got := RenderLangModule(cfg, "greeting", dict(t, `{"hello": "Hi", "bye": null, "Apple": "It's"}`))
	want := Header + "\n" +
		"export const greeting = {\n" +
		"    Apple: 'It\\'s',\n" +
		"    hello: 'Hi',\n" +
		"};\n"
	assert.Equal(t, want, string(got))
}

func TestRenderLangModuleEmpty(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["en", "ru"]}`)

	got := RenderLangModule(cfg, "greeting", dict(t, `{"hello": null}`))
	assert.Equal(t, Header+"\nexport const greeting = {};\n", string(got))
}

func TestRenderFacade(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["en", "ru"]}`)

	got := RenderFacade(cfg, "greeting", dict(t, `{"hello": "Hi", "bye": "Bye"}`))
	want := Header + `
import { greeting as greetingen } from './greetingResx.en';
import { greeting as greetingru } from './greetingResx.ru';

const langMap: { [k: string]: Partial<typeof greetingen> } = {
    en: greetingen,
    ru: greetingru,
};

// tslint:disable:max-line-length
export const greetingResx = {
    /**
     * en: Bye
     */
    get bye() {
        return (langMap[ep.currentLang] || langMap.en).bye || langMap.en.bye;
    },
    /**
     * en: Hi
     */
    get hello() {
        return (langMap[ep.currentLang] || langMap.en).hello || langMap.en.hello;
    },
};

// @ts-ignore
ep.resources = ep.resources || {};
// @ts-ignore
ep.resources.greeting = greetingResx;
`
	assert.Equal(t, want, string(got))
}

func TestRenderFacadeGetterPerDefaultKey(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["ru", "en-US", "de"], "strictDefault": false}`)

	got := string(RenderFacade(cfg, "menu", dict(t, `{"open": "Открыть", "todo": null, "Close": "*/ x"}`)))

	assert.Contains(t, got, "import { menu as menude } from './menuResx.de';")
	assert.Contains(t, got, "import { menu as menuen_US } from './menuResx.en-US';")
	assert.Contains(t, got, "Partial<typeof menuru>")
	assert.Contains(t, got, "    'en-US': menuen_US,\n")
	assert.Contains(t, got, "* ru: *\\/ x\n")
	for _, k := range []string{"Close", "open", "todo"} {
		assert.Contains(t, got, "get "+k+"() {\n        return (langMap[ep.currentLang] || langMap.ru)."+k+" || langMap.ru."+k+";")
	}
	assert.Less(t, strings.Index(got, "get Close()"), strings.Index(got, "get open()"))
	assert.Less(t, strings.Index(got, "get open()"), strings.Index(got, "get todo()"))
	assert.Less(t, strings.Index(got, "menuResx.de'"), strings.Index(got, "menuResx.en-US'"))
	assert.Less(t, strings.Index(got, "menuResx.en-US'"), strings.Index(got, "menuResx.ru'"))
}

func TestRenderFacadeEmptyAndNamespaces(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["en"], "jsNamespace": "app.i18n.res", "currentLangNS": "app.lang", "resxPrefix": "Strings"}`)

	got := string(RenderFacade(cfg, "empty", chunkfile.New()))
	assert.Contains(t, got, "export const emptyStrings = {};\n")
	assert.Contains(t, got, "// @ts-ignore\napp.i18n = app.i18n || {};\n// @ts-ignore\napp.i18n.res = app.i18n.res || {};\n// @ts-ignore\napp.i18n.res.empty = emptyStrings;\n")
}

func TestNamespaceChain(t *testing.T) {
	assert.Equal(t, []string{"ep"}, namespaceChain("ep"))
	assert.Equal(t, []string{"ep.resources"}, namespaceChain("ep.resources"))
	assert.Equal(t, []string{"a.b", "a.b.c"}, namespaceChain("a.b.c"))
}

func TestRenderTypes(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["en", "ru"], "declarations": true}`)

	got := RenderTypes(cfg, "greeting", dict(t, `{"hello": "Hi", "bye": "Bye"}`))
	want := Header + `
export interface greetingResxShape {
    readonly bye: string;
    readonly hello: string;
}

declare global {
    interface EpResources {
        greeting: greetingResxShape;
    }
}
`
	assert.Equal(t, want, string(got))
}

func TestRenderHonoursLineEndingAndTabSize(t *testing.T) {
	cfg := testConfig(t, `{"languages": ["en"], "lineEnding": "crlf", "tabSize": 2}`)

	got := string(RenderLangModule(cfg, "c", dict(t, `{"k": "v"}`)))
	assert.Equal(t, Header+"\r\nexport const c = {\r\n  k: 'v',\r\n};\r\n", got)
	assert.NotContains(t, strings.ReplaceAll(got, "\r\n", ""), "\n")
}

// ---------------------------------------------------------------------------
// Generator
// ---------------------------------------------------------------------------

func TestGenerateChunkUntranslatedLanguage(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en", "ru"]}`)
	writeSrc(t, s, "greeting", "en", `{"hello": "Hi"}`)
	writeSrc(t, s, "greeting", "ru", `{"hello": null}`)

	res, err := New(s, nil).GenerateChunk(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Len(t, res.Written, 3)

	assert.Equal(t, Header+"\nexport const greeting = {};\n", readFile(t, s.DistPath("greeting", "ru")))
	assert.Contains(t, readFile(t, s.DistPath("greeting", "en")), "    hello: 'Hi',\n")

	facade := readFile(t, s.WrapperPath("greeting"))
	assert.Contains(t, facade, "get hello() {")
	assert.Contains(t, facade, "|| langMap.en.hello;")
	assert.NoFileExists(t, s.TypesPath("greeting"))
}

func TestGenerateChunkWritesDeclarations(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en", "ru"], "declarations": true}`)
	writeSrc(t, s, "greeting", "en", `{"hello": "Hi"}`)
	writeSrc(t, s, "greeting", "ru", `{"hello": "Привет"}`)

	_, err := New(s, nil).GenerateChunk(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Contains(t, readFile(t, s.TypesPath("greeting")), "readonly hello: string;")
}

func TestGenerateChunkRefusesUnreconciled(t *testing.T) {
	tests := []struct {
		name string
		ru   string
	}{
		{"missing key", `{}`},
		{"extra key", `{"hello": "x", "old": "y"}`},
		{"missing file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, `{"languages": ["en", "ru"]}`)
			writeSrc(t, s, "greeting", "en", `{"hello": "Hi"}`)
			if tt.ru != "" {
				writeSrc(t, s, "greeting", "ru", tt.ru)
			}

			_, err := New(s, nil).GenerateChunk(context.Background(), "greeting")
			assert.ErrorIs(t, err, resxerr.ErrValidation)
			assert.NoFileExists(t, s.WrapperPath("greeting"))
		})
	}
}

func TestGenerateChunkRejectsInvalidNames(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en"]}`)
	writeSrc(t, s, "class", "en", `{"hello": "Hi"}`)
	writeSrc(t, s, "menu", "en", `{"bad-key": "x"}`)

	g := New(s, nil)
	_, err := g.GenerateChunk(context.Background(), "class")
	assert.ErrorIs(t, err, resxerr.ErrInvalidName)
	_, err = g.GenerateChunk(context.Background(), "menu")
	assert.ErrorIs(t, err, resxerr.ErrInvalidName)
}

func TestValidateNamesRejectsPrototypeMembers(t *testing.T) {
	for _, name := range []string{"__proto__", "constructor", "toString", "valueOf", "hasOwnProperty"} {
		assert.ErrorIs(t, ValidateKeyName(name), resxerr.ErrInvalidName, name)
		assert.ErrorIs(t, ValidateChunkName(name), resxerr.ErrInvalidName, name)
	}
	assert.NoError(t, ValidateKeyName("toStringValue"))
	assert.NoError(t, ValidateKeyName("proto"))
}

func TestGenerateChunkRejectsPrototypeMemberKeys(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en", "ru"]}`)
	writeSrc(t, s, "greeting", "en", `{"a": "A", "constructor": "Ctor"}`)
	writeSrc(t, s, "greeting", "ru", `{"a": null, "constructor": null}`)

	_, err := New(s, nil).GenerateChunk(context.Background(), "greeting")
	assert.ErrorIs(t, err, resxerr.ErrInvalidName)
	assert.NoFileExists(t, s.WrapperPath("greeting"))
}

func TestGenerateChunkMissingDefault(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en"]}`)
	_, err := New(s, nil).GenerateChunk(context.Background(), "ghost")
	assert.ErrorIs(t, err, resxerr.ErrMissingDefault)
}

func TestGenerateIsIdempotentAndSkipsUnchanged(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en", "ru"], "declarations": true}`)
	writeSrc(t, s, "greeting", "en", `{"hello": "Hi", "bye": "Bye"}`)
	writeSrc(t, s, "greeting", "ru", `{"hello": "Привет", "bye": null}`)

	lf, err := lockfile.Load(s.Config().DistFolder)
	require.NoError(t, err)
	g := New(s, lf)

	first, err := g.GenerateChunk(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Len(t, first.Written, 4)
	snapshot := map[string]string{}
	for _, p := range first.Written {
		snapshot[p] = readFile(t, p)
	}

	second, err := g.GenerateChunk(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Empty(t, second.Written)
	assert.Len(t, second.Skipped, 4)
	for p, content := range snapshot {
		assert.Equal(t, content, readFile(t, p))
	}

	// a deleted artifact is regenerated even when the checksum matches
	require.NoError(t, os.Remove(s.WrapperPath("greeting")))
	third, err := g.GenerateChunk(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Equal(t, []string{s.WrapperPath("greeting")}, third.Written)
	assert.Equal(t, snapshot[s.WrapperPath("greeting")], readFile(t, s.WrapperPath("greeting")))

	// a hand-edited artifact is restored even when the checksum matches
	require.NoError(t, os.WriteFile(s.DistPath("greeting", "ru"), []byte("// edited\n"), 0644))
	fourth, err := g.GenerateChunk(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Equal(t, []string{s.DistPath("greeting", "ru")}, fourth.Written)
	assert.Equal(t, snapshot[s.DistPath("greeting", "ru")], readFile(t, s.DistPath("greeting", "ru")))

	dicts, err := s.LoadAll("greeting")
	require.NoError(t, err)
	assert.False(t, lf.SourcesChanged("greeting", SourceChecksums(dicts)))
}

func TestGenerateAllIsolatesFailures(t *testing.T) {
	s := newTestStore(t, `{"languages": ["en", "ru"]}`)
	writeSrc(t, s, "good", "en", `{"a": "A"}`)
	writeSrc(t, s, "good", "ru", `{"a": null}`)
	writeSrc(t, s, "bad", "en", `{"a": "A"}`)

	err := New(s, nil).GenerateAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, resxerr.ErrValidation)
	assert.Contains(t, err.Error(), "bad")

	assert.FileExists(t, s.WrapperPath("good"))
	assert.NoFileExists(t, s.WrapperPath("bad"))
}

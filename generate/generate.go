// Package generate renders the JavaScript/TypeScript modules of a chunk:
// one value module per language, a facade that resolves the current
// language at call time with a fallback to the default language, and an
// optional type-declaration module.
//
// Output is deterministic. Keys are emitted in canonical order, imports
// in language-code order, and unchanged inputs produce byte-identical files.
package generate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/minios-linux/resxgen/chunkfile"
	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/lockfile"
	"github.com/minios-linux/resxgen/resxerr"
	"github.com/minios-linux/resxgen/store"
)

// Header is the first line of every generated file.
const Header = "// This file is auto-generated by resxgen. Do not edit it by hand."

// ---------------------------------------------------------------------------
// Generator
// ---------------------------------------------------------------------------

// Generator writes the generated modules of chunks. Files whose bytes on
// disk already equal the rendered content are not rewritten. An attached
// manifest records the checksums of everything generated.
type Generator struct {
	store *store.Store
	lock  *lockfile.LockFile
}

// New returns a Generator. lock may be nil.
func New(s *store.Store, lock *lockfile.LockFile) *Generator {
	return &Generator{store: s, lock: lock}
}

// ChunkResult lists the files handled for one chunk.
type ChunkResult struct {
	Chunk   string
	Written []string
	Skipped []string
	Err     error
}

type artifact struct {
	path string
	data []byte
}

// GenerateChunk renders and writes all modules of chunk. It refuses to
// run when the language key sets differ from the default language.
func (g *Generator) GenerateChunk(ctx context.Context, chunk string) (*ChunkResult, error) {
	cfg := g.store.Config()
	res := &ChunkResult{Chunk: chunk}

	if err := ValidateChunkName(chunk); err != nil {
		return res, err
	}

	dicts, err := g.store.LoadAll(chunk)
	if err != nil {
		return res, err
	}
	def := dicts[cfg.DefaultLang].Sorted()
	for _, k := range def.Keys() {
		if err := ValidateKeyName(k); err != nil {
			return res, fmt.Errorf("chunk %s: %w", chunk, err)
		}
	}
	if err := checkReconciled(chunk, cfg, dicts); err != nil {
		return res, err
	}

	langs := append([]string(nil), cfg.Languages...)
	sort.Strings(langs)

	var artifacts []artifact
	for _, lang := range langs {
		artifacts = append(artifacts, artifact{
			path: g.store.DistPath(chunk, lang),
			data: RenderLangModule(cfg, chunk, dicts[lang]),
		})
	}
	artifacts = append(artifacts, artifact{
		path: g.store.WrapperPath(chunk),
		data: RenderFacade(cfg, chunk, def),
	})
	if cfg.Declarations {
		artifacts = append(artifacts, artifact{
			path: g.store.TypesPath(chunk),
			data: RenderTypes(cfg, chunk, def),
		})
	}

	for _, a := range artifacts {
		written, err := g.write(chunk, a)
		if err != nil {
			return res, err
		}
		if written {
			res.Written = append(res.Written, a.path)
			slog.InfoContext(ctx, "Generated module", slog.String("file", a.path))
		} else {
			res.Skipped = append(res.Skipped, a.path)
			slog.DebugContext(ctx, "Module is up to date", slog.String("file", a.path))
		}
	}

	if g.lock != nil {
		g.lock.RecordSources(chunk, SourceChecksums(dicts))
	}
	return res, nil
}

// GenerateChunks generates chunks in parallel. A failing chunk does not
// stop the others; results are returned in input order.
func (g *Generator) GenerateChunks(ctx context.Context, chunks []string) []*ChunkResult {
	results := make([]*ChunkResult, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			res, err := g.GenerateChunk(ctx, chunk)
			if err != nil {
				res.Err = err
				slog.ErrorContext(ctx, "Generation failed",
					slog.String("chunk", chunk),
					slog.Any("error", err))
			}
			results[i] = res
		}(i, chunk)
	}
	wg.Wait()

	return results
}

// GenerateAll generates every chunk of the source folder and returns the
// joined per-chunk errors.
func (g *Generator) GenerateAll(ctx context.Context) error {
	chunks, err := g.store.ChunkNames()
	if err != nil {
		return err
	}
	var errs error
	for _, r := range g.GenerateChunks(ctx, chunks) {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Chunk, r.Err))
		}
	}
	return errs
}

func (g *Generator) write(chunk string, a artifact) (bool, error) {
	name := filepath.Base(a.path)
	if onDisk, err := os.ReadFile(a.path); err == nil && bytes.Equal(onDisk, a.data) {
		if g.lock != nil {
			g.lock.Record(chunk, name, a.data)
		}
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return false, fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(a.path, a.data, 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", a.path, err)
	}
	if g.lock != nil {
		g.lock.Record(chunk, name, a.data)
	}
	return true, nil
}

// checkReconciled verifies every configured language exists and carries
// exactly the default key set.
func checkReconciled(chunk string, cfg *config.Config, dicts map[string]*chunkfile.Dictionary) error {
	def := dicts[cfg.DefaultLang]
	for _, lang := range cfg.OtherLanguages() {
		d, ok := dicts[lang]
		if !ok {
			return &resxerr.ValidationError{Chunk: chunk, Message: "no " + lang + " dictionary, reconcile the chunk first"}
		}
		var absent, extra []string
		for _, k := range def.Keys() {
			if !d.Has(k) {
				absent = append(absent, k)
			}
		}
		for _, k := range d.Keys() {
			if !def.Has(k) {
				extra = append(extra, k)
			}
		}
		if len(absent) == 0 && len(extra) == 0 {
			continue
		}
		var parts []string
		if len(absent) > 0 {
			parts = append(parts, "missing "+strings.Join(absent, ", "))
		}
		if len(extra) > 0 {
			parts = append(parts, "extra "+strings.Join(extra, ", "))
		}
		return &resxerr.ValidationError{
			Chunk:   chunk,
			Message: lang + " key set differs from " + cfg.DefaultLang + " (" + strings.Join(parts, "; ") + "), reconcile the chunk first",
		}
	}
	return nil
}

// SourceChecksums returns language -> checksum of the canonical source form.
func SourceChecksums(dicts map[string]*chunkfile.Dictionary) map[string]string {
	sums := make(map[string]string, len(dicts))
	for lang, d := range dicts {
		sums[lang] = lockfile.Hash(d.Sorted().Marshal())
	}
	return sums
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

type writer struct {
	b   strings.Builder
	nl  string
	tab string
}

func newWriter(cfg *config.Config) *writer {
	w := &writer{nl: cfg.NewLine(), tab: cfg.Tab()}
	w.line(0, Header)
	return w
}

func (w *writer) line(indent int, s string) {
	if s != "" {
		w.b.WriteString(strings.Repeat(w.tab, indent))
		w.b.WriteString(s)
	}
	w.b.WriteString(w.nl)
}

func (w *writer) bytes() []byte {
	return []byte(w.b.String())
}

// RenderLangModule renders the value module of one language. Null values
// are omitted so the facade falls back to the default language.
func RenderLangModule(cfg *config.Config, chunk string, d *chunkfile.Dictionary) []byte {
	w := newWriter(cfg)
	values := d.Translated()
	if values.Len() == 0 {
		w.line(0, "export const "+chunk+" = {};")
		return w.bytes()
	}

	w.line(0, "export const "+chunk+" = {")
	for _, k := range values.Keys() {
		v, _ := values.Value(k)
		w.line(1, k+": '"+EscapeString(v)+"',")
	}
	w.line(0, "};")
	return w.bytes()
}

// RenderFacade renders the facade module. def must hold the full default
// key set; every key gets a getter, null values included.
func RenderFacade(cfg *config.Config, chunk string, def *chunkfile.Dictionary) []byte {
	wrapper := chunk + cfg.ResxPrefix
	langs := append([]string(nil), cfg.Languages...)
	sort.Strings(langs)

	w := newWriter(cfg)
	for _, lang := range langs {
		w.line(0, fmt.Sprintf("import { %s as %s } from './%s.%s';", chunk, importAlias(chunk, lang), wrapper, lang))
	}
	w.line(0, "")

	w.line(0, fmt.Sprintf("const langMap: { [k: string]: Partial<typeof %s> } = {", importAlias(chunk, cfg.DefaultLang)))
	for _, lang := range langs {
		w.line(1, propertyKey(lang)+": "+importAlias(chunk, lang)+",")
	}
	w.line(0, "};")
	w.line(0, "")

	w.line(0, "// tslint:disable:max-line-length")
	keys := def.Sorted().Keys()
	if len(keys) == 0 {
		w.line(0, "export const "+wrapper+" = {};")
	} else {
		fallback := memberAccess("langMap", cfg.DefaultLang)
		w.line(0, "export const "+wrapper+" = {")
		for _, k := range keys {
			v, _ := def.Value(k)
			w.line(1, "/**")
			w.line(1, " * "+cfg.DefaultLang+": "+commentText(v))
			w.line(1, " */")
			w.line(1, "get "+k+"() {")
			w.line(2, fmt.Sprintf("return (langMap[%s] || %s).%s || %s.%s;", cfg.CurrentLangNS, fallback, k, fallback, k))
			w.line(1, "},")
		}
		w.line(0, "};")
	}
	w.line(0, "")

	for _, ns := range namespaceChain(cfg.JSNamespace) {
		w.line(0, "// @ts-ignore")
		w.line(0, ns+" = "+ns+" || {};")
	}
	w.line(0, "// @ts-ignore")
	w.line(0, cfg.JSNamespace+"."+chunk+" = "+wrapper+";")
	return w.bytes()
}

// RenderTypes renders the type-declaration module. It describes the
// facade shape and adds the chunk to the global namespace interface.
func RenderTypes(cfg *config.Config, chunk string, def *chunkfile.Dictionary) []byte {
	shape := chunk + cfg.ResxPrefix + "Shape"
	keys := def.Sorted().Keys()

	w := newWriter(cfg)
	if len(keys) == 0 {
		w.line(0, "export interface "+shape+" {}")
	} else {
		w.line(0, "export interface "+shape+" {")
		for _, k := range keys {
			w.line(1, "readonly "+k+": string;")
		}
		w.line(0, "}")
	}
	w.line(0, "")
	w.line(0, "declare global {")
	w.line(1, "interface "+cfg.TypesInterface+" {")
	w.line(2, chunk+": "+shape+";")
	w.line(1, "}")
	w.line(0, "}")
	return w.bytes()
}

// namespaceChain returns the namespace prefixes to initialise. The root
// object of a dotted namespace is expected to exist already.
//
//	"ep"           -> ["ep"]
//	"ep.resources" -> ["ep.resources"]
//	"a.b.c"        -> ["a.b", "a.b.c"]
func namespaceChain(ns string) []string {
	parts := strings.Split(ns, ".")
	if len(parts) == 1 {
		return []string{ns}
	}
	chain := make([]string, 0, len(parts)-1)
	for i := 2; i <= len(parts); i++ {
		chain = append(chain, strings.Join(parts[:i], "."))
	}
	return chain
}

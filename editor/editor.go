// Package editor implements the single-target source edits: creating a
// chunk and adding a key to it. Neither operation reconciles or
// regenerates; callers run those passes afterwards.
package editor

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/minios-linux/resxgen/chunkfile"
	"github.com/minios-linux/resxgen/generate"
	"github.com/minios-linux/resxgen/resxerr"
	"github.com/minios-linux/resxgen/store"
)

// Editor edits the source dictionaries of a store.
type Editor struct {
	store *store.Store
}

// New returns an Editor for s.
func New(s *store.Store) *Editor {
	return &Editor{store: s}
}

// CreateChunk writes an empty dictionary for every configured language.
// It fails when the default-language file already exists.
func (e *Editor) CreateChunk(ctx context.Context, chunk string) error {
	if err := generate.ValidateChunkName(chunk); err != nil {
		return err
	}
	if e.store.HasChunk(chunk) {
		return &resxerr.DuplicateChunkError{Chunk: chunk}
	}

	for _, lang := range e.store.Config().Languages {
		if err := e.store.Save(chunk, lang, chunkfile.New()); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "Created chunk",
		slog.String("chunk", chunk),
		slog.Any("languages", e.store.Config().Languages))
	return nil
}

// AddKey merges key into the dictionary of every language in values,
// creating dictionaries whose file is absent. The key is appended without
// re-sorting; the next reconciliation normalises the order.
func (e *Editor) AddKey(ctx context.Context, chunk, key string, values map[string]string) error {
	cfg := e.store.Config()

	if err := generate.ValidateChunkName(chunk); err != nil {
		return err
	}
	if err := generate.ValidateKeyName(key); err != nil {
		return err
	}

	langs := make([]string, 0, len(values))
	for lang := range values {
		if !cfg.HasLanguage(lang) {
			return &resxerr.ValidationError{Chunk: chunk, Message: "unknown language " + lang}
		}
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	def, err := e.store.LoadDefault(chunk)
	if err != nil {
		return err
	}
	if def.Has(key) {
		return &resxerr.DuplicateKeyError{Chunk: chunk, Key: key}
	}

	for _, lang := range langs {
		d := def
		if lang != cfg.DefaultLang {
			d, err = e.store.Load(chunk, lang)
			if errors.Is(err, fs.ErrNotExist) {
				d, err = chunkfile.New(), nil
			}
			if err != nil {
				return err
			}
		}
		d.Set(key, values[lang])
		if err := e.store.Save(chunk, lang, d); err != nil {
			return err
		}
		slog.DebugContext(ctx, "Added key",
			slog.String("file", e.store.SrcPath(chunk, lang)),
			slog.String("key", key))
	}
	slog.InfoContext(ctx, "Added key to chunk",
		slog.String("chunk", chunk),
		slog.String("key", key),
		slog.Any("languages", langs))
	return nil
}

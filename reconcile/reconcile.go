// Package reconcile aligns every language dictionary of a chunk with the
// default-language dictionary, the way msgmerge aligns PO files with a
// template:
//   - keys missing from a language are added with a null value,
//   - keys the default language does not define are deleted,
//   - existing values are kept untouched,
//   - the result is stored in canonical key order.
package reconcile

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/minios-linux/resxgen/chunkfile"
	"github.com/minios-linux/resxgen/resxerr"
	"github.com/minios-linux/resxgen/store"
)

// Status describes what reconciliation did to one language file.
type Status string

const (
	StatusCreated   Status = "created"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// LangResult is the outcome for one non-default language.
type LangResult struct {
	Lang   string
	Status Status
	// Extra are the deleted keys, Absent the keys added as null.
	Extra  []string
	Absent []string
	// Resorted is set when only the on-disk key order changed.
	Resorted bool
	Err      error
}

// Result is the outcome for one chunk.
type Result struct {
	Chunk string
	// Keys is the default key set in canonical order.
	Keys []string
	// DefaultResorted is set when the default file was rewritten in canonical order.
	DefaultResorted bool
	Languages       []LangResult
}

// Changed reports whether any file of the chunk was written.
func (r *Result) Changed() bool {
	if r.DefaultResorted {
		return true
	}
	for _, l := range r.Languages {
		if l.Status == StatusCreated || l.Status == StatusUpdated || l.Resorted {
			return true
		}
	}
	return false
}

// Err combines the per-language errors.
func (r *Result) Err() error {
	var err error
	for _, l := range r.Languages {
		err = multierr.Append(err, l.Err)
	}
	return err
}

// Align returns a copy of lang whose key set equals def's, in canonical
// order. extra lists the removed keys, absent the keys added as null; both
// are in canonical order.
func Align(def, lang *chunkfile.Dictionary) (aligned *chunkfile.Dictionary, extra, absent []string) {
	aligned = chunkfile.New()

	for _, k := range lang.Keys() {
		if !def.Has(k) {
			extra = append(extra, k)
		}
	}

	for _, k := range def.Keys() {
		if v, ok := lang.Get(k); ok {
			if v == nil {
				aligned.SetNull(k)
			} else {
				aligned.Set(k, *v)
			}
			continue
		}
		absent = append(absent, k)
		aligned.SetNull(k)
	}

	chunkfile.SortKeys(extra)
	chunkfile.SortKeys(absent)
	return aligned.Sorted(), extra, absent
}

// Reconciler runs reconciliation against a store.
type Reconciler struct {
	store *store.Store
}

// New returns a Reconciler for s.
func New(s *store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// Reconcile aligns all languages of chunk with its default language and
// persists every file it changed. A failing language does not stop its
// siblings; their errors are joined in the returned error and recorded in
// the result. Default-language failures abort the chunk.
func (r *Reconciler) Reconcile(ctx context.Context, chunk string) (*Result, error) {
	cfg := r.store.Config()
	res := &Result{Chunk: chunk}

	def, err := r.store.LoadDefault(chunk)
	if err != nil {
		return res, err
	}
	if nulls := def.NullKeys(); len(nulls) > 0 && cfg.IsStrictDefault() {
		return res, &resxerr.ValidationError{
			Chunk:   chunk,
			Message: "default language " + cfg.DefaultLang + " has null values for " + strings.Join(nulls, ", "),
		}
	}

	if !def.IsSorted() {
		def = def.Sorted()
		if err := r.store.Save(chunk, cfg.DefaultLang, def); err != nil {
			return res, err
		}
		res.DefaultResorted = true
		slog.InfoContext(ctx, "Sorted default language file", slog.String("file", r.store.DefaultSrcPath(chunk)))
	}
	res.Keys = def.Keys()

	others := cfg.OtherLanguages()
	res.Languages = make([]LangResult, len(others))

	var wg sync.WaitGroup
	for i, lang := range others {
		wg.Add(1)
		go func(i int, lang string) {
			defer wg.Done()
			lr := r.reconcileLang(ctx, chunk, lang, def)
			if lr.Err != nil {
				lr.Status = StatusFailed
				slog.ErrorContext(ctx, "Reconciliation failed",
					slog.String("chunk", chunk),
					slog.String("lang", lang),
					slog.Any("error", lr.Err))
			}
			res.Languages[i] = lr
		}(i, lang)
	}
	wg.Wait()

	return res, res.Err()
}

func (r *Reconciler) reconcileLang(ctx context.Context, chunk, lang string, def *chunkfile.Dictionary) LangResult {
	lr := LangResult{Lang: lang}
	path := r.store.SrcPath(chunk, lang)

	current, err := r.store.Load(chunk, lang)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.store.Save(chunk, lang, chunkfile.NewNull(def.Keys())); err != nil {
			lr.Err = err
			return lr
		}
		lr.Status = StatusCreated
		lr.Absent = def.Keys()
		slog.InfoContext(ctx, "Created missing language file", slog.String("file", path))
		return lr
	}
	if err != nil {
		lr.Err = err
		return lr
	}

	aligned, extra, absent := Align(def, current)
	lr.Extra, lr.Absent = extra, absent

	switch {
	case len(extra) > 0 || len(absent) > 0:
		lr.Status = StatusUpdated
	case !current.IsSorted():
		lr.Status = StatusUnchanged
		lr.Resorted = true
	default:
		lr.Status = StatusUnchanged
		return lr
	}

	if err := r.store.Save(chunk, lang, aligned); err != nil {
		lr.Err = err
		return lr
	}

	for _, k := range extra {
		slog.WarnContext(ctx, "Deleted extra key", slog.String("file", path), slog.String("key", k))
	}
	if len(absent) > 0 {
		slog.InfoContext(ctx, "Added absent keys", slog.String("file", path), slog.Any("keys", absent))
	}
	if lr.Status == StatusUpdated {
		slog.InfoContext(ctx, "Updated language file", slog.String("file", path))
	}
	return lr
}

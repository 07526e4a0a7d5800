// Package search finds translated values across the source dictionaries.
package search

import (
	"errors"
	"io/fs"

	"go.uber.org/multierr"

	"github.com/minios-linux/resxgen/store"
)

// Match is one key holding the searched value.
type Match struct {
	Chunk string `json:"chunk"`
	Lang  string `json:"lang"`
	Key   string `json:"key"`
	Path  string `json:"path"`
}

// Searcher searches a store.
type Searcher struct {
	store *store.Store
}

// New returns a Searcher for s.
func New(s *store.Store) *Searcher {
	return &Searcher{store: s}
}

// Find returns the keys whose value equals value exactly. Unless all is
// set, only the first matching key of each file is reported. Matches are
// ordered by chunk, configured language order, then file key order.
// Unreadable files are skipped and their errors joined.
func (s *Searcher) Find(value string, all bool) ([]Match, error) {
	chunks, err := s.store.ChunkNames()
	if err != nil {
		return nil, err
	}

	var (
		matches []Match
		errs    error
	)
	for _, chunk := range chunks {
		for _, lang := range s.store.Config().Languages {
			d, err := s.store.Load(chunk, lang)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			for _, k := range d.Keys() {
				v, ok := d.Value(k)
				if !ok || v != value {
					continue
				}
				matches = append(matches, Match{Chunk: chunk, Lang: lang, Key: k, Path: s.store.SrcPath(chunk, lang)})
				if !all {
					break
				}
			}
		}
	}
	return matches, errs
}

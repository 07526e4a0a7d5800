// Package store resolves the on-disk locations of chunk sources and
// generated modules, discovers chunk names and loads/saves dictionaries.
//
// Layout:
//
//	<srcFolder>/<chunk>.<lang>.json
//	<distFolder>/<chunk><prefix>.<lang>.<langExt>
//	<distFolder>/<chunk><prefix>.<ext>
//	<distFolder>/<chunk><prefix>.d.<ext>
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fslock "github.com/ipfs/go-fs-lock"

	"github.com/minios-linux/resxgen/chunkfile"
	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/resxerr"
)

// LockFileName is the advisory run lock created in the source folder.
const LockFileName = ".resxgen.lock"

// srcExt is the extension of chunk source files.
const srcExt = ".json"

// Store gives access to one source/output folder pair.
type Store struct {
	cfg *config.Config
}

// New returns a Store for cfg.
func New(cfg *config.Config) *Store {
	return &Store{cfg: cfg}
}

// Config returns the configuration the store was built from.
func (s *Store) Config() *config.Config {
	return s.cfg
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// SrcPath returns the source file of chunk in lang.
func (s *Store) SrcPath(chunk, lang string) string {
	return filepath.Join(s.cfg.SrcFolder, chunk+"."+lang+srcExt)
}

// DefaultSrcPath returns the default-language source file of chunk.
func (s *Store) DefaultSrcPath(chunk string) string {
	return s.SrcPath(chunk, s.cfg.DefaultLang)
}

// WrapperName returns the generated export name of chunk's facade.
func (s *Store) WrapperName(chunk string) string {
	return chunk + s.cfg.ResxPrefix
}

// DistPath returns the generated per-language module of chunk.
func (s *Store) DistPath(chunk, lang string) string {
	return filepath.Join(s.cfg.DistFolder, s.WrapperName(chunk)+"."+lang+"."+s.cfg.LangExt)
}

// WrapperPath returns the generated facade module of chunk.
func (s *Store) WrapperPath(chunk string) string {
	return filepath.Join(s.cfg.DistFolder, s.WrapperName(chunk)+"."+s.cfg.Ext)
}

// TypesPath returns the generated type-declaration module of chunk.
func (s *Store) TypesPath(chunk string) string {
	return filepath.Join(s.cfg.DistFolder, s.WrapperName(chunk)+".d."+s.cfg.Ext)
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// ChunkNameOf returns the chunk a source file name belongs to, or "" when
// the name does not follow <chunk>.<lang>.json.
func ChunkNameOf(fileName string) string {
	if !strings.HasSuffix(fileName, srcExt) {
		return ""
	}
	parts := strings.Split(fileName, ".")
	if len(parts) < 3 || parts[0] == "" {
		return ""
	}
	return parts[0]
}

// ChunkNames lists the unique chunk names found in the source folder, sorted.
func (s *Store) ChunkNames() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.SrcFolder)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.cfg.SrcFolder, err)
	}

	seen := make(map[string]bool)
	var chunks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := ChunkNameOf(entry.Name())
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		chunks = append(chunks, name)
	}
	sort.Strings(chunks)
	return chunks, nil
}

// Exists reports whether the source file of chunk in lang exists.
func (s *Store) Exists(chunk, lang string) bool {
	info, err := os.Stat(s.SrcPath(chunk, lang))
	return err == nil && !info.IsDir()
}

// HasChunk reports whether chunk has its default-language file.
func (s *Store) HasChunk(chunk string) bool {
	return s.Exists(chunk, s.cfg.DefaultLang)
}

// ---------------------------------------------------------------------------
// Load / save
// ---------------------------------------------------------------------------

// Load parses the dictionary of chunk in lang. A missing file yields an
// error matching fs.ErrNotExist; malformed content a *resxerr.ParseError.
func (s *Store) Load(chunk, lang string) (*chunkfile.Dictionary, error) {
	return chunkfile.ParseFile(s.SrcPath(chunk, lang))
}

// LoadDefault parses the default-language dictionary of chunk.
func (s *Store) LoadDefault(chunk string) (*chunkfile.Dictionary, error) {
	d, err := s.Load(chunk, s.cfg.DefaultLang)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &resxerr.MissingDefaultFileError{Chunk: chunk, Path: s.DefaultSrcPath(chunk)}
	}
	return d, err
}

// Save writes the dictionary of chunk in lang.
func (s *Store) Save(chunk, lang string, d *chunkfile.Dictionary) error {
	return d.WriteFile(s.SrcPath(chunk, lang))
}

// LoadAll parses every configured language of chunk. Languages whose file
// is missing are skipped; the default language must exist.
func (s *Store) LoadAll(chunk string) (map[string]*chunkfile.Dictionary, error) {
	out := make(map[string]*chunkfile.Dictionary, len(s.cfg.Languages))
	def, err := s.LoadDefault(chunk)
	if err != nil {
		return nil, err
	}
	out[s.cfg.DefaultLang] = def

	for _, lang := range s.cfg.OtherLanguages() {
		d, err := s.Load(chunk, lang)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[lang] = d
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Locking
// ---------------------------------------------------------------------------

// Lock takes the advisory run lock of the source folder. A lock held by
// another run yields an error matching resxerr.ErrLocked. Close releases it.
func (s *Store) Lock() (io.Closer, error) {
	closer, err := fslock.Lock(s.cfg.SrcFolder, LockFileName)
	if err != nil {
		le := fslock.LockedError("")
		// a lock already held by this process surfaces as "already locked"
		if errors.As(err, &le) || strings.Contains(err.Error(), "already locked") {
			return nil, fmt.Errorf("%w: %v", resxerr.ErrLocked, err)
		}
		return nil, fmt.Errorf("locking %s: %w", s.cfg.SrcFolder, err)
	}
	return closer, nil
}

// Package lockfile implements resxgen.lock, a manifest that tracks MD5
// checksums of the generated modules and of the source dictionaries they
// were generated from, per chunk. The generator uses it to skip rewriting
// artifacts whose content did not change, and status uses it to report
// chunks whose sources changed since the last generation.
//
// The manifest is stored in the output folder as resxgen.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the default manifest file name.
const FileName = "resxgen.lock"

// Version is the manifest format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the resxgen.lock structure.
type LockFile struct {
	Version int `yaml:"version"`
	// Artifacts maps chunk -> generated file name -> md5.
	Artifacts map[string]map[string]string `yaml:"artifacts"`
	// Sources maps chunk -> language -> md5 of the canonical source dictionary.
	Sources map[string]map[string]string `yaml:"sources"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the manifest from the given directory.
// Returns an empty manifest if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, FileName)
	lf := &LockFile{
		Version:   Version,
		Artifacts: make(map[string]map[string]string),
		Sources:   make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Artifacts == nil {
		lf.Artifacts = make(map[string]map[string]string)
	}
	if lf.Sources == nil {
		lf.Sources = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the manifest to disk. Map keys are emitted sorted, so an
// unchanged manifest is byte-identical between runs.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the manifest path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of data.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

// IsCurrent reports whether the recorded checksum of a chunk's artifact
// matches data.
func (lf *LockFile) IsCurrent(chunk, file string, data []byte) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	files, ok := lf.Artifacts[chunk]
	if !ok {
		return false
	}
	return files[file] == Hash(data)
}

// Modified returns the recorded artifacts under dir whose content no longer
// matches the manifest, missing ones included, sorted by chunk then file.
func (lf *LockFile) Modified(dir string) []string {
	var out []string
	for _, chunk := range lf.Chunks() {
		lf.mu.Lock()
		files := make([]string, 0, len(lf.Artifacts[chunk]))
		for f := range lf.Artifacts[chunk] {
			files = append(files, f)
		}
		lf.mu.Unlock()
		sort.Strings(files)

		for _, f := range files {
			data, err := os.ReadFile(filepath.Join(dir, f))
			if err != nil || !lf.IsCurrent(chunk, f, data) {
				out = append(out, f)
			}
		}
	}
	return out
}

// Record stores the checksum of a generated artifact.
func (lf *LockFile) Record(chunk, file string, data []byte) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Artifacts[chunk] == nil {
		lf.Artifacts[chunk] = make(map[string]string)
	}
	lf.Artifacts[chunk][file] = Hash(data)
}

// RecordSources replaces the source checksums of chunk. sums maps
// language -> checksum.
func (lf *LockFile) RecordSources(chunk string, sums map[string]string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	copied := make(map[string]string, len(sums))
	for k, v := range sums {
		copied[k] = v
	}
	lf.Sources[chunk] = copied
}

// SourcesChanged reports whether sums differ from the recorded source
// checksums of chunk. A chunk that was never generated is changed.
func (lf *LockFile) SourcesChanged(chunk string, sums map[string]string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	recorded, ok := lf.Sources[chunk]
	if !ok || len(recorded) != len(sums) {
		return true
	}
	for lang, sum := range sums {
		if recorded[lang] != sum {
			return true
		}
	}
	return false
}

// Clean removes chunks that are no longer present. This prevents stale
// entries from accumulating.
func (lf *LockFile) Clean(currentChunks []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	valid := make(map[string]bool, len(currentChunks))
	for _, c := range currentChunks {
		valid[c] = true
	}

	for c := range lf.Artifacts {
		if !valid[c] {
			delete(lf.Artifacts, c)
		}
	}
	for c := range lf.Sources {
		if !valid[c] {
			delete(lf.Sources, c)
		}
	}
}

// RemoveChunk removes all checksums of a chunk.
func (lf *LockFile) RemoveChunk(chunk string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Artifacts, chunk)
	delete(lf.Sources, chunk)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of chunks and generated files in the manifest.
func (lf *LockFile) Stats() (chunks, files int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	chunks = len(lf.Artifacts)
	for _, m := range lf.Artifacts {
		files += len(m)
	}
	return
}

// Chunks returns the sorted list of chunks with recorded artifacts.
func (lf *LockFile) Chunks() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	chunks := make([]string, 0, len(lf.Artifacts))
	for c := range lf.Artifacts {
		chunks = append(chunks, c)
	}
	sort.Strings(chunks)
	return chunks
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	chunks, files := lf.Stats()
	if chunks == 0 {
		return "empty"
	}

	var parts []string
	for _, c := range lf.Chunks() {
		lf.mu.Lock()
		n := len(lf.Artifacts[c])
		lf.mu.Unlock()
		parts = append(parts, fmt.Sprintf("%s: %d files", c, n))
	}
	return fmt.Sprintf("%d chunks, %d files (%s)", chunks, files, strings.Join(parts, ", "))
}

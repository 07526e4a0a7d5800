// Package resxerr defines the error types shared by the resxgen packages.
// Every concrete error matches one of the sentinel values through errors.Is,
// so callers can branch on the kind of failure without type assertions.
package resxerr

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrParse          = errors.New("malformed source file")
	ErrMissingDefault = errors.New("default language file missing")
	ErrDuplicateKey   = errors.New("key already exists")
	ErrDuplicateChunk = errors.New("chunk already exists")
	ErrInvalidName    = errors.New("invalid name")
	ErrValidation     = errors.New("validation failed")
	ErrLocked         = errors.New("store is locked by another run")
)

// ParseError reports a source file that is not a flat string-keyed object.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MissingDefaultFileError reports a chunk without its default-language file.
type MissingDefaultFileError struct {
	Chunk string
	Path  string
}

func (e *MissingDefaultFileError) Error() string {
	return fmt.Sprintf("chunk %q: default language file %s does not exist", e.Chunk, e.Path)
}

// Is implements errors.Is support.
func (e *MissingDefaultFileError) Is(target error) bool { return target == ErrMissingDefault }

// DuplicateKeyError reports an add-key on a key the default language already defines.
type DuplicateKeyError struct {
	Chunk string
	Key   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("chunk %q already has key %q", e.Chunk, e.Key)
}

// Is implements errors.Is support.
func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// DuplicateChunkError reports a create-chunk on an existing chunk.
type DuplicateChunkError struct {
	Chunk string
}

func (e *DuplicateChunkError) Error() string {
	return fmt.Sprintf("chunk %q already exists", e.Chunk)
}

// Is implements errors.Is support.
func (e *DuplicateChunkError) Is(target error) bool { return target == ErrDuplicateChunk }

// InvalidNameError reports a chunk or key name that cannot be used as a
// source-level identifier.
type InvalidNameError struct {
	Kind   string // "chunk" or "key"
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s name %q: %s", e.Kind, e.Name, e.Reason)
}

// Is implements errors.Is support.
func (e *InvalidNameError) Is(target error) bool { return target == ErrInvalidName }

// ValidationError reports data that parses but violates an invariant.
type ValidationError struct {
	Chunk   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Chunk == "" {
		return e.Message
	}
	return fmt.Sprintf("chunk %q: %s", e.Chunk, e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

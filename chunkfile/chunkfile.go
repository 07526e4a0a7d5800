// Package chunkfile implements reading and writing of chunk source
// dictionaries.
//
// The expected file format is a flat JSON object:
//
//	{
//	    "bye": null,
//	    "hello": "Привет"
//	}
//
// Keys are resource identifiers. A null value means untranslated: the
// generated facade falls back to the default language at lookup time.
package chunkfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/minios-linux/resxgen/resxerr"
)

// Dictionary is one language's key -> value mapping of a chunk.
// A nil value is an explicit null.
type Dictionary struct {
	entries *orderedmap.OrderedMap[string, *string]
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{entries: orderedmap.New[string, *string]()}
}

// NewNull returns a dictionary holding keys in the given order, all null.
func NewNull(keys []string) *Dictionary {
	d := New()
	for _, k := range keys {
		d.entries.Set(k, nil)
	}
	return d
}

// ParseFile reads and parses a chunk source file. Malformed content is
// reported as a *resxerr.ParseError carrying the path.
func ParseFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, &resxerr.ParseError{Path: path, Err: err}
	}
	return d, nil
}

// Parse parses dictionary JSON data, preserving the key order of the input.
func Parse(data []byte) (*Dictionary, error) {
	if err := validateShape(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	// Read opening brace.
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	d := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := vt.(type) {
		case nil:
			d.entries.Set(key, nil)
		case string:
			d.entries.Set(key, &v)
		default:
			return nil, fmt.Errorf("expected string or null value for key %q, got %T", key, vt)
		}
	}

	return d, nil
}

// Len returns the number of keys.
func (d *Dictionary) Len() int {
	return d.entries.Len()
}

// Keys returns the keys in their current order.
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, d.entries.Len())
	for p := d.entries.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Has reports whether key is present, null or not.
func (d *Dictionary) Has(key string) bool {
	_, ok := d.entries.Get(key)
	return ok
}

// Get returns the raw value of key. The pointer is nil for null values.
func (d *Dictionary) Get(key string) (*string, bool) {
	return d.entries.Get(key)
}

// Value returns the string value of key; ok is false for absent and null keys.
func (d *Dictionary) Value(key string) (string, bool) {
	v, present := d.entries.Get(key)
	if !present || v == nil {
		return "", false
	}
	return *v, true
}

// Set stores a string value. New keys are appended at the end.
func (d *Dictionary) Set(key, value string) {
	d.entries.Set(key, &value)
}

// SetNull stores an explicit null.
func (d *Dictionary) SetNull(key string) {
	d.entries.Set(key, nil)
}

// Delete removes key and reports whether it was present.
func (d *Dictionary) Delete(key string) bool {
	_, ok := d.entries.Delete(key)
	return ok
}

// NullKeys returns the keys holding null, in current order.
func (d *Dictionary) NullKeys() []string {
	var result []string
	for p := d.entries.Oldest(); p != nil; p = p.Next() {
		if p.Value == nil {
			result = append(result, p.Key)
		}
	}
	return result
}

// Stats returns (total, translated, untranslated) counts.
func (d *Dictionary) Stats() (total, translated, untranslated int) {
	total = d.entries.Len()
	for p := d.entries.Oldest(); p != nil; p = p.Next() {
		if p.Value != nil {
			translated++
		} else {
			untranslated++
		}
	}
	return
}

// Sorted returns a copy of d with keys in canonical order.
func (d *Dictionary) Sorted() *Dictionary {
	keys := d.Keys()
	SortKeys(keys)
	out := New()
	for _, k := range keys {
		v, _ := d.entries.Get(k)
		out.entries.Set(k, v)
	}
	return out
}

// IsSorted reports whether the keys are already in canonical order.
func (d *Dictionary) IsSorted() bool {
	return IsSortedKeys(d.Keys())
}

// Translated returns a canonically sorted copy of d without null values.
func (d *Dictionary) Translated() *Dictionary {
	out := New()
	for p := d.entries.Oldest(); p != nil; p = p.Next() {
		if p.Value != nil {
			out.entries.Set(p.Key, p.Value)
		}
	}
	return out.Sorted()
}

// WriteFile writes the dictionary to path in the stable source format.
func (d *Dictionary) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, d.Marshal(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Marshal produces the source format: 4-space indentation, keys in their
// current order, trailing newline. Callers sort first for canonical output.
func (d *Dictionary) Marshal() []byte {
	if d.entries.Len() == 0 {
		return []byte("{}\n")
	}

	var b strings.Builder
	b.WriteString("{\n")
	i, n := 0, d.entries.Len()
	for p := d.entries.Oldest(); p != nil; p = p.Next() {
		b.WriteString("    ")
		b.WriteString(jsonString(p.Key))
		b.WriteString(": ")
		if p.Value == nil {
			b.WriteString("null")
		} else {
			b.WriteString(jsonString(*p.Value))
		}
		if i++; i < n {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

// MarshalJSON encodes the dictionary as a compact JSON object in key order.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	return d.entries.MarshalJSON()
}

// jsonString returns a JSON-encoded string value without HTML escaping.
func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

package chunkfile

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// shapeSchema accepts a flat object whose values are strings or null.
const shapeSchema = `{
  "type": "object",
  "additionalProperties": {"type": ["string", "null"]}
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(shapeSchema))
	})
	return schema, schemaErr
}

// validateShape rejects documents that are not a flat string-keyed object
// of string or null values. Syntax errors surface from the loader.
func validateShape(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling dictionary schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("not a flat dictionary: %s", strings.Join(msgs, "; "))
}

// Package feature turns heterogeneous student records into the fixed,
// schema-ordered numeric feature vectors the scoring service expects.
package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrSchemaNotFound is returned when no candidate path yields a valid schema.
var ErrSchemaNotFound = errors.New("feature schema could not be loaded from any candidate path")

// Definition is a single named feature in the schema. Default is the raw
// JSON value substituted when the student record has no usable source value.
type Definition struct {
	Name    string `json:"name"`
	Default any    `json:"default"`
}

// Schema is the externally supplied, versioned feature list. It is loaded
// once at startup and shared read-only afterwards; definition order fixes
// the feature vector's iteration order.
type Schema struct {
	version string
	defs    []Definition
}

type schemaFile struct {
	Version  string       `json:"version"`
	Features []Definition `json:"features"`
}

// NewSchema builds a schema directly from definitions. A schema must carry
// at least one definition.
func NewSchema(version string, defs []Definition) (*Schema, error) {
	if len(defs) == 0 {
		return nil, errors.New("feature schema must define at least one feature")
	}
	return &Schema{version: version, defs: defs}, nil
}

// LoadSchema reads the schema from the first candidate path that is readable
// and parses as a valid schema document. Candidates that are missing,
// unreadable, or malformed are skipped; if all are, the error is fatal for
// any component that needs predictions.
func LoadSchema(candidatePaths []string) (*Schema, error) {
	for _, path := range candidatePaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var sf schemaFile
		if err := json.Unmarshal(raw, &sf); err != nil {
			continue
		}
		if len(sf.Features) == 0 {
			continue
		}

		return &Schema{version: sf.Version, defs: sf.Features}, nil
	}

	return nil, fmt.Errorf("%w: tried %d path(s)", ErrSchemaNotFound, len(candidatePaths))
}

// Version returns the schema's version tag (may be empty).
func (s *Schema) Version() string { return s.version }

// Definitions returns the ordered feature definitions.
func (s *Schema) Definitions() []Definition { return s.defs }

// Len returns the number of feature definitions.
func (s *Schema) Len() int { return len(s.defs) }

package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Vector is an ordered feature-name → normalized-value mapping. Values are
// bounded floats, booleans, or lowercase snake tokens. Insertion order is
// preserved through JSON marshalling so the scorer and the stored
// input_data provenance see the exact schema order.
type Vector struct {
	names  []string
	values map[string]any
}

// NewVector creates an empty vector with room for n entries.
func NewVector(n int) *Vector {
	return &Vector{
		names:  make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores a value, appending the name to the iteration order on first use.
func (v *Vector) Set(name string, value any) {
	if _, exists := v.values[name]; !exists {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Get returns the value for name and whether it is present.
func (v *Vector) Get(name string) (any, bool) {
	val, ok := v.values[name]
	return val, ok
}

// Float returns the value for name coerced to float64. Missing or
// non-numeric values report ok=false.
func (v *Vector) Float(name string) (float64, bool) {
	val, ok := v.values[name]
	if !ok {
		return 0, false
	}
	return toFloat(val)
}

// Bool returns the value for name as a boolean. Missing values report
// ok=false; non-boolean values are coerced through truthy parsing.
func (v *Vector) Bool(name string) (bool, bool) {
	val, ok := v.values[name]
	if !ok {
		return false, false
	}
	if b, isBool := val.(bool); isBool {
		return b, true
	}
	return parseTruthy(val), true
}

// Names returns the feature names in insertion order.
func (v *Vector) Names() []string { return v.names }

// Len returns the number of entries.
func (v *Vector) Len() int { return len(v.names) }

// MarshalJSON encodes the vector as a JSON object in insertion order.
func (v *Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range v.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v.values[name])
		if err != nil {
			return nil, fmt.Errorf("marshal feature %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving its key order.
func (v *Vector) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("feature vector must be a JSON object")
	}

	v.names = v.names[:0]
	v.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		if num, isNum := val.(json.Number); isNum {
			if f, err := num.Float64(); err == nil {
				val = f
			}
		}
		v.Set(key, val)
	}

	_, err = dec.Token() // closing brace
	return err
}

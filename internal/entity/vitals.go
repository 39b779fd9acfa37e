package entity

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// VitalSigns is an insertion-ordered map of vital name to recorded value.
// A key keeps the position of its first appearance; a later Set replaces the value.
type VitalSigns struct {
	keys   []string
	values map[string]string
}

// Set records value under key.
func (v *VitalSigns) Set(key, value string) {
	if v.values == nil {
		v.values = make(map[string]string)
	}
	if _, ok := v.values[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.values[key] = value
}

// Get returns the value recorded for key.
func (v VitalSigns) Get(key string) (string, bool) {
	val, ok := v.values[key]
	return val, ok
}

// Keys returns the keys in order of first appearance.
func (v VitalSigns) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Len returns the number of recorded vitals.
func (v VitalSigns) Len() int { return len(v.keys) }

// MarshalJSON writes an object whose member order follows insertion order.
func (v VitalSigns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object preserving member order.
func (v *VitalSigns) UnmarshalJSON(data []byte) error {
	*v = VitalSigns{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("vital_signs: expected object, got %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("vital_signs: expected string key, got %v", kt)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("vital_signs[%s]: %w", key, err)
		}
		v.Set(key, val)
	}
	_, err = dec.Token()
	return err
}

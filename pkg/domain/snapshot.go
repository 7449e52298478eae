package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Snapshot is the flat, schema-less state a simulation engine exposes.
// Numbers decoded by this package are json.Number values.
type Snapshot map[string]any

// DecodeSnapshot reads a JSON object, keeping numbers as json.Number.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is not a JSON object", ErrSchemaMismatch)
	}
	return snap, nil
}

// ParseSnapshot is DecodeSnapshot over a byte slice.
func ParseSnapshot(data []byte) (Snapshot, error) {
	return DecodeSnapshot(bytes.NewReader(data))
}

// Marshal encodes the snapshot as compact JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Clone returns a deep copy by round-tripping through JSON.
func (s Snapshot) Clone() (Snapshot, error) {
	if s == nil {
		return nil, nil
	}
	data, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(data)
}

// Normalize re-encodes the snapshot so that Go-typed values (int, structs)
// compare equal to their decoded json.Number form.
func (s Snapshot) Normalize() (Snapshot, error) {
	return s.Clone()
}

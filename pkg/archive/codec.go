// Package archive records committed sessions for later inspection.
//
// A commit's payload is stored as zstd-compressed JSON. Archives are
// implemented by the adapters (memory, redis, sqlite); this package owns the
// record shape, the codec and the lifecycle hooks that feed an archive.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/KDL-umass/Toybox/pkg/domain"
	"github.com/klauspost/compress/zstd"
)

// Encode serializes a commit as zstd-compressed JSON.
func Encode(c domain.Commit) ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal commit: %w", err)
	}

	compressed := bytes.NewBuffer(nil)
	w, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to compress commit: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return compressed.Bytes(), nil
}

// Decode reverses Encode. Snapshot numbers come back as json.Number.
func Decode(data []byte) (domain.Commit, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return domain.Commit{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Commit{}, fmt.Errorf("failed to decompress commit: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var c domain.Commit
	if err := dec.Decode(&c); err != nil {
		return domain.Commit{}, fmt.Errorf("failed to unmarshal commit: %w", err)
	}
	return c, nil
}

package domain

import (
	"reflect"
	"sort"
)

// SnapshotDiff lists the top-level keys that changed between two snapshots.
type SnapshotDiff struct {
	// Changed holds the new value of every added or modified key.
	Changed map[string]any `json:"changed,omitempty"`
	// Removed lists keys present before and absent after.
	Removed []string `json:"removed,omitempty"`
}

// Diff compares two snapshots key by key.
// If before is nil, every key of after is reported as changed.
// Both sides should be in the same numeric form (see Snapshot.Normalize).
func Diff(before, after Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{Changed: make(map[string]any)}

	for k, newVal := range after {
		oldVal, exists := before[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			diff.Changed[k] = newVal
		}
	}

	for k := range before {
		if _, exists := after[k]; !exists {
			diff.Removed = append(diff.Removed, k)
		}
	}
	sort.Strings(diff.Removed)

	if len(diff.Changed) == 0 {
		diff.Changed = nil
	}
	return diff
}

// Keys returns the sorted names of all changed and removed keys.
func (d *SnapshotDiff) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.Changed)+len(d.Removed))
	for k := range d.Changed {
		keys = append(keys, k)
	}
	keys = append(keys, d.Removed...)
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether the diff carries no changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d == nil || (len(d.Changed) == 0 && len(d.Removed) == 0)
}

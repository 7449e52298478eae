package domain

import "time"

// Commit is the archived record of one session write-back.
type Commit struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Game        string    `json:"game"`
	CommittedAt time.Time `json:"committed_at"`
	// Changed lists the top-level snapshot keys the session modified.
	Changed  []string `json:"changed,omitempty"`
	Snapshot Snapshot `json:"snapshot"`
}

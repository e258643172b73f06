package domain

import (
	"encoding/json"
	"time"
)

// DraftExpiry is how long a saved form draft stays valid. A draft older
// than this is discarded on the next read.
const DraftExpiry = 15 * time.Minute

// FormDraft is an in-progress on-ramp form, persisted so a user can resume
// after a page reload. The payload is opaque to the server.
type FormDraft struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// Expired reports whether the draft is past its expiry window as of now.
func (d *FormDraft) Expired(now time.Time) bool {
	return now.Sub(MillisToTime(d.Timestamp)) > DraftExpiry
}

package history

import (
	"encoding/json"
	"time"
)

// Record describes one finished run.
type Record struct {
	RunID        string    `json:"run_id"`
	Graph        string    `json:"graph"`
	State        string    `json:"state"`
	Reason       string    `json:"reason,omitempty"`
	Source       string    `json:"source,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	NodesInvoked int       `json:"nodes_invoked"`
	PeakDepth    int       `json:"peak_depth"`
}

// Duration returns the wall time of the run.
func (r Record) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Aborted reports whether the run was aborted.
func (r Record) Aborted() bool {
	return r.State == "aborted"
}

// Marshal serializes a record to JSON.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a record from JSON.
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

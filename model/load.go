package model

import "time"

// LoadState constants
const (
	LoadIdle       = "idle"
	LoadProcessing = "processing"
	LoadCompleted  = "completed"
	LoadFailed     = "failed"
	LoadSuperseded = "superseded"
)

// LoadStatus describes the most recent upload submitted to a workspace
type LoadStatus struct {
	LoadID     string    `json:"load_id,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	MIMEType   string    `json:"mime_type,omitempty"`
	State      string    `json:"state"`
	ContractID string    `json:"contract_id,omitempty"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Done reports whether the load reached a terminal state
func (s LoadStatus) Done() bool {
	switch s.State {
	case LoadCompleted, LoadFailed, LoadSuperseded:
		return true
	}
	return false
}

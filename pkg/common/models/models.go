package models

import "time"

// Record is the unit the anonymizer works on: an arbitrarily nested JSON
// object as decoded by encoding/json (maps, slices, scalars).
type Record = map[string]interface{}

// HTTP API models

type SanitizeRequest struct {
	Data Record `json:"data"`
}

type SanitizeResponse struct {
	Standard string `json:"standard"`
	Data     Record `json:"data"`
}

type AccessLogRequest struct {
	UserID   string `json:"user_id"`
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Granted  bool   `json:"granted"`
}

type AccessLogResponse struct {
	Recorded bool `json:"recorded"`
	Entries  int  `json:"entries"`
}

type EligibilityResponse struct {
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	Retain    bool      `json:"retain"`
}

// Event Bus models

type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"` // raw, sanitized
	Source    string            `json:"source"`
	Data      Record            `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

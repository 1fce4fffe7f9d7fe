package entity

import "time"

// DocumentHistory is one row of a document's audit trail.
type DocumentHistory struct {
	ID             int64          `json:"id"`
	DocumentID     int64          `json:"document_id"`
	Action         string         `json:"action"`
	PreviousStatus DocumentStatus `json:"previous_status"`
	NewStatus      DocumentStatus `json:"new_status"`
	Reason         string         `json:"reason,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

package domain

import "time"

// RunLog is the audit row appended after each monthly generation batch.
type RunLog struct {
	ID              int32     `json:"id"`
	ReferenceMonth  time.Time `json:"reference_month"`
	CreatedCount    int       `json:"created_count"`
	SkippedExisting int       `json:"skipped_existing"`
	ProcessedLeases int       `json:"processed_leases"`
	Success         bool      `json:"success"`
	Message         string    `json:"message"`
	ErrorDetail     string    `json:"error_detail,omitempty"`
	ExecutedBy      string    `json:"executed_by"`
	ExecutedAt      time.Time `json:"executed_at"`
}

package entity

import "time"

// DownloadLocation is a fetchable, time-limited location for one purchased item.
type DownloadLocation struct {
	ProductID string
	URL       string
	ExpiresAt time.Time
}

// DownloadOutcome labels the result of a download request for auditing and metrics.
type DownloadOutcome string

const (
	OutcomeGranted         DownloadOutcome = "granted"
	OutcomeDenied          DownloadOutcome = "denied"
	OutcomeUnavailable     DownloadOutcome = "unavailable"
	OutcomeUnauthenticated DownloadOutcome = "unauthenticated"
	OutcomeNotFound        DownloadOutcome = "not_found"
)

// DownloadAudit is one row of the download audit trail.
type DownloadAudit struct {
	ID        string
	UserID    string
	ProductID string
	Outcome   DownloadOutcome
	IP        string
	UserAgent string
	Detail    string
	CreatedAt time.Time
}

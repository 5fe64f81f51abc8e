package analytics

import "time"

type Visit struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
}

type Click struct {
	Timestamp time.Time `json:"timestamp"`
	LinkID    string    `json:"linkId"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
}

func (v Visit) At() time.Time { return v.Timestamp }
func (c Click) At() time.Time { return c.Timestamp }

// Record is the append-only event log of one tenant, stored under analytics:{tenantID}.
type Record struct {
	Visits []Visit `json:"visits"`
	Clicks []Click `json:"clicks"`
}

func NewRecord() *Record {
	return &Record{Visits: []Visit{}, Clicks: []Click{}}
}

// Visitor identifies who triggered an event.
type Visitor struct {
	IP        string
	UserAgent string
}

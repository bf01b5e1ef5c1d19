package store

import "time"

// Lead is the persisted shape of a captured email, shared by the JSON document
// and SQL backends.
type Lead struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Source       string    `json:"source"`
	Product      string    `json:"product"`
	Timestamp    time.Time `json:"timestamp"`
	Converted    bool      `json:"converted"`
	FollowUpSent bool      `json:"followUpSent"`
}

type LeadStats struct {
	Total        int
	Converted    int
	FollowUpSent int
}

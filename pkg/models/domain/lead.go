package domain

import "time"

type Lead struct {
	ID           string
	Email        string
	Source       string
	Product      string
	Timestamp    time.Time
	Converted    bool
	FollowUpSent bool
}

// Submission is one email-capture form post.
type Submission struct {
	Email   string
	Source  string
	Product string
	IP      string
}

type LeadStats struct {
	Total        int
	Converted    int
	FollowUpSent int
}

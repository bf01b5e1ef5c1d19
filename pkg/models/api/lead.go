package api

import "time"

type SubscribeRequest struct {
	Email   string `json:"email"`
	Source  string `json:"source,omitempty"`
	Product string `json:"product,omitempty"`
}

type SubscribeResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type LeadCounters struct {
	Total        int `json:"total"`
	Converted    int `json:"converted"`
	FollowUpSent int `json:"followUpSent"`
}

type LeadStatsResponse struct {
	Status string       `json:"status"`
	Leads  LeadCounters `json:"leads"`
}

type Lead struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Source       string    `json:"source"`
	Product      string    `json:"product"`
	Timestamp    time.Time `json:"timestamp"`
	Converted    bool      `json:"converted"`
	FollowUpSent bool      `json:"followUpSent"`
}

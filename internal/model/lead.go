package model

import "time"

// Lead is a captured contact submission, stored after the quiz result
type Lead struct {
	ID        string         `json:"id" bson:"_id,omitempty"`
	VisitorID string         `json:"visitorId" bson:"visitorId"`
	PlantName string         `json:"plantName" bson:"plantName"`
	Values    map[string]any `json:"values" bson:"values"` // keyed by lead field name
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

// LeadSubmission is the request body for submitting the lead form
type LeadSubmission struct {
	PlantName string         `json:"plantName"`
	Values    map[string]any `json:"values"`
}

package model

import "time"

// Result is a scored catalog match
type Result struct {
	Plant           Plant   `json:"plant"`
	RawScore        int     `json:"rawScore"`        // count of matched tags, multiplicity included
	NormalizedScore float64 `json:"normalizedScore"` // rawScore / max(1, len(plant.Tags))
	FinalScore      float64 `json:"finalScore"`      // normalizedScore plus tie-break noise
}

// CompletionTime summarizes how long a quiz attempt took, derived from
// the earliest and latest response timestamps.
type CompletionTime struct {
	TotalMs            int64 `json:"totalMs"`
	TotalSeconds       int   `json:"totalSeconds"`
	AveragePerQuestion int   `json:"averagePerQuestion"` // seconds
}

// FormResult is the bundle a finalized session produces
type FormResult struct {
	Responses      map[ID]*Response `json:"responses"`
	Tags           []string         `json:"tags"` // flattened, duplicates retained
	CompletedAt    time.Time        `json:"completedAt"`
	FormVersion    string           `json:"formVersion"`
	TotalQuestions int              `json:"totalQuestions"`
	CompletionTime *CompletionTime  `json:"completionTime,omitempty"` // nil when fewer than 2 timestamps
}

// SavedResult is the payload handed to the persistence collaborator on
// completion. It expires after a fixed window or once the CTA is clicked.
type SavedResult struct {
	Plant      Plant     `json:"plant"`
	Tags       []string  `json:"tags"`
	RawScore   int       `json:"rawScore"`
	Timestamp  time.Time `json:"timestamp"`
	CTAClicked bool      `json:"ctaClicked"`
}

// CompletionRecord is the flat analytics record derived from a
// finalize bundle.
type CompletionRecord struct {
	FormVersion       string         `json:"formVersion"`
	QuestionCount     int            `json:"questionCount"`
	CompletionSeconds int            `json:"completionSeconds"` // 0 when completion time is unknown
	TagCounts         map[string]int `json:"tagCounts"`
}

// AnalyticsRecord flattens a finalize bundle into the record the
// analytics collaborator consumes.
func (r *FormResult) AnalyticsRecord() *CompletionRecord {
	counts := make(map[string]int, len(r.Tags))
	for _, t := range r.Tags {
		counts[t]++
	}
	seconds := 0
	if r.CompletionTime != nil {
		seconds = r.CompletionTime.TotalSeconds
	}
	return &CompletionRecord{
		FormVersion:       r.FormVersion,
		QuestionCount:     r.TotalQuestions,
		CompletionSeconds: seconds,
		TagCounts:         counts,
	}
}

package model

// TagCount is one entry of the tag popularity ranking
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// AnalyticsSummary aggregates completion analytics for the host view
type AnalyticsSummary struct {
	Completions              int64      `json:"completions"`
	AverageCompletionSeconds float64    `json:"averageCompletionSeconds"`
	TopTags                  []TagCount `json:"topTags"`
}

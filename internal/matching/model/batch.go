package model

type Outcome string

const (
	OutcomeAutoMapped  Outcome = "auto_mapped"
	OutcomeNeedsReview Outcome = "needs_review"
	OutcomeFailed      Outcome = "failed"
)

type ItemMatches struct {
	BOQItem BOQItem       `json:"boqItem"`
	Results []MatchResult `json:"results"`
	Outcome Outcome       `json:"outcome"`
}

type ConfidenceBuckets struct {
	High   int `json:"high"`   // >= 0.8
	Medium int `json:"medium"` // >= 0.6
	Low    int `json:"low"`
}

type BatchStats struct {
	Total       int               `json:"total"`
	AutoMapped  int               `json:"autoMapped"`
	NeedsReview int               `json:"needsReview"`
	Failed      int               `json:"failed"`
	Confidence  ConfidenceBuckets `json:"confidence"`
}

type BatchResult struct {
	Matches    []ItemMatches      `json:"matches"`
	Exceptions []MappingException `json:"exceptions"`
	Stats      BatchStats         `json:"stats"`
}

// ProgressFunc получает долю выполненного (0..1) и счётчики.
type ProgressFunc func(progress float64, processed, total int)

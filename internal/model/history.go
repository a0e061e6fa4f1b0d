package model

import "time"

// HistoryEntry is one past search.
type HistoryEntry struct {
	Criteria    SearchCriteria `json:"criteria"`
	Timestamp   time.Time      `json:"timestamp"`
	ResultCount int            `json:"resultCount"`
}

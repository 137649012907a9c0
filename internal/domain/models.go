package domain

import "time"

// WorkItem is one unit of capture work: a script chunk with an ordered
// list of candidate source URLs. Immutable once submitted to a batch.
type WorkItem struct {
	ChunkIndex int
	Claim      string
	URLs       []string
}

// OutcomeKind classifies how a single navigation attempt ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBlocked
	OutcomeTimedOut
	OutcomeNavigationError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeNavigationError:
		return "navigation_error"
	}
	return "unknown"
}

// Attempt records one navigation try against one candidate URL.
type Attempt struct {
	URL       string
	StartedAt time.Time
	Outcome   OutcomeKind
	// Reason carries the block reason for OutcomeBlocked and the error
	// detail for OutcomeNavigationError; empty otherwise.
	Reason string
	// Filename is set only for OutcomeSuccess.
	Filename string
}

// ValidationVerdict is the page validator's decision for a loaded page.
type ValidationVerdict struct {
	Valid       bool
	BlockReason string
}

// CaptureResult is the terminal record for a WorkItem. One is produced
// per item; the ordered collection of all results forms the manifest.
type CaptureResult struct {
	Success    bool   `json:"success"`
	ChunkIndex int    `json:"chunk_index"`
	URL        string `json:"url,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Filepath   string `json:"filepath,omitempty"`
	Error      string `json:"error,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
}

// BatchSummary is the aggregate tally reported at the end of a run and
// served on the progress endpoint while the run is in flight.
type BatchSummary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

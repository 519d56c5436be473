package domain

import "time"

// Import run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// ImportRun records one bulk import of a dataset file into the track index.
type ImportRun struct {
	ID         string
	Source     string
	Index      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Read       int
	Indexed    int
	Skipped    int // records rejected before indexing, e.g. missing features
	Failed     int // records the engine refused
	Status     string
	Error      string
}

// FeatureProfile summarizes the observed distribution of one raw feature
// next to its configured normalization range.
type FeatureProfile struct {
	Feature    string
	Count      int
	Min        float64
	Max        float64
	Mean       float64
	StdDev     float64
	Configured FeatureRange
}

// OutOfRange reports whether observed values fall outside the configured range.
func (p FeatureProfile) OutOfRange() bool {
	return p.Count > 0 && (p.Min < p.Configured.Min || p.Max > p.Configured.Max)
}

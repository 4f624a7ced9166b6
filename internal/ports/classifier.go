package ports

import (
	"context"
	"errors"
)

// ErrClassifierUnavailable reports that the triage oracle has no credential
// or connection. Callers surface the feature as disabled; this is never an
// import-blocking condition.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

type ClassifyInput struct {
	CommentText string
	Sheet       string
	Discipline  string
	Milestone   string
}

// TriageResult is the structured verdict for one comment.
type TriageResult struct {
	Track            bool   `json:"track"`
	Tag              string `json:"tag"`
	Risk             string `json:"risk"`
	RequiredResponse string `json:"required_response"`
}

// Classifier is the external text-classification oracle. Implementations
// must be safe to construct without a credential; Classify then returns
// ErrClassifierUnavailable.
type Classifier interface {
	Available() bool
	Classify(ctx context.Context, input ClassifyInput) (TriageResult, error)
}

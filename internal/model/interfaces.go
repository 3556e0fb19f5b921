package model

import "context"

// CompletionRequest is one request/response exchange with a vision model.
type CompletionRequest struct {
	System      string
	Text        string
	Images      []Photo
	JSON        bool // ask for a single JSON object reply
	Temperature float64
	MaxTokens   int
}

// VisionModel is the external vision-language model. Implementations make
// exactly one outbound call per Complete and never retry.
type VisionModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ContractorMatcher finds contractors serving a ZIP code.
type ContractorMatcher interface {
	Match(ctx context.Context, zip string) ([]Contractor, error)
}

// OutcomeStore records repair outcomes and reports community metrics.
type OutcomeStore interface {
	Record(ctx context.Context, rec OutcomeRecord) error
	MetricsFor(ctx context.Context, issueType string) (SuccessMetrics, error)
	Close() error
}

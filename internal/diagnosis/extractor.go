// Package diagnosis asks the vision model about a repair issue and reads a
// safety-gated Diagnosis out of its free-text answer.
package diagnosis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"homefix/internal/logging"
	"homefix/internal/model"
	"homefix/internal/sanitize"
)

// Result is the outcome of one Analyze call.
type Result struct {
	Diagnosis   model.Diagnosis
	Gate        model.SafetyGateResult
	RawAnalysis string
}

type Extractor struct {
	vision model.VisionModel
	logger *slog.Logger
	newID  func() string
}

func NewExtractor(vision model.VisionModel, logger *slog.Logger) *Extractor {
	return &Extractor{vision: vision, logger: logging.OrDefault(logger), newID: uuid.NewString}
}

// Analyze sends the description and photos to the model in a single request.
// Any model failure fails the call; there is no fallback diagnosis.
func (e *Extractor) Analyze(ctx context.Context, description string, photos []model.Photo) (Result, error) {
	clean := sanitize.Text(description)
	if clean == "" {
		return Result{}, fmt.Errorf("%w: description is empty after sanitization", model.ErrValidation)
	}
	if len(photos) == 0 {
		return Result{}, fmt.Errorf("%w: at least one photo is required", model.ErrValidation)
	}
	if e.vision == nil {
		return Result{}, fmt.Errorf("%w: no vision model configured", model.ErrUpstreamCall)
	}

	e.logger.Info("analysis started", "photo_count", len(photos), "description_chars", len(clean))

	reply, err := e.vision.Complete(ctx, model.CompletionRequest{
		System:      systemPrompt,
		Text:        userPrompt(clean, photos),
		Images:      photos,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		e.logger.Error("analysis failed", "error", err)
		return Result{}, fmt.Errorf("vision analysis: %w", model.WrapUpstream(err))
	}

	gate := Gate(clean, reply)
	d := Parse(reply, gate)
	d.ID = e.newID()

	e.logger.Info("analysis complete",
		logging.KeyDiagnosisID, d.ID,
		"issue_type", d.IssueType,
		"risk_level", d.RiskLevel,
		"recommendation", d.Recommendation,
		"safety_gate", gate.Triggered,
	)
	return Result{Diagnosis: d, Gate: gate, RawAnalysis: reply}, nil
}

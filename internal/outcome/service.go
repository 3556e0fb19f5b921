package outcome

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"homefix/internal/logging"
	"homefix/internal/model"
)

const (
	MinDiagnosisIDLen = 5
	MaxTipsRunes      = 1000
)

// Submission is one user-reported repair outcome.
type Submission struct {
	DiagnosisID       string
	IssueType         string
	Outcome           string
	ActualTimeMinutes *float64
	ActualCost        *float64
	DifficultyRating  *int
	AfterPhotoCount   int
	Tips              string
	WouldRecommendDIY *bool
}

type Response struct {
	Success          bool                 `json:"success"`
	OutcomeID        string               `json:"outcome_id"`
	ThankYouMessage  string               `json:"thank_you_message"`
	CommunityInsight string               `json:"community_insight"`
	SuccessMetrics   model.SuccessMetrics `json:"success_metrics"`
	NextSteps        []string             `json:"next_steps"`
	TipShared        bool                 `json:"tip_shared,omitempty"`
	TipImpact        string               `json:"tip_impact,omitempty"`
}

type Service struct {
	store  model.OutcomeStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(store model.OutcomeStore, logger *slog.Logger) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{
		store:  store,
		logger: logging.OrDefault(logger),
		now:    time.Now,
		newID:  func() string { return "outcome_" + uuid.NewString() },
	}
}

func (s *Service) Submit(ctx context.Context, sub Submission) (Response, error) {
	rec, err := s.validate(sub)
	if err != nil {
		return Response{}, err
	}

	if err := s.store.Record(ctx, rec); err != nil {
		return Response{}, fmt.Errorf("record outcome: %w", err)
	}
	metrics, err := s.store.MetricsFor(ctx, rec.IssueType)
	if err != nil {
		return Response{}, fmt.Errorf("load success metrics: %w", err)
	}
	if metrics.CommonTips == nil {
		metrics.CommonTips = []string{}
	}

	s.logger.Info("outcome submitted",
		logging.KeyDiagnosisID, rec.DiagnosisID,
		"outcome", string(rec.Outcome),
		"after_photos", rec.AfterPhotoCount,
	)

	msg := messages[rec.Outcome]
	resp := Response{
		Success:          true,
		OutcomeID:        rec.ID,
		ThankYouMessage:  msg.thankYou,
		CommunityInsight: msg.insight(metrics),
		SuccessMetrics:   metrics,
		NextSteps:        append([]string(nil), nextSteps[rec.Outcome]...),
	}
	if rec.Tips != "" {
		resp.TipShared = true
		resp.TipImpact = tipImpact
	}
	return resp, nil
}

func (s *Service) validate(sub Submission) (model.OutcomeRecord, error) {
	diagnosisID := strings.TrimSpace(sub.DiagnosisID)
	if len(diagnosisID) < MinDiagnosisIDLen {
		return model.OutcomeRecord{}, fmt.Errorf("%w: diagnosis_id must be at least %d characters", model.ErrValidation, MinDiagnosisIDLen)
	}
	outcome, ok := model.ParseOutcome(sub.Outcome)
	if !ok {
		return model.OutcomeRecord{}, fmt.Errorf("%w: outcome must be one of: %s", model.ErrValidation, strings.Join(model.Outcomes, ", "))
	}
	if sub.DifficultyRating != nil && (*sub.DifficultyRating < 1 || *sub.DifficultyRating > 5) {
		return model.OutcomeRecord{}, fmt.Errorf("%w: difficulty_rating must be between 1 and 5", model.ErrValidation)
	}
	if sub.ActualTimeMinutes != nil && *sub.ActualTimeMinutes < 0 {
		return model.OutcomeRecord{}, fmt.Errorf("%w: actual_time_minutes must be >= 0", model.ErrValidation)
	}
	if sub.ActualCost != nil && *sub.ActualCost < 0 {
		return model.OutcomeRecord{}, fmt.Errorf("%w: actual_cost must be >= 0", model.ErrValidation)
	}
	tips := strings.TrimSpace(sub.Tips)
	if utf8.RuneCountInString(tips) > MaxTipsRunes {
		return model.OutcomeRecord{}, fmt.Errorf("%w: tips must be at most %d characters", model.ErrValidation, MaxTipsRunes)
	}
	if sub.AfterPhotoCount < 0 {
		return model.OutcomeRecord{}, fmt.Errorf("%w: after photo count must be >= 0", model.ErrValidation)
	}

	return model.OutcomeRecord{
		ID:                s.newID(),
		DiagnosisID:       diagnosisID,
		IssueType:         strings.TrimSpace(sub.IssueType),
		Outcome:           outcome,
		ActualTimeMinutes: sub.ActualTimeMinutes,
		ActualCost:        sub.ActualCost,
		DifficultyRating:  sub.DifficultyRating,
		AfterPhotoCount:   sub.AfterPhotoCount,
		Tips:              tips,
		WouldRecommendDIY: sub.WouldRecommendDIY,
		SubmittedAt:       s.now().UTC(),
	}, nil
}

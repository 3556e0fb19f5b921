package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"homefix/internal/logging"
	"homefix/internal/model"
)

const (
	MinScopeRunes = 20
	MaxScopeRunes = 1000

	StatusPending = "pending"
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}$`)

var nextSteps = []string{
	"Contractors will review your request within 24 hours",
	"You'll receive 3-5 quotes via email",
	"Compare quotes, reviews, and availability",
	"Schedule consultations with top candidates",
}

const privacyNote = "Your contact info is shared only with contractors you approve."

type Request struct {
	ZIP       string
	Scope     string
	Confirmed bool
}

type QuoteRequest struct {
	ZIPCode     string `json:"zip_code"`
	WorkScope   string `json:"work_scope"`
	RequestedAt string `json:"requested_at"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// Result is either a confirmation_needed soft rejection or a prepared quote
// request with matched contractors.
type Result struct {
	Success            bool               `json:"success"`
	Error              string             `json:"error,omitempty"`
	Message            string             `json:"message,omitempty"`
	ConfirmationNeeded bool               `json:"confirmation_needed,omitempty"`
	Code               string             `json:"code,omitempty"`
	QuoteRequest       *QuoteRequest      `json:"quote_request,omitempty"`
	Contractors        []model.Contractor `json:"contractors,omitempty"`
	NextSteps          []string           `json:"next_steps,omitempty"`
	PrivacyNote        string             `json:"privacy_note,omitempty"`
}

// Err classifies a soft rejection. It is nil for a prepared request.
func (r Result) Err() error {
	if r.ConfirmationNeeded {
		return fmt.Errorf("%w: %s", model.ErrConfirmationRequired, r.Message)
	}
	return nil
}

type Service struct {
	matcher model.ContractorMatcher
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(matcher model.ContractorMatcher, logger *slog.Logger) *Service {
	if matcher == nil {
		matcher = MockMatcher{}
	}
	return &Service{matcher: matcher, logger: logging.OrDefault(logger), now: time.Now}
}

// Request validates the input and, only when the user confirmed, asks the
// matcher for contractors. An unconfirmed request is not an error.
func (s *Service) Request(ctx context.Context, req Request) (Result, error) {
	zip := strings.TrimSpace(req.ZIP)
	if !zipPattern.MatchString(zip) {
		return Result{}, fmt.Errorf("%w: zip must be a 5-digit ZIP code", model.ErrValidation)
	}
	scope := strings.TrimSpace(req.Scope)
	if n := utf8.RuneCountInString(scope); n < MinScopeRunes || n > MaxScopeRunes {
		return Result{}, fmt.Errorf("%w: scope must be %d..%d characters", model.ErrValidation, MinScopeRunes, MaxScopeRunes)
	}

	s.logger.Info("quote request received", logging.KeyZIP, zip, "confirmed", req.Confirmed)

	if !req.Confirmed {
		return Result{
			Success:            false,
			Error:              "User confirmation required",
			Message:            "You must confirm before we contact contractors on your behalf.",
			ConfirmationNeeded: true,
		}, nil
	}

	contractors, err := s.matcher.Match(ctx, zip)
	if err != nil {
		return Result{}, fmt.Errorf("match contractors: %w", err)
	}
	if contractors == nil {
		contractors = []model.Contractor{}
	}

	s.logger.Info("quote request processed", logging.KeyZIP, zip, "contractor_count", len(contractors))

	return Result{
		Success: true,
		QuoteRequest: &QuoteRequest{
			ZIPCode:     zip,
			WorkScope:   scope,
			RequestedAt: s.now().UTC().Format(time.RFC3339),
			Status:      StatusPending,
			Message:     "Quote request prepared. Matched contractors will be contacted once you approve.",
		},
		Contractors: contractors,
		NextSteps:   append([]string(nil), nextSteps...),
		PrivacyNote: privacyNote,
	}, nil
}

package model

import "strings"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var RiskLevels = []string{string(RiskLow), string(RiskMedium), string(RiskHigh), string(RiskCritical)}

// ParseRiskLevel accepts any casing of a known level.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	case RiskCritical:
		return RiskCritical, true
	}
	return "", false
}

// RequiresProfessional reports whether the level is high or critical.
func (r RiskLevel) RequiresProfessional() bool {
	return r == RiskHigh || r == RiskCritical
}

type Recommendation string

const (
	RecommendDIY  Recommendation = "diy"
	RecommendHire Recommendation = "hire"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
	DifficultyProfessional Difficulty = "Professional Required"
)

// ParseDifficulty matches case-insensitively and falls back to Intermediate.
func ParseDifficulty(s string) Difficulty {
	s = strings.TrimSpace(s)
	for _, d := range []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyProfessional} {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	return DifficultyIntermediate
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
	OutcomeHiredPro Outcome = "hired_pro"
)

var Outcomes = []string{string(OutcomeSuccess), string(OutcomePartial), string(OutcomeFailed), string(OutcomeHiredPro)}

func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range Outcomes {
		if s == o {
			return Outcome(o), true
		}
	}
	return "", false
}

// Supported photo encodings.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWebP = "image/webp"
)

var SupportedImageMIMETypes = []string{MIMEJPEG, MIMEPNG, MIMEWebP}

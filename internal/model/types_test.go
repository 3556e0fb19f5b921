package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskLevel(t *testing.T) {
	got, ok := ParseRiskLevel("  HIGH ")
	require.True(t, ok)
	assert.Equal(t, RiskHigh, got)

	_, ok = ParseRiskLevel("extreme")
	assert.False(t, ok)
}

func TestRiskLevelRequiresProfessional(t *testing.T) {
	assert.False(t, RiskLow.RequiresProfessional())
	assert.False(t, RiskMedium.RequiresProfessional())
	assert.True(t, RiskHigh.RequiresProfessional())
	assert.True(t, RiskCritical.RequiresProfessional())
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyBeginner, ParseDifficulty("beginner"))
	assert.Equal(t, DifficultyProfessional, ParseDifficulty("professional required"))
	assert.Equal(t, DifficultyIntermediate, ParseDifficulty("moderate"))
	assert.Equal(t, DifficultyIntermediate, ParseDifficulty(""))
}

func TestProviderErrorMatchesUpstreamCall(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("analyze: %w", &ProviderError{Code: "MISTRAL_FAILED", Message: "boom", Retryable: true, Cause: cause})

	assert.ErrorIs(t, err, ErrUpstreamCall)
	assert.ErrorIs(t, err, cause)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.Retryable)
	assert.Equal(t, "MISTRAL_FAILED: boom", pe.Error())
}

func TestNewProgressIsEmpty(t *testing.T) {
	p := NewProgress()
	assert.Nil(t, p.StartedAt)
	assert.Nil(t, p.PausedAt)
	assert.Empty(t, p.CompletedSteps)
	assert.NotNil(t, p.CompletedSteps)
	assert.Zero(t, p.ActualCosts.Parts)
}

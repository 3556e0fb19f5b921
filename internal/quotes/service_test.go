package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefix/internal/model"
)

type countingMatcher struct {
	calls int
	err   error
}

func (m *countingMatcher) Match(ctx context.Context, zip string) ([]model.Contractor, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return MockMatcher{}.Match(ctx, zip)
}

const scope = "Replace leaking kitchen faucet cartridge"

func TestRequest_UnconfirmedIsSoftRejection(t *testing.T) {
	m := &countingMatcher{}
	svc := NewService(m, nil)

	res, err := svc.Request(context.Background(), Request{ZIP: "94110", Scope: scope, Confirmed: false})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.ConfirmationNeeded)
	assert.Equal(t, "User confirmation required", res.Error)
	assert.ErrorIs(t, res.Err(), model.ErrConfirmationRequired)
	assert.Nil(t, res.Contractors)
	assert.Nil(t, res.QuoteRequest)
	assert.Equal(t, 0, m.calls)
}

func TestRequest_Confirmed(t *testing.T) {
	m := &countingMatcher{}
	svc := NewService(m, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	res, err := svc.Request(context.Background(), Request{ZIP: " 94110 ", Scope: scope, Confirmed: true})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.ConfirmationNeeded)
	assert.NoError(t, res.Err())
	require.NotNil(t, res.QuoteRequest)
	assert.Equal(t, "94110", res.QuoteRequest.ZIPCode)
	assert.Equal(t, scope, res.QuoteRequest.WorkScope)
	assert.Equal(t, "2026-03-01T12:00:00Z", res.QuoteRequest.RequestedAt)
	assert.Equal(t, StatusPending, res.QuoteRequest.Status)
	assert.Len(t, res.Contractors, 3)
	assert.Len(t, res.NextSteps, 4)
	assert.NotEmpty(t, res.PrivacyNote)
	assert.Equal(t, 1, m.calls)
}

func TestRequest_Validation(t *testing.T) {
	svc := NewService(nil, nil)
	cases := []Request{
		{ZIP: "9411", Scope: scope, Confirmed: true},
		{ZIP: "94110-1234", Scope: scope, Confirmed: true},
		{ZIP: "abcde", Scope: scope, Confirmed: true},
		{ZIP: "94110", Scope: "too short", Confirmed: true},
	}
	for _, req := range cases {
		_, err := svc.Request(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrValidation, "%+v", req)
	}
}

func TestRequest_MatcherFailure(t *testing.T) {
	boom := errors.New("directory offline")
	svc := NewService(&countingMatcher{err: boom}, nil)
	_, err := svc.Request(context.Background(), Request{ZIP: "94110", Scope: scope, Confirmed: true})
	assert.ErrorIs(t, err, boom)
}

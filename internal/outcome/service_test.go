package outcome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefix/internal/model"
)

func ptr[T any](v T) *T { return &v }

func newTestService(store model.OutcomeStore) *Service {
	svc := NewService(store, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "outcome_test" }
	return svc
}

func TestSubmit_SuccessWithTip(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store)

	resp, err := svc.Submit(context.Background(), Submission{
		DiagnosisID:       "3f2a9c1b-aaaa",
		IssueType:         "Leaky faucet",
		Outcome:           "success",
		ActualTimeMinutes: ptr(40.0),
		ActualCost:        ptr(12.5),
		DifficultyRating:  ptr(2),
		AfterPhotoCount:   2,
		Tips:              "  Shut the valve under the sink first  ",
		WouldRecommendDIY: ptr(true),
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "outcome_test", resp.OutcomeID)
	assert.Contains(t, resp.CommunityInsight, "89%")
	assert.True(t, resp.TipShared)
	assert.Equal(t, tipImpact, resp.TipImpact)
	assert.Len(t, resp.NextSteps, 4)
	assert.Equal(t, BaselineMetrics(), resp.SuccessMetrics)

	recs := store.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "Shut the valve under the sink first", recs[0].Tips)
	assert.Equal(t, model.OutcomeSuccess, recs[0].Outcome)
	assert.Equal(t, 2, recs[0].AfterPhotoCount)
	assert.Equal(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC), recs[0].SubmittedAt)
}

func TestSubmit_HiredProInsightUsesDIYRate(t *testing.T) {
	resp, err := newTestService(nil).Submit(context.Background(), Submission{DiagnosisID: "abcdef", Outcome: "hired_pro"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.CommunityInsight, "12% of users"), resp.CommunityInsight)
	assert.False(t, resp.TipShared)
	assert.Empty(t, resp.TipImpact)
}

func TestSubmit_EveryOutcomeHasMessages(t *testing.T) {
	for _, o := range model.Outcomes {
		resp, err := newTestService(nil).Submit(context.Background(), Submission{DiagnosisID: "abcdef", Outcome: o})
		require.NoError(t, err, o)
		assert.NotEmpty(t, resp.ThankYouMessage, o)
		assert.NotEmpty(t, resp.CommunityInsight, o)
		assert.Len(t, resp.NextSteps, 4, o)
	}
}

func TestSubmit_Validation(t *testing.T) {
	cases := map[string]Submission{
		"short id":        {DiagnosisID: "abc", Outcome: "success"},
		"bad outcome":     {DiagnosisID: "abcdef", Outcome: "gave_up"},
		"rating too low":  {DiagnosisID: "abcdef", Outcome: "success", DifficultyRating: ptr(0)},
		"rating too high": {DiagnosisID: "abcdef", Outcome: "success", DifficultyRating: ptr(6)},
		"negative cost":   {DiagnosisID: "abcdef", Outcome: "success", ActualCost: ptr(-1.0)},
		"negative time":   {DiagnosisID: "abcdef", Outcome: "success", ActualTimeMinutes: ptr(-5.0)},
		"long tips":       {DiagnosisID: "abcdef", Outcome: "success", Tips: strings.Repeat("x", MaxTipsRunes+1)},
	}
	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStore()
			_, err := newTestService(store).Submit(context.Background(), sub)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.Empty(t, store.Records())
		})
	}
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Record(context.Context, model.OutcomeRecord) error {
	return errors.New("disk full")
}

func TestSubmit_StoreFailure(t *testing.T) {
	_, err := newTestService(&failingStore{}).Submit(context.Background(), Submission{DiagnosisID: "abcdef", Outcome: "failed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record outcome")
}

func TestNewService_GeneratesPrefixedIDs(t *testing.T) {
	svc := NewService(nil, nil)
	resp, err := svc.Submit(context.Background(), Submission{DiagnosisID: "abcdef", Outcome: "partial"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.OutcomeID, "outcome_"))
}

func TestMemoryStore_RetainsOnlyMostRecent(t *testing.T) {
	store := NewMemoryStoreWithCapacity(3)
	svc := NewService(store, nil)
	tip := strings.Repeat("t", MaxTipsRunes)

	for i := 0; i < 1000; i++ {
		_, err := svc.Submit(context.Background(), Submission{
			DiagnosisID: fmt.Sprintf("diag-%04d", i),
			Outcome:     "success",
			Tips:        tip,
		})
		require.NoError(t, err)
	}

	recs := store.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "diag-0997", recs[0].DiagnosisID)
	assert.Equal(t, "diag-0998", recs[1].DiagnosisID)
	assert.Equal(t, "diag-0999", recs[2].DiagnosisID)

	metrics, err := store.MetricsFor(context.Background(), "leaky faucet")
	require.NoError(t, err)
	assert.Equal(t, BaselineMetrics(), metrics)
}

func TestMemoryStore_DefaultCapacity(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < DefaultMemoryCapacity+10; i++ {
		require.NoError(t, store.Record(context.Background(), model.OutcomeRecord{ID: fmt.Sprintf("o-%d", i)}))
	}
	recs := store.Records()
	require.Len(t, recs, DefaultMemoryCapacity)
	assert.Equal(t, "o-10", recs[0].ID)
}

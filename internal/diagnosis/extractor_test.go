package diagnosis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefix/internal/model"
	"homefix/internal/vision/visiontest"
)

var testPhoto = model.Photo{Bytes: []byte{0xff, 0xd8}, MIMEType: model.MIMEJPEG}

func TestParse_RiskRulePriority(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  model.RiskLevel
	}{
		{name: "critical beats high", reply: "High risk and potentially dangerous", want: model.RiskCritical},
		{name: "critical keyword", reply: "This is CRITICAL", want: model.RiskCritical},
		{name: "high", reply: "Professional required for this one", want: model.RiskHigh},
		{name: "high beats medium", reply: "Use caution. High risk.", want: model.RiskHigh},
		{name: "medium", reply: "Proceed with caution", want: model.RiskMedium},
		{name: "medium risk phrase", reply: "Overall medium risk", want: model.RiskMedium},
		{name: "low", reply: "Worn washer in faucet", want: model.RiskLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Parse(tc.reply, model.SafetyGateResult{})
			assert.Equal(t, tc.want, d.RiskLevel)
		})
	}
}

func TestParse_GateForcesCriticalHire(t *testing.T) {
	gate := Gate("gas smell near the water heater", "Loose connection on the burner. Low risk.")
	require.True(t, gate.Triggered)

	d := Parse("Loose connection on the burner. Low risk.", gate)
	assert.Equal(t, model.RiskCritical, d.RiskLevel)
	assert.Equal(t, model.RecommendHire, d.Recommendation)
	assert.True(t, d.DIYDisabled)
	assert.Equal(t, "Detected high-risk category: gas", d.SafetyGateReason)
	assert.Equal(t, gate.Reason, d.SafetyConcerns[0])
}

func TestParse_HighRiskHiresButKeepsDIYEnabled(t *testing.T) {
	d := Parse("Cracked drain trap\nHigh risk of water damage", model.SafetyGateResult{})
	assert.Equal(t, model.RiskHigh, d.RiskLevel)
	assert.Equal(t, model.RecommendHire, d.Recommendation)
	assert.False(t, d.DIYDisabled)
}

func TestParse_IssueTypeAndSummary(t *testing.T) {
	reply := "\n\n   " + strings.Repeat("x", 150) + "\nsecond line"
	d := Parse(reply, model.SafetyGateResult{})
	assert.Len(t, d.IssueType, 100)

	d = Parse("", model.SafetyGateResult{})
	assert.Equal(t, "Unknown issue", d.IssueType)
	assert.Empty(t, d.Summary)

	long := strings.Repeat("a", 500)
	d = Parse(long, model.SafetyGateResult{})
	assert.Len(t, d.Summary, 300)
}

func TestParse_Confidence(t *testing.T) {
	assert.Equal(t, 85, Parse("Confidence: 85% sure, 10% doubt", model.SafetyGateResult{}).Confidence)
	assert.Equal(t, 75, Parse("no score here", model.SafetyGateResult{}).Confidence)
	assert.Equal(t, 100, Parse("999% certain", model.SafetyGateResult{}).Confidence)
	assert.Equal(t, 100, Parse("1000% sure", model.SafetyGateResult{}).Confidence)
	assert.Equal(t, 100, Parse("1234% sure", model.SafetyGateResult{}).Confidence)
	assert.Equal(t, 100, Parse("99999999999999999999999% sure", model.SafetyGateResult{}).Confidence)
	assert.Equal(t, 0, Parse("0% chance", model.SafetyGateResult{}).Confidence)
}

func TestParse_SafetyConcernsCapped(t *testing.T) {
	reply := strings.Join([]string{
		"Leaking P-trap",
		"Safety: turn off water",
		"Danger of slipping",
		"Low risk overall",
		"Warning: sharp edges",
		"Wear gloves",
	}, "\n")
	d := Parse(reply, model.SafetyGateResult{})
	assert.Equal(t, []string{"Safety: turn off water", "Danger of slipping", "Low risk overall"}, d.SafetyConcerns)

	gate := model.SafetyGateResult{Triggered: true, Reason: "Detected high-risk category: mold", ForceHire: true}
	d = Parse(reply, gate)
	assert.Len(t, d.SafetyConcerns, 4)
	assert.Equal(t, gate.Reason, d.SafetyConcerns[0])
}

func TestExtractor_Analyze(t *testing.T) {
	fake := visiontest.New("Dripping faucet cartridge\nConfidence 90%\nLow risk repair.")
	ex := NewExtractor(fake, nil)
	ex.newID = func() string { return "diag-1" }

	photo := testPhoto
	photo.Annotations = []model.Annotation{{X: 10.6, Y: 20.2, Label: "drip"}, {X: 1, Y: 2}}

	res, err := ex.Analyze(context.Background(), "<b>Kitchen faucet</b> drips all night", []model.Photo{photo})
	require.NoError(t, err)

	assert.Equal(t, "diag-1", res.Diagnosis.ID)
	assert.Equal(t, "Dripping faucet cartridge", res.Diagnosis.IssueType)
	assert.Equal(t, model.RiskLow, res.Diagnosis.RiskLevel)
	assert.Equal(t, model.RecommendDIY, res.Diagnosis.Recommendation)
	assert.Equal(t, 90, res.Diagnosis.Confidence)
	assert.False(t, res.Gate.Triggered)
	assert.NotEmpty(t, res.RawAnalysis)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].Images, 1)
	assert.Contains(t, reqs[0].Text, "Description: Kitchen faucet drips all night")
	assert.Contains(t, reqs[0].Text, "Photo 1: drip at position (11, 20)")
	assert.Contains(t, reqs[0].Text, "Photo 1: Marked area at position (1, 2)")
	assert.Contains(t, reqs[0].System, "CRITICAL SAFETY RULES")
	assert.False(t, reqs[0].JSON)
}

func TestExtractor_GasScenario(t *testing.T) {
	fake := visiontest.New("Water heater pilot issue\nLow risk.")
	ex := NewExtractor(fake, nil)

	res, err := ex.Analyze(context.Background(), "gas smell near the water heater", []model.Photo{testPhoto})
	require.NoError(t, err)
	assert.Equal(t, model.RiskCritical, res.Diagnosis.RiskLevel)
	assert.Equal(t, model.RecommendHire, res.Diagnosis.Recommendation)
	assert.True(t, res.Diagnosis.DIYDisabled)
}

func TestExtractor_UpstreamFailure(t *testing.T) {
	ex := NewExtractor(visiontest.Failing(errors.New("dial tcp: refused")), nil)
	_, err := ex.Analyze(context.Background(), "leaky pipe under sink", []model.Photo{testPhoto})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUpstreamCall)
}

func TestExtractor_RejectsEmptyDescription(t *testing.T) {
	fake := visiontest.New("unused")
	ex := NewExtractor(fake, nil)
	_, err := ex.Analyze(context.Background(), "<p></p>", []model.Photo{testPhoto})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, fake.Calls())
}

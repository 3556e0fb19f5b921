package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefix/internal/model"
	"homefix/internal/vision/visiontest"
)

func stepsJSON(numbers ...int) string {
	steps := make([]map[string]interface{}, 0, len(numbers))
	for _, n := range numbers {
		steps = append(steps, map[string]interface{}{
			"step_number":      n,
			"title":            fmt.Sprintf("Step title %d", n),
			"description":      "Do the thing.",
			"duration_minutes": 10,
			"safety_note":      "Turn off the water supply.",
			"tools_needed":     []string{"wrench"},
			"parts_needed":     []string{},
		})
	}
	raw, _ := json.Marshal(map[string]interface{}{
		"steps":              steps,
		"total_time_minutes": 60,
		"difficulty":         "beginner",
	})
	return string(raw)
}

func TestGenerate_ProfessionalBranchNeverCallsModel(t *testing.T) {
	for _, risk := range []model.RiskLevel{model.RiskHigh, model.RiskCritical} {
		for _, issue := range []string{"leaking faucet", "gas furnace", "x y z"} {
			fake := visiontest.New(stepsJSON(1, 2, 3, 4, 5))
			p, err := NewGenerator(fake, nil).Generate(context.Background(), issue, risk)
			require.NoError(t, err)

			assert.Zero(t, fake.Calls())
			require.Len(t, p.Steps, 2)
			assert.Equal(t, "Do Not Attempt DIY Repair", p.Steps[0].Title)
			assert.Equal(t, "Contact Licensed Professionals", p.Steps[1].Title)
			assert.Equal(t, model.DifficultyProfessional, p.Difficulty)
			assert.Equal(t, 30.0, p.TotalTimeMinutes)
			assert.Equal(t, fmt.Sprintf("This repair is classified as %s risk and requires professional expertise.", risk), p.SafetyWarning)
		}
	}
}

func TestGenerate_LowRiskFiveSteps(t *testing.T) {
	fake := visiontest.New(stepsJSON(1, 2, 3, 4, 5))
	p, err := NewGenerator(fake, nil).Generate(context.Background(), "leaking faucet", model.RiskLow)
	require.NoError(t, err)

	require.Len(t, p.Steps, 5)
	assert.Equal(t, 1, p.Steps[0].StepNumber)
	assert.Equal(t, 5, p.Steps[4].StepNumber)
	assert.Equal(t, model.DifficultyBeginner, p.Difficulty)
	assert.Equal(t, 60.0, p.TotalTimeMinutes)
	assert.Equal(t, []string{"wrench"}, p.Steps[0].ToolsNeeded)
	assert.Empty(t, p.SafetyWarning)
	assert.Equal(t, model.RiskLow, p.RiskLevel)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].JSON)
	assert.Equal(t, "Create a repair plan for: leaking faucet\nRisk level: low", reqs[0].Text)
}

func TestGenerate_RejectsNonContiguousNumbering(t *testing.T) {
	for _, numbers := range [][]int{{2, 1, 3, 4, 5}, {1, 2, 4, 5, 6}, {0, 1, 2}} {
		fake := visiontest.New(stepsJSON(numbers...))
		_, err := NewGenerator(fake, nil).Generate(context.Background(), "leaking faucet", model.RiskMedium)
		assert.ErrorIs(t, err, model.ErrUpstreamParse, "%v", numbers)
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	for _, reply := range []string{"step one: buy a wrench", `{"steps": "none"}`, `{"steps": []}`} {
		_, err := NewGenerator(visiontest.New(reply), nil).Generate(context.Background(), "leaking faucet", model.RiskLow)
		assert.ErrorIs(t, err, model.ErrUpstreamParse, reply)
	}
}

func TestGenerate_RejectsUnknownRisk(t *testing.T) {
	fake := visiontest.New(stepsJSON(1))
	_, err := NewGenerator(fake, nil).Generate(context.Background(), "leaking faucet", model.RiskLevel("extreme"))
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, fake.Calls())
}

func TestNormalize_TotalFallsBackToStepSum(t *testing.T) {
	p, err := Normalize(map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"step_number": 1.0, "duration_minutes": 15.0},
			map[string]interface{}{"step_number": 2.0, "duration_minutes": "20"},
			map[string]interface{}{"step_number": 3.0, "duration_minutes": -5.0},
		},
		"difficulty": "expert",
	})
	require.NoError(t, err)
	assert.Equal(t, 35.0, p.TotalTimeMinutes)
	assert.Equal(t, "Step 1", p.Steps[0].Title)
	assert.Equal(t, 0.0, p.Steps[2].DurationMinutes)
	assert.Equal(t, model.DifficultyIntermediate, p.Difficulty)
	assert.NotNil(t, p.Steps[0].ToolsNeeded)
}

func TestNormalize_CapsSteps(t *testing.T) {
	numbers := make([]int, 0, 12)
	for i := 1; i <= 12; i++ {
		numbers = append(numbers, i)
	}
	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stepsJSON(numbers...)), &obj))

	p, err := Normalize(obj)
	require.NoError(t, err)
	assert.Len(t, p.Steps, MaxSteps)
}

func TestNewGenerator_NilLoggerFallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), NewGenerator(nil, nil).logger)

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, custom, NewGenerator(nil, custom).logger)
}

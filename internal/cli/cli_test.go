package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefix/internal/config"
	"homefix/internal/model"
)

// plain writes to a buffer so styling is always off.
func plain() styles { return newStyles(&bytes.Buffer{}, false) }

func TestRenderDiagnosis_SafetyGate(t *testing.T) {
	var buf bytes.Buffer
	renderDiagnosis(&buf, plain(), model.Diagnosis{
		ID:               "d-1",
		IssueType:        "gas leak",
		RiskLevel:        model.RiskCritical,
		Recommendation:   model.RecommendHire,
		Confidence:       90,
		SafetyConcerns:   []string{"Leave the house"},
		DIYDisabled:      true,
		SafetyGateReason: "gas smell reported",
	})

	out := buf.String()
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "WARNING: DIY disabled: gas smell reported")
	assert.Contains(t, out, "licensed professional")
	assert.Contains(t, out, "  - Leave the house")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderBOM_TotalsAndOptional(t *testing.T) {
	var buf bytes.Buffer
	renderBOM(&buf, plain(), model.BillOfMaterials{
		Parts: []model.BillOfMaterialsItem{{Name: "Cartridge", Quantity: 1, PriceMin: 12, PriceMax: 20}},
		Tools: []model.BillOfMaterialsItem{{Name: "Wrench", Quantity: 1, PriceMin: 15, PriceMax: 25, Optional: true}},
		Total: model.CostRange{Min: 27, Max: 45},
	})

	out := buf.String()
	assert.Contains(t, out, "Cartridge x1  $12.00-$20.00")
	assert.Contains(t, out, "Wrench x1  $15.00-$25.00 (optional)")
	assert.Contains(t, out, "$27.00 - $45.00")
}

func TestRenderPlan_Steps(t *testing.T) {
	var buf bytes.Buffer
	renderPlan(&buf, plain(), model.Plan{
		Difficulty:       model.Difficulty("Beginner"),
		TotalTimeMinutes: 25,
		Steps: []model.PlanStep{
			{StepNumber: 1, Title: "Shut off water", DurationMinutes: 5, SafetyNote: "Open the tap to drain pressure"},
			{StepNumber: 2, Title: "Swap cartridge", DurationMinutes: 20},
		},
	})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Repair plan\n"))
	assert.Contains(t, out, "1. Shut off water (5 min)")
	assert.Contains(t, out, "WARNING: Open the tap to drain pressure")
	assert.Contains(t, out, "2. Swap cartridge (20 min)")
}

func TestOpenOutcomeStore(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Outcomes.Backend = config.OutcomesMemory
	st, err := openOutcomeStore(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cfg.Outcomes.Backend = config.OutcomesSQLite
	cfg.Outcomes.SQLitePath = filepath.Join(t.TempDir(), "outcomes.db")
	st, err = openOutcomeStore(ctx, cfg)
	require.NoError(t, err)
	metrics, err := st.MetricsFor(ctx, "leaky faucet")
	require.NoError(t, err)
	assert.Greater(t, metrics.TotalAttempts, 0)
	require.NoError(t, st.Close())

	cfg.Outcomes.Backend = "postgres"
	_, err = openOutcomeStore(ctx, cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestSpinnerModel_QuitsWhenWorkDone(t *testing.T) {
	m := newSpinnerModel("working", func() error { return nil }, nil)
	wantErr := errors.New("boom")

	next, cmd := m.Update(workDoneMsg{err: wantErr})
	require.NotNil(t, cmd)
	final := next.(spinnerModel)
	assert.True(t, final.done)
	assert.Equal(t, wantErr, final.err)
	assert.Empty(t, final.View())
}

func TestRunWithSpinner_NonTTYRunsDirectly(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	called := false
	err = runWithSpinner(context.Background(), f, "working", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestParseCallArgs(t *testing.T) {
	args, err := parseCallArgs(`{"issue_type":"leaky faucet"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "leaky faucet", args["issue_type"])

	args, err = parseCallArgs("-", strings.NewReader(`{"zip":"94110"}`))
	require.NoError(t, err)
	assert.Equal(t, "94110", args["zip"])

	args, err = parseCallArgs("null", nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = parseCallArgs(`["not","an","object"]`, nil)
	assert.Error(t, err)
}

func TestEndpointFor(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Listen = "127.0.0.1:9000"
	cfg.Server.MCPPath = "/mcp"

	assert.Equal(t, "http://127.0.0.1:9000/mcp", endpointFor(cfg, ""))
	assert.Equal(t, "https://fix.example.com/mcp", endpointFor(cfg, " https://fix.example.com/mcp "))
}

func TestPrintConfig(t *testing.T) {
	fields := []config.FieldInfo{
		{Key: "server.listen", Value: "127.0.0.1:8787", Source: config.SourceDefault},
		{Key: "model.provider", Value: "gemini", Source: config.SourceEnv},
	}

	var yamlOut bytes.Buffer
	require.NoError(t, printConfig(&yamlOut, fields, false))
	assert.Contains(t, yamlOut.String(), "listen:")
	assert.Contains(t, yamlOut.String(), "source: env")

	var jsonOut bytes.Buffer
	require.NoError(t, printConfig(&jsonOut, fields, true))
	assert.Contains(t, jsonOut.String(), `"key": "model.provider"`)
	assert.Contains(t, jsonOut.String(), `"source": "default"`)
}

func TestReadPhotoFiles_SniffsContentType(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "sink.dat")
	require.NoError(t, os.WriteFile(png, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...), 0o600))

	photos, err := readPhotoFiles([]string{png})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "image/png", photos[0].MIMEType)

	txt := filepath.Join(dir, "notes.jpg")
	require.NoError(t, os.WriteFile(txt, []byte("just some notes"), 0o600))
	_, err = readPhotoFiles([]string{txt})
	assert.ErrorIs(t, err, model.ErrUnsupportedMediaType)

	_, err = readPhotoFiles([]string{filepath.Join(dir, "missing.png")})
	assert.Error(t, err)
}

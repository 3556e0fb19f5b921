// Package plan produces step-by-step repair plans. High and critical risk
// always yields the fixed professional-only plan without calling the model.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"homefix/internal/logging"
	"homefix/internal/model"
	"homefix/internal/modeljson"
)

// MaxSteps caps a model generated plan.
const MaxSteps = 10

const temperature = 0.4

const systemPrompt = `You are a home repair expert creating step-by-step DIY repair instructions.

REQUIREMENTS:
- Provide 5-10 clear, actionable steps
- Each step must include:
  * Step number
  * Title (brief, action-oriented)
  * Description (2-3 sentences)
  * Estimated duration in minutes
  * Safety note (specific hazards or precautions)
  * Tools needed for this step
  * Parts needed for this step

- Keep instructions simple and beginner-friendly
- Emphasize safety at every step
- Include specific measurements and details
- Total time should be realistic (including prep and cleanup)
- Number steps from 1 in the order they should be done

Return JSON format:
{
  "steps": [
    {
      "step_number": 1,
      "title": "...",
      "description": "...",
      "duration_minutes": 15,
      "safety_note": "...",
      "tools_needed": ["..."],
      "parts_needed": ["..."]
    }
  ],
  "total_time_minutes": 120,
  "difficulty": "Beginner|Intermediate|Advanced"
}`

type Generator struct {
	vision model.VisionModel
	logger *slog.Logger
}

func NewGenerator(vision model.VisionModel, logger *slog.Logger) *Generator {
	return &Generator{vision: vision, logger: logging.OrDefault(logger)}
}

// Generate returns the professional-only plan for high and critical risk and
// a model written DIY plan otherwise.
func (g *Generator) Generate(ctx context.Context, issueType string, risk model.RiskLevel) (model.Plan, error) {
	issueType = strings.TrimSpace(issueType)
	if issueType == "" {
		return model.Plan{}, fmt.Errorf("%w: issue_type is required", model.ErrValidation)
	}
	if _, ok := model.ParseRiskLevel(string(risk)); !ok {
		return model.Plan{}, fmt.Errorf("%w: risk_level %q is not one of %s", model.ErrValidation, risk, strings.Join(model.RiskLevels, ", "))
	}

	if risk.RequiresProfessional() {
		p := ProfessionalPlan(issueType, risk)
		g.logger.Info("plan generated", "branch", "professional", "step_count", len(p.Steps), "total_time", p.TotalTimeMinutes)
		return p, nil
	}

	if g.vision == nil {
		return model.Plan{}, fmt.Errorf("%w: no vision model configured", model.ErrUpstreamCall)
	}
	reply, err := g.vision.Complete(ctx, model.CompletionRequest{
		System:      systemPrompt,
		Text:        fmt.Sprintf("Create a repair plan for: %s\nRisk level: %s", issueType, risk),
		JSON:        true,
		Temperature: temperature,
	})
	if err != nil {
		g.logger.Error("plan generation failed", "error", err)
		return model.Plan{}, fmt.Errorf("generate plan: %w", model.WrapUpstream(err))
	}

	obj, err := modeljson.Object(reply)
	if err != nil {
		return model.Plan{}, fmt.Errorf("%w: plan: %v", model.ErrUpstreamParse, err)
	}
	p, err := Normalize(obj)
	if err != nil {
		return model.Plan{}, err
	}
	p.Title = "Repair plan: " + issueType
	p.IssueType = issueType
	p.RiskLevel = risk

	g.logger.Info("plan generated", "branch", "diy", "step_count", len(p.Steps), "total_time", p.TotalTimeMinutes)
	return p, nil
}

// ProfessionalPlan is the fixed two-step plan for work that must be hired out.
func ProfessionalPlan(issueType string, risk model.RiskLevel) model.Plan {
	return model.Plan{
		Title:     "Professional repair: " + issueType,
		IssueType: issueType,
		RiskLevel: risk,
		Steps: []model.PlanStep{
			{
				StepNumber:      1,
				Title:           "Do Not Attempt DIY Repair",
				Description:     "This repair involves significant safety risks and should only be performed by licensed professionals.",
				DurationMinutes: 0,
				SafetyNote:      "⚠️ CRITICAL: This is a high-risk repair. Attempting DIY could result in injury, property damage, or code violations.",
				ToolsNeeded:     []string{},
				PartsNeeded:     []string{},
			},
			{
				StepNumber:      2,
				Title:           "Contact Licensed Professionals",
				Description:     "Get multiple quotes from certified contractors who are licensed and insured for this type of work.",
				DurationMinutes: 30,
				SafetyNote:      "Verify contractor licenses and insurance before hiring.",
				ToolsNeeded:     []string{},
				PartsNeeded:     []string{},
			},
		},
		TotalTimeMinutes: 30,
		Difficulty:       model.DifficultyProfessional,
		SafetyWarning:    fmt.Sprintf("This repair is classified as %s risk and requires professional expertise.", risk),
	}
}

// Normalize validates a model plan. Steps keep the order the model gave
// them and must already be numbered 1..n; a gap or reordering is rejected
// rather than renumbered.
func Normalize(obj map[string]interface{}) (model.Plan, error) {
	entries, ok := modeljson.Objects(obj["steps"])
	if !ok {
		return model.Plan{}, fmt.Errorf("%w: plan steps must be an array", model.ErrUpstreamParse)
	}
	if len(entries) == 0 {
		return model.Plan{}, fmt.Errorf("%w: plan has no steps", model.ErrUpstreamParse)
	}
	if len(entries) > MaxSteps {
		entries = entries[:MaxSteps]
	}

	steps := make([]model.PlanStep, 0, len(entries))
	var sum float64
	for idx, entry := range entries {
		want := idx + 1
		n, ok := modeljson.Number(entry["step_number"])
		if !ok || n != float64(want) {
			return model.Plan{}, fmt.Errorf("%w: step %d has step_number %v, want %d", model.ErrUpstreamParse, want, entry["step_number"], want)
		}

		title := modeljson.String(entry["title"])
		if title == "" {
			title = fmt.Sprintf("Step %d", want)
		}
		duration, _ := modeljson.Number(entry["duration_minutes"])
		duration = max(duration, 0)
		sum += duration

		steps = append(steps, model.PlanStep{
			StepNumber:      want,
			Title:           title,
			Description:     modeljson.String(entry["description"]),
			DurationMinutes: duration,
			SafetyNote:      modeljson.String(entry["safety_note"]),
			ToolsNeeded:     modeljson.Strings(entry["tools_needed"]),
			PartsNeeded:     modeljson.Strings(entry["parts_needed"]),
		})
	}

	total, ok := modeljson.Number(obj["total_time_minutes"])
	if !ok || total < 0 {
		total = sum
	}

	return model.Plan{
		Steps:            steps,
		TotalTimeMinutes: total,
		Difficulty:       model.ParseDifficulty(modeljson.String(obj["difficulty"])),
	}, nil
}

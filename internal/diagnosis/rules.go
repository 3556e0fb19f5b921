package diagnosis

import (
	"regexp"
	"strconv"
	"strings"

	"homefix/internal/model"
	"homefix/internal/safety"
	"homefix/internal/sanitize"
)

const (
	maxIssueTypeRunes = 100
	maxSummaryRunes   = 300
	maxConcernLines   = 3
	defaultConfidence = 75
	unknownIssueType  = "Unknown issue"
)

// riskRule classifies a reply. Rules are evaluated top to bottom and the
// first match wins; a reply matching none is low risk.
type riskRule struct {
	level   model.RiskLevel
	onGate  bool
	phrases []string
}

var riskRules = []riskRule{
	{level: model.RiskCritical, onGate: true, phrases: []string{"critical", "dangerous"}},
	{level: model.RiskHigh, phrases: []string{"high risk", "professional required"}},
	{level: model.RiskMedium, phrases: []string{"medium risk", "caution"}},
}

var (
	confidencePattern = regexp.MustCompile(`(\d+)%`)
	concernPhrases    = []string{"safety", "danger", "risk", "warning"}
)

func classifyRisk(lowerReply string, gate model.SafetyGateResult) model.RiskLevel {
	for _, rule := range riskRules {
		if rule.onGate && gate.Triggered {
			return rule.level
		}
		if containsAny(lowerReply, rule.phrases) {
			return rule.level
		}
	}
	return model.RiskLow
}

// Parse turns a free-text model reply into a Diagnosis. The gate result
// must come from safety.Check over the description plus the reply.
func Parse(reply string, gate model.SafetyGateResult) model.Diagnosis {
	lower := strings.ToLower(reply)
	lines := nonEmptyLines(reply)

	issueType := unknownIssueType
	if len(lines) > 0 {
		issueType = sanitize.Truncate(lines[0], maxIssueTypeRunes)
	}

	risk := classifyRisk(lower, gate)

	recommendation := model.RecommendDIY
	if gate.Triggered || risk.RequiresProfessional() {
		recommendation = model.RecommendHire
	}

	confidence := defaultConfidence
	if m := confidencePattern.FindStringSubmatch(reply); m != nil {
		// only overflow can fail here; anything that large clamps anyway
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 100
		}
		confidence = min(n, 100)
	}

	concerns := make([]string, 0, maxConcernLines+1)
	if gate.Triggered {
		concerns = append(concerns, gate.Reason)
	}
	found := 0
	for _, line := range lines {
		if found == maxConcernLines {
			break
		}
		if containsAny(strings.ToLower(line), concernPhrases) {
			concerns = append(concerns, line)
			found++
		}
	}

	d := model.Diagnosis{
		IssueType:      issueType,
		RiskLevel:      risk,
		Recommendation: recommendation,
		Confidence:     confidence,
		SafetyConcerns: concerns,
		Summary:        sanitize.Truncate(reply, maxSummaryRunes),
		DIYDisabled:    gate.Triggered || risk == model.RiskCritical,
	}
	if gate.Triggered {
		d.SafetyGateReason = gate.Reason
	}
	return d
}

// Gate runs the safety gate over the description and, when present, the
// model reply.
func Gate(description, reply string) model.SafetyGateResult {
	if reply == "" {
		return safety.Check(description)
	}
	return safety.Check(description + " " + reply)
}

func nonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

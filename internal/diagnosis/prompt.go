package diagnosis

import (
	"fmt"
	"math"
	"strings"

	"homefix/internal/model"
)

const (
	temperature = 0.3
	maxTokens   = 1000
)

const systemPrompt = `You are a home repair expert. Analyze the photos and description to:
1. Identify the exact issue
2. Assess risk level (low/medium/high/critical)
3. Determine if DIY is safe or if professional help is required
4. Provide confidence score (0-100%)
5. List key safety concerns

Start your answer with a single line naming the issue.

CRITICAL SAFETY RULES:
- Gas, electrical panel, structural, roof height, hazardous material (asbestos, mold) and major plumbing (sewer, septic, main water line) issues: FORCE "Hire a Professional"
- High-risk issues: disable all DIY options
- Be conservative: when in doubt, recommend professional help`

func userPrompt(description string, photos []model.Photo) string {
	var b strings.Builder
	b.WriteString("Description: ")
	b.WriteString(description)
	b.WriteString("\n\nAnalyze these photos and provide a diagnosis.")

	var marks []string
	for idx, p := range photos {
		for _, a := range p.Annotations {
			label := a.Label
			if label == "" {
				label = "Marked area"
			}
			marks = append(marks, fmt.Sprintf("Photo %d: %s at position (%d, %d)", idx+1, label, int(math.Round(a.X)), int(math.Round(a.Y))))
		}
	}
	if len(marks) > 0 {
		b.WriteString("\n\nIMPORTANT: User has marked specific problem areas:\n")
		b.WriteString(strings.Join(marks, "\n"))
	}
	return b.String()
}

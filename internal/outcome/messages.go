package outcome

import (
	"fmt"

	"homefix/internal/model"
)

type message struct {
	thankYou string
	insight  func(model.SuccessMetrics) string
}

var messages = map[model.Outcome]message{
	model.OutcomeSuccess: {
		thankYou: "Awesome work! Thanks for sharing your success.",
		insight: func(m model.SuccessMetrics) string {
			return fmt.Sprintf("You're one of %d%% who completed this DIY repair successfully. The community appreciates your feedback!", m.SuccessRate)
		},
	},
	model.OutcomePartial: {
		thankYou: "Thanks for the honest feedback! Every repair is a learning experience.",
		insight: func(m model.SuccessMetrics) string {
			return fmt.Sprintf("%d%% of users complete this repair. Your feedback helps us improve guidance for future users.", m.SuccessRate)
		},
	},
	model.OutcomeFailed: {
		thankYou: "We appreciate you sharing this. Not all repairs go as planned, and that is okay.",
		insight: func(model.SuccessMetrics) string {
			return "Your feedback will help us improve our difficulty assessments and provide better guidance to future users."
		},
	},
	model.OutcomeHiredPro: {
		thankYou: "Smart decision! Knowing when to call a pro is an important skill.",
		insight: func(m model.SuccessMetrics) string {
			return fmt.Sprintf("%d%% of users choose to hire professionals for this type of repair. You made the right call for your situation.", 100-m.DIYRecommendationRate)
		},
	},
}

var nextSteps = map[model.Outcome][]string{
	model.OutcomeSuccess: {
		"Share before/after photos to inspire others (optional)",
		"Save your diagnosis for future reference",
		"Rate your experience to help improve the app",
		"Explore other common home repair issues",
	},
	model.OutcomePartial: {
		"Consider getting a quote for the remaining work",
		"Share what worked and what did not",
		"Keep your repair notes for future reference",
		"Ask in the community for additional tips",
	},
	model.OutcomeFailed: {
		"No worries - we can help you find a pro",
		"Get 3 quotes from local contractors",
		"Review what went wrong to learn for next time",
		"Save your diagnosis for the contractor",
	},
	model.OutcomeHiredPro: {
		"Use your diagnosis notes when talking to contractors",
		"Get at least 3 quotes before deciding",
		"Verify contractor licenses and insurance",
		"Share contractor experience to help others",
	},
}

const tipImpact = "Your tip will help others attempting this repair!"

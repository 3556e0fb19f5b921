package mcp

import (
	"homefix/internal/model"
	"homefix/internal/photo"
)

func str() map[string]interface{} { return map[string]interface{}{"type": "string"} }
func number() map[string]interface{} { return map[string]interface{}{"type": "number"} }
func integer() map[string]interface{} { return map[string]interface{}{"type": "integer"} }
func boolean() map[string]interface{} { return map[string]interface{}{"type": "boolean"} }

func arrayOf(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}

func nullable(typ string) map[string]interface{} {
	return map[string]interface{}{"type": []string{typ, "null"}}
}

func photoInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"oneOf": []interface{}{
			map[string]interface{}{
				"type":        "string",
				"description": "Base64 image data or a data: URI.",
			},
			map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data":     map[string]interface{}{"type": "string", "description": "Base64 image data or a data: URI."},
					"mimeType": map[string]interface{}{"type": "string", "enum": model.SupportedImageMIMETypes},
					"annotations": arrayOf(map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x":     number(),
							"y":     number(),
							"label": str(),
						},
						"required": []string{"x", "y"},
					}),
				},
				"required": []string{"data"},
			},
		},
	}
}

func analyzeIssueInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"description": map[string]interface{}{
				"type":        "string",
				"minLength":   minDescriptionRunes,
				"maxLength":   maxDescriptionRunes,
				"description": "What the user sees, hears or smells.",
			},
			"photos": map[string]interface{}{
				"type":     "array",
				"minItems": photo.MinPhotos,
				"maxItems": photo.MaxPhotos,
				"items":    photoInputSchema(),
			},
		},
		"required": []string{"description", "photos"},
	}
}

func diagnosisSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"diagnosis_id":       str(),
			"issue_type":         str(),
			"risk_level":         map[string]interface{}{"type": "string", "enum": model.RiskLevels},
			"recommendation":     map[string]interface{}{"type": "string", "enum": []string{string(model.RecommendDIY), string(model.RecommendHire)}},
			"confidence":         map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
			"safety_concerns":    arrayOf(str()),
			"summary":            str(),
			"diy_disabled":       boolean(),
			"safety_gate_reason": str(),
		},
		"required": []string{"diagnosis_id", "issue_type", "risk_level", "recommendation", "confidence", "safety_concerns", "diy_disabled"},
	}
}

func bomItemSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":      str(),
			"category":  str(),
			"quantity":  number(),
			"unit":      str(),
			"price_min": number(),
			"price_max": number(),
			"optional":  boolean(),
			"notes":     str(),
			"have_it":   boolean(),
		},
		"required": []string{"name", "quantity", "price_min", "price_max"},
	}
}

func billOfMaterialsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"parts": arrayOf(bomItemSchema()),
			"tools": arrayOf(bomItemSchema()),
			"total": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"min": number(),
					"max": number(),
				},
				"required": []string{"min", "max"},
			},
		},
		"required": []string{"parts", "tools", "total"},
	}
}

func analyzeIssueOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"diagnosis":    diagnosisSchema(),
			"bom":          billOfMaterialsSchema(),
			"raw_analysis": str(),
		},
		"required": []string{"diagnosis", "bom"},
	}
}

func generatePlanInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"issue_type": map[string]interface{}{"type": "string", "minLength": minIssueTypeRunes, "maxLength": maxIssueTypeRunes},
			"risk_level": map[string]interface{}{"type": "string", "enum": model.RiskLevels},
		},
		"required": []string{"issue_type", "risk_level"},
	}
}

func generatePlanOutputSchema() map[string]interface{} {
	step := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"step_number":      integer(),
			"title":            str(),
			"description":      str(),
			"duration_minutes": number(),
			"safety_note":      str(),
			"tools_needed":     arrayOf(str()),
			"parts_needed":     arrayOf(str()),
		},
		"required": []string{"step_number", "title", "description", "duration_minutes"},
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"plan": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":              str(),
					"issue_type":         str(),
					"risk_level":         str(),
					"steps":              arrayOf(step),
					"total_time_minutes": number(),
					"difficulty":         str(),
					"safety_warning":     str(),
				},
				"required": []string{"steps", "total_time_minutes", "difficulty"},
			},
			"bom": billOfMaterialsSchema(),
			"progress": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"started_at":      nullable("string"),
					"completed_steps": arrayOf(integer()),
					"paused_at":       nullable("string"),
					"actual_costs": map[string]interface{}{
						"type":       "object",
						"properties": map[string]interface{}{"parts": number(), "tools": number()},
					},
					"notes": arrayOf(str()),
				},
			},
		},
		"required": []string{"plan", "bom", "progress"},
	}
}

func generateBOMInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"issue_type": map[string]interface{}{"type": "string", "minLength": minIssueTypeRunes, "maxLength": maxIssueTypeRunes},
		},
		"required": []string{"issue_type"},
	}
}

func requestQuotesInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"zip":       map[string]interface{}{"type": "string", "pattern": "^[0-9]{5}$"},
			"scope":     map[string]interface{}{"type": "string", "minLength": 20, "maxLength": 1000},
			"confirmed": map[string]interface{}{"type": "boolean", "description": "Must be true only after the user explicitly agreed to share the request."},
		},
		"required": []string{"zip", "scope", "confirmed"},
	}
}

func requestQuotesOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"success":             boolean(),
			"error":               str(),
			"message":             str(),
			"confirmation_needed": boolean(),
			"code":                str(),
			"quote_request": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"zip_code":     str(),
					"work_scope":   str(),
					"requested_at": str(),
					"status":       str(),
					"message":      str(),
				},
			},
			"contractors": arrayOf(map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":                  str(),
					"rating":                number(),
					"review_count":          integer(),
					"years_in_business":     integer(),
					"licensed":              boolean(),
					"insured":               boolean(),
					"specialties":           arrayOf(str()),
					"typical_response_time": str(),
					"distance_miles":        number(),
				},
			}),
			"next_steps":   arrayOf(str()),
			"privacy_note": str(),
		},
		"required": []string{"success"},
	}
}

func submitOutcomeInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"diagnosis_id":        map[string]interface{}{"type": "string", "minLength": 5},
			"outcome":             map[string]interface{}{"type": "string", "enum": model.Outcomes},
			"issue_type":          str(),
			"actual_time_minutes": map[string]interface{}{"type": []string{"number", "null"}, "minimum": 0},
			"actual_cost":         map[string]interface{}{"type": []string{"number", "null"}, "minimum": 0},
			"difficulty_rating":   map[string]interface{}{"type": []string{"integer", "null"}, "minimum": 1, "maximum": 5},
			"after_photos": map[string]interface{}{
				"type":     "array",
				"maxItems": photo.MaxPhotos,
				"items":    photoInputSchema(),
			},
			"tips":                map[string]interface{}{"type": []string{"string", "null"}, "maxLength": 1000},
			"would_recommend_diy": nullable("boolean"),
		},
		"required": []string{"diagnosis_id", "outcome"},
	}
}

func submitOutcomeOutputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"success":           boolean(),
			"outcome_id":        str(),
			"thank_you_message": str(),
			"community_insight": str(),
			"success_metrics": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"total_attempts":          integer(),
					"success_rate":            integer(),
					"avg_time_minutes":        number(),
					"avg_cost":                number(),
					"diy_recommendation_rate": integer(),
					"common_tips":             arrayOf(str()),
				},
			},
			"next_steps": arrayOf(str()),
			"tip_shared": boolean(),
			"tip_impact": str(),
		},
		"required": []string{"success", "outcome_id", "thank_you_message", "community_insight", "success_metrics", "next_steps"},
	}
}

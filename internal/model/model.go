package model

import "time"

// Photo is a decoded image owned by the call that produced it. It is never
// persisted and is dropped once the model call returns.
type Photo struct {
	Bytes       []byte
	MIMEType    string
	Annotations []Annotation
}

// Annotation marks a point of interest on a photo.
type Annotation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// SafetyGateResult is recomputed on every call.
type SafetyGateResult struct {
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
	ForceHire bool   `json:"force_hire"`
}

// Diagnosis is the structured reading of a single analyze call. Fields are
// set once by the extractor and not mutated afterwards.
type Diagnosis struct {
	ID               string         `json:"diagnosis_id"`
	IssueType        string         `json:"issue_type"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	Recommendation   Recommendation `json:"recommendation"`
	Confidence       int            `json:"confidence"`
	SafetyConcerns   []string       `json:"safety_concerns"`
	Summary          string         `json:"summary"`
	DIYDisabled      bool           `json:"diy_disabled"`
	SafetyGateReason string         `json:"safety_gate_reason,omitempty"`
}

type BillOfMaterialsItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	PriceMin float64 `json:"price_min"`
	PriceMax float64 `json:"price_max"`
	Optional bool    `json:"optional"`
	Notes    string  `json:"notes"`
	HaveIt   bool    `json:"have_it"`
}

type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type BillOfMaterials struct {
	Parts []BillOfMaterialsItem `json:"parts"`
	Tools []BillOfMaterialsItem `json:"tools"`
	Total CostRange             `json:"total"`
}

type PlanStep struct {
	StepNumber      int      `json:"step_number"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationMinutes float64  `json:"duration_minutes"`
	SafetyNote      string   `json:"safety_note,omitempty"`
	ToolsNeeded     []string `json:"tools_needed"`
	PartsNeeded     []string `json:"parts_needed"`
}

type Plan struct {
	Title            string     `json:"title,omitempty"`
	IssueType        string     `json:"issue_type,omitempty"`
	RiskLevel        RiskLevel  `json:"risk_level,omitempty"`
	Steps            []PlanStep `json:"steps"`
	TotalTimeMinutes float64    `json:"total_time_minutes"`
	Difficulty       Difficulty `json:"difficulty"`
	SafetyWarning    string     `json:"safety_warning,omitempty"`
}

type ActualCosts struct {
	Parts float64 `json:"parts"`
	Tools float64 `json:"tools"`
}

// Progress is held by the client widget. The server only hands out the
// initial value and never reads it back.
type Progress struct {
	StartedAt      *time.Time  `json:"started_at"`
	CompletedSteps []int       `json:"completed_steps"`
	PausedAt       *time.Time  `json:"paused_at"`
	ActualCosts    ActualCosts `json:"actual_costs"`
	Notes          []string    `json:"notes"`
}

// NewProgress returns the untouched progress state for a freshly shown plan.
func NewProgress() Progress {
	return Progress{
		CompletedSteps: []int{},
		Notes:          []string{},
	}
}

type Contractor struct {
	Name                string   `json:"name"`
	Rating              float64  `json:"rating"`
	ReviewCount         int      `json:"review_count"`
	YearsInBusiness     int      `json:"years_in_business"`
	Licensed            bool     `json:"licensed"`
	Insured             bool     `json:"insured"`
	Specialties         []string `json:"specialties"`
	TypicalResponseTime string   `json:"typical_response_time"`
	DistanceMiles       float64  `json:"distance_miles"`
}

// OutcomeRecord is the feedback a user submits after attempting (or hiring
// out) a repair.
type OutcomeRecord struct {
	ID                string    `json:"outcome_id"`
	DiagnosisID       string    `json:"diagnosis_id"`
	IssueType         string    `json:"issue_type,omitempty"`
	Outcome           Outcome   `json:"outcome"`
	ActualTimeMinutes *float64  `json:"actual_time_minutes,omitempty"`
	ActualCost        *float64  `json:"actual_cost,omitempty"`
	DifficultyRating  *int      `json:"difficulty_rating,omitempty"`
	AfterPhotoCount   int       `json:"after_photo_count"`
	Tips              string    `json:"tips,omitempty"`
	WouldRecommendDIY *bool     `json:"would_recommend_diy,omitempty"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// SuccessMetrics aggregates community outcomes for one issue type.
type SuccessMetrics struct {
	TotalAttempts         int      `json:"total_attempts"`
	SuccessRate           int      `json:"success_rate"`
	AvgTimeMinutes        float64  `json:"avg_time_minutes"`
	AvgCost               float64  `json:"avg_cost"`
	DIYRecommendationRate int      `json:"diy_recommendation_rate"`
	CommonTips            []string `json:"common_tips"`
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"homefix/internal/model"
	"homefix/internal/outcome"
	"homefix/internal/photo"
	"homefix/internal/protocol"
	"homefix/internal/quotes"
)

const (
	minDescriptionRunes = 10
	maxDescriptionRunes = 600
	minIssueTypeRunes   = 3
	maxIssueTypeRunes   = 120
)

var toolOrder = []string{
	protocol.ToolNameAnalyzeIssue,
	protocol.ToolNameGeneratePlan,
	protocol.ToolNameGenerateBOM,
	protocol.ToolNameRequestQuotes,
	protocol.ToolNameSubmitOutcome,
}

// toolAliases are accepted by tools/call but not listed.
var toolAliases = map[string]string{
	protocol.ToolNameGenerateRepairPlan: protocol.ToolNameGeneratePlan,
}

type toolHandler func(context.Context, map[string]interface{}) (toolCallResult, *toolExecutionError)

type toolDefinition struct {
	Name         string                 `json:"name"`
	Title        string                 `json:"title,omitempty"`
	Description  string                 `json:"description"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`
	Meta         map[string]interface{} `json:"_meta,omitempty"`
	handler      toolHandler            `json:"-"`
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type toolCallResult struct {
	Content           []toolContentItem      `json:"content"`
	StructuredContent interface{}            `json:"structuredContent,omitempty"`
	IsError           bool                   `json:"isError,omitempty"`
	Meta              map[string]interface{} `json:"_meta,omitempty"`
}

type toolContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolExecutionError struct {
	Code      string
	Message   string
	Retryable bool
}

func (s *Server) buildToolRegistry() map[string]toolDefinition {
	return map[string]toolDefinition{
		protocol.ToolNameAnalyzeIssue: {
			Name:         protocol.ToolNameAnalyzeIssue,
			Title:        "Analyze home repair issue",
			Description:  "Analyze photos and a description of a home repair problem. Returns issue type, risk level, DIY or professional recommendation, safety concerns and an estimated bill of materials.",
			InputSchema:  analyzeIssueInputSchema(),
			OutputSchema: analyzeIssueOutputSchema(),
			Meta:         outputTemplateMeta(protocol.ResourceDiagnosisWidget),
			handler:      s.handleAnalyzeIssueTool,
		},
		protocol.ToolNameGeneratePlan: {
			Name:         protocol.ToolNameGeneratePlan,
			Title:        "Generate repair plan",
			Description:  "Generate a step-by-step repair plan for a diagnosed issue. High and critical risk issues get a hire-a-professional plan instead of DIY steps.",
			InputSchema:  generatePlanInputSchema(),
			OutputSchema: generatePlanOutputSchema(),
			Meta:         outputTemplateMeta(protocol.ResourceStepsWidget),
			handler:      s.handleGeneratePlanTool,
		},
		protocol.ToolNameGenerateBOM: {
			Name:         protocol.ToolNameGenerateBOM,
			Title:        "Estimate materials",
			Description:  "Estimate the parts and tools needed for a repair, with US retail price ranges.",
			InputSchema:  generateBOMInputSchema(),
			OutputSchema: billOfMaterialsSchema(),
			handler:      s.handleGenerateBOMTool,
		},
		protocol.ToolNameRequestQuotes: {
			Name:         protocol.ToolNameRequestQuotes,
			Title:        "Request contractor quotes",
			Description:  "Request quotes from licensed local contractors. Requires explicit user confirmation before any request is prepared.",
			InputSchema:  requestQuotesInputSchema(),
			OutputSchema: requestQuotesOutputSchema(),
			handler:      s.handleRequestQuotesTool,
		},
		protocol.ToolNameSubmitOutcome: {
			Name:         protocol.ToolNameSubmitOutcome,
			Title:        "Submit repair outcome",
			Description:  "Report how a repair went so community success metrics improve. Photos are counted and discarded.",
			InputSchema:  submitOutcomeInputSchema(),
			OutputSchema: submitOutcomeOutputSchema(),
			handler:      s.handleSubmitOutcomeTool,
		},
	}
}

func (s *Server) orderedTools() []toolDefinition {
	tools := make([]toolDefinition, 0, len(s.tools))
	for _, name := range toolOrder {
		if tool, ok := s.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	if len(tools) == len(s.tools) {
		return tools
	}

	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	tools = tools[:0]
	for _, name := range names {
		tools = append(tools, s.tools[name])
	}
	return tools
}

func (s *Server) handleToolsList(w http.ResponseWriter, id interface{}) {
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"tools": s.orderedTools(),
	})
}

func (s *Server) handleToolsCall(ctx context.Context, w http.ResponseWriter, rawParams json.RawMessage, id interface{}) {
	result, statusCode, rpcErr := s.processToolsCall(ctx, rawParams)
	if rpcErr != nil {
		writeResponse(w, statusCode, rpcResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   rpcErr,
		})
		return
	}
	writeResult(w, statusCode, id, result)
}

func (s *Server) processToolsCall(ctx context.Context, rawParams json.RawMessage) (toolCallResult, int, *rpcError) {
	params, err := parseToolsCallParams(rawParams)
	if err != nil {
		canonicalCode := protocol.ErrorCodeInvalidField
		var vErr validationError
		if errors.As(err, &vErr) && vErr.canonicalCode != "" {
			canonicalCode = vErr.canonicalCode
		}
		return toolCallResult{}, http.StatusBadRequest, &rpcError{
			Code:    rpcCodeInvalidRequest,
			Message: err.Error(),
			Data: &rpcErrorData{
				Code:      canonicalCode,
				Retryable: false,
			},
		}
	}

	name := params.Name
	if canonical, ok := toolAliases[name]; ok {
		name = canonical
	}
	tool, ok := s.tools[name]
	if !ok {
		return newToolErrorResult(toolExecutionError{
			Code:      protocol.ErrorCodeMethodNotFound,
			Message:   fmt.Sprintf("unknown tool: %s", params.Name),
			Retryable: false,
		}), http.StatusOK, nil
	}

	result, toolErr := tool.handler(ctx, params.Arguments)
	if toolErr != nil {
		s.logger.Warn("tool call failed",
			"tool", name,
			"code", toolErr.Code,
			"retryable", toolErr.Retryable,
		)
		return newToolErrorResult(*toolErr), http.StatusOK, nil
	}
	return result, http.StatusOK, nil
}

func parseToolsCallParams(raw json.RawMessage) (toolsCallParams, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return toolsCallParams{}, validationError{
			message:       "params is required",
			canonicalCode: protocol.ErrorCodeMissingField,
		}
	}

	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolsCallParams{}, validationError{
			message:       "invalid tools/call params",
			canonicalCode: protocol.ErrorCodeInvalidField,
		}
	}

	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return toolsCallParams{}, validationError{
			message:       "tools/call params.name is required",
			canonicalCode: protocol.ErrorCodeMissingField,
		}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return params, nil
}

func newToolErrorResult(toolErr toolExecutionError) toolCallResult {
	text := fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)
	return toolCallResult{
		IsError: true,
		Content: []toolContentItem{
			{Type: "text", Text: text},
		},
		StructuredContent: map[string]interface{}{
			"error": map[string]interface{}{
				"code":      toolErr.Code,
				"message":   toolErr.Message,
				"retryable": toolErr.Retryable,
			},
		},
	}
}

func textResult(text string, structured interface{}, meta map[string]interface{}) toolCallResult {
	return toolCallResult{
		Content:           []toolContentItem{{Type: "text", Text: text}},
		StructuredContent: structured,
		Meta:              meta,
	}
}

func outputTemplateMeta(uri string) map[string]interface{} {
	return map[string]interface{}{protocol.OutputTemplateMetaKey: uri}
}

func (s *Server) handleAnalyzeIssueTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, allowedKeys("description", "photos")); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}

	description, toolErr := requireBoundedString(args, "description", minDescriptionRunes, maxDescriptionRunes)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	rawPhotos, present := args["photos"]
	if !present || rawPhotos == nil {
		return toolCallResult{}, missingField("photos is required")
	}
	list, ok := rawPhotos.([]interface{})
	if !ok {
		return toolCallResult{}, invalidField("photos must be an array")
	}
	if len(list) < photo.MinPhotos || len(list) > photo.MaxPhotos {
		return toolCallResult{}, &toolExecutionError{
			Code:    protocol.ErrorCodeInvalidRange,
			Message: fmt.Sprintf("photos must contain between %d and %d items", photo.MinPhotos, photo.MaxPhotos),
		}
	}
	photos, err := photo.NormalizeAll(list)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeInvalidField, err)
	}

	analysis, err := s.extractor.Analyze(ctx, description, photos)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeUpstreamCallFailed, err)
	}
	bom, err := s.estimator.Estimate(ctx, analysis.Diagnosis.IssueType)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeUpstreamCallFailed, err)
	}

	d := analysis.Diagnosis
	text := fmt.Sprintf("Identified %s (%s risk).", d.IssueType, d.RiskLevel)
	if d.DIYDisabled {
		text += " DIY is disabled for safety; hire a licensed professional."
	}
	return textResult(text, map[string]interface{}{
		"diagnosis":    d,
		"bom":          bom,
		"raw_analysis": analysis.RawAnalysis,
	}, outputTemplateMeta(protocol.ResourceDiagnosisWidget)), nil
}

func (s *Server) handleGeneratePlanTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, allowedKeys("issue_type", "risk_level")); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}

	issueType, toolErr := requireBoundedString(args, "issue_type", minIssueTypeRunes, maxIssueTypeRunes)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}
	rawRisk, present, err := parseRequiredString(args, "risk_level")
	if err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if !present {
		return toolCallResult{}, missingField("risk_level is required")
	}
	risk, ok := model.ParseRiskLevel(rawRisk)
	if !ok {
		return toolCallResult{}, invalidField(fmt.Sprintf("risk_level must be one of %s", strings.Join(model.RiskLevels, ", ")))
	}

	repairPlan, err := s.planner.Generate(ctx, issueType, risk)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeUpstreamCallFailed, err)
	}
	bom, err := s.estimator.Estimate(ctx, issueType)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeUpstreamCallFailed, err)
	}

	text := fmt.Sprintf("Generated plan with %d steps (%s).", len(repairPlan.Steps), repairPlan.Difficulty)
	return textResult(text, map[string]interface{}{
		"plan":     repairPlan,
		"bom":      bom,
		"progress": model.NewProgress(),
	}, outputTemplateMeta(protocol.ResourceStepsWidget)), nil
}

func (s *Server) handleGenerateBOMTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, allowedKeys("issue_type")); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	issueType, toolErr := requireBoundedString(args, "issue_type", minIssueTypeRunes, maxIssueTypeRunes)
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}

	bom, err := s.estimator.Estimate(ctx, issueType)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeUpstreamCallFailed, err)
	}
	text := fmt.Sprintf("Estimated %d parts and %d tools ($%.2f-$%.2f).", len(bom.Parts), len(bom.Tools), bom.Total.Min, bom.Total.Max)
	return textResult(text, bom, nil), nil
}

func (s *Server) handleRequestQuotesTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	if err := assertNoUnknownArguments(args, allowedKeys("zip", "scope", "confirmed")); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}

	zip, present, err := parseRequiredString(args, "zip")
	if err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if !present {
		return toolCallResult{}, missingField("zip is required")
	}
	scope, present, err := parseRequiredString(args, "scope")
	if err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if !present {
		return toolCallResult{}, missingField("scope is required")
	}
	if _, present := args["confirmed"]; !present {
		return toolCallResult{}, missingField("confirmed is required")
	}
	confirmed, err := parseOptionalBool(args, "confirmed", false)
	if err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}

	res, err := s.quotes.Request(ctx, quotes.Request{ZIP: zip, Scope: scope, Confirmed: confirmed})
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeUpstreamCallFailed, err)
	}

	text := res.Message
	if errors.Is(res.Err(), model.ErrConfirmationRequired) {
		res.Code = protocol.ErrorCodeConfirmationRequired
	} else if res.Success {
		text = "Quote request prepared with recommended contractors."
	}
	return textResult(text, res, nil), nil
}

func (s *Server) handleSubmitOutcomeTool(ctx context.Context, args map[string]interface{}) (toolCallResult, *toolExecutionError) {
	allowed := allowedKeys(
		"diagnosis_id", "outcome", "issue_type", "actual_time_minutes", "actual_cost",
		"difficulty_rating", "after_photos", "tips", "would_recommend_diy",
	)
	if err := assertNoUnknownArguments(args, allowed); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}

	diagnosisID, present, err := parseRequiredString(args, "diagnosis_id")
	if err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if !present {
		return toolCallResult{}, missingField("diagnosis_id is required")
	}
	outcomeValue, present, err := parseRequiredString(args, "outcome")
	if err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if !present {
		return toolCallResult{}, missingField("outcome is required")
	}

	sub := outcome.Submission{DiagnosisID: diagnosisID, Outcome: outcomeValue}
	if sub.IssueType, err = parseOptionalString(args, "issue_type"); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if sub.Tips, err = parseOptionalString(args, "tips"); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if sub.ActualTimeMinutes, err = parseOptionalNumber(args, "actual_time_minutes"); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if sub.ActualCost, err = parseOptionalNumber(args, "actual_cost"); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if sub.WouldRecommendDIY, err = parseNullableBool(args, "would_recommend_diy"); err != nil {
		return toolCallResult{}, invalidField(err.Error())
	}
	if raw, ok := args["difficulty_rating"]; ok && raw != nil {
		rating, err := parseInteger(raw, "difficulty_rating")
		if err != nil {
			return toolCallResult{}, invalidField(err.Error())
		}
		if rating < 1 || rating > 5 {
			return toolCallResult{}, &toolExecutionError{
				Code:    protocol.ErrorCodeInvalidRange,
				Message: "difficulty_rating must be between 1 and 5",
			}
		}
		sub.DifficultyRating = &rating
	}

	count, toolErr := s.countAfterPhotos(args["after_photos"])
	if toolErr != nil {
		return toolCallResult{}, toolErr
	}
	sub.AfterPhotoCount = count

	resp, err := s.outcomes.Submit(ctx, sub)
	if err != nil {
		return toolCallResult{}, s.mapToolError(protocol.ErrorCodeStoreFailed, err)
	}
	return textResult(resp.ThankYouMessage, resp, nil), nil
}

// countAfterPhotos validates after-repair photos and returns how many there
// were. The decoded bytes go out of scope immediately.
func (s *Server) countAfterPhotos(raw interface{}) (int, *toolExecutionError) {
	if raw == nil {
		return 0, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return 0, invalidField("after_photos must be an array")
	}
	if len(list) > photo.MaxPhotos {
		return 0, &toolExecutionError{
			Code:    protocol.ErrorCodeInvalidRange,
			Message: fmt.Sprintf("after_photos must contain at most %d items", photo.MaxPhotos),
		}
	}
	for idx, item := range list {
		if _, err := photo.Normalize(item); err != nil {
			return 0, s.mapToolError(protocol.ErrorCodeInvalidField, fmt.Errorf("after_photos[%d]: %w", idx, err))
		}
	}
	return len(list), nil
}

// mapToolError classifies err against the model error taxonomy. defaultCode
// is used for anything unclassified.
func providerFailureMessage(code string) string {
	switch {
	case strings.HasSuffix(code, "_AUTH"):
		return "vision model rejected the configured credentials"
	case strings.HasSuffix(code, "_RATE_LIMIT"):
		return "vision model is rate limiting requests"
	default:
		return "vision model call failed"
	}
}

func (s *Server) mapToolError(defaultCode string, err error) *toolExecutionError {
	if err == nil {
		return nil
	}

	var providerErr *model.ProviderError
	switch {
	case errors.Is(err, model.ErrUnsupportedMediaType):
		return &toolExecutionError{Code: protocol.ErrorCodeUnsupportedMediaType, Message: err.Error()}
	case errors.Is(err, model.ErrMalformedInput):
		return &toolExecutionError{Code: protocol.ErrorCodeMalformedInput, Message: err.Error()}
	case errors.Is(err, model.ErrValidation):
		return &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}
	case errors.Is(err, model.ErrUpstreamParse):
		s.logger.Debug("upstream reply unparseable", "error", err)
		return &toolExecutionError{Code: protocol.ErrorCodeUpstreamParseFailed, Message: "vision model returned an unparseable reply"}
	case errors.As(err, &providerErr):
		// provider text can echo request details; it stays in the logs
		s.logger.Debug("provider call failed", "provider_code", providerErr.Code, "status", providerErr.StatusCode, "error", providerErr.Message)
		return &toolExecutionError{
			Code:      protocol.ErrorCodeUpstreamCallFailed,
			Message:   providerErr.Code + ": " + providerFailureMessage(providerErr.Code),
			Retryable: providerErr.Retryable,
		}
	case errors.Is(err, model.ErrUpstreamCall), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.logger.Debug("upstream call failed", "error", err)
		return &toolExecutionError{Code: protocol.ErrorCodeUpstreamCallFailed, Message: "vision model call failed", Retryable: true}
	}

	s.logger.Error("tool error", "code", defaultCode, "error", err)
	return &toolExecutionError{
		Code:      defaultCode,
		Message:   "internal server error",
		Retryable: defaultCode == protocol.ErrorCodeStoreFailed,
	}
}

func invalidField(msg string) *toolExecutionError {
	return &toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: msg}
}

func missingField(msg string) *toolExecutionError {
	return &toolExecutionError{Code: protocol.ErrorCodeMissingField, Message: msg}
}

func allowedKeys(keys ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

// requireBoundedString reads a required trimmed string whose rune count
// must fall within [lo, hi].
func requireBoundedString(args map[string]interface{}, key string, lo, hi int) (string, *toolExecutionError) {
	value, present, err := parseRequiredString(args, key)
	if err != nil {
		return "", invalidField(err.Error())
	}
	if !present {
		return "", missingField(key + " is required")
	}
	if n := utf8.RuneCountInString(value); n < lo || n > hi {
		return "", &toolExecutionError{
			Code:    protocol.ErrorCodeInvalidRange,
			Message: fmt.Sprintf("%s must be between %d and %d characters", key, lo, hi),
		}
	}
	return value, nil
}

func assertNoUnknownArguments(args map[string]interface{}, allowed map[string]struct{}) error {
	for key := range args {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("unknown argument: %s", key)
		}
	}
	return nil
}

func parseOptionalBool(args map[string]interface{}, key string, defaultValue bool) (bool, error) {
	raw, ok := args[key]
	if !ok {
		return defaultValue, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}

func parseNullableBool(args map[string]interface{}, key string) (*bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
	return &v, nil
}

func parseRequiredString(args map[string]interface{}, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("%s must be a string", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true, fmt.Errorf("%s must be a non-empty string", key)
	}
	return value, true, nil
}

func parseOptionalString(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), nil
}

func parseOptionalNumber(args map[string]interface{}, key string) (*float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", key)
		}
		v = f
	default:
		return nil, fmt.Errorf("%s must be a number", key)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be a finite number", key)
	}
	return &v, nil
}

func parseInteger(value interface{}, field string) (int, error) {
	switch v := value.(type) {
	case float64:
		if math.Trunc(v) != v {
			return 0, fmt.Errorf("%s must be an integer", field)
		}
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%s is out of range", field)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", field)
	}
}

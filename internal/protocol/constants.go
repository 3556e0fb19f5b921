package protocol

const (
	ToolNameAnalyzeIssue       = "analyze_issue"
	ToolNameGeneratePlan       = "generate_plan"
	ToolNameGenerateRepairPlan = "generate_repair_plan"
	ToolNameGenerateBOM        = "generate_bom"
	ToolNameRequestQuotes      = "request_quotes"
	ToolNameSubmitOutcome      = "submit_outcome"
)

const (
	ErrorCodeUnauthorized         = "UNAUTHORIZED"
	ErrorCodeSessionNotFound      = "SESSION_NOT_FOUND"
	ErrorCodeRateLimited          = "RATE_LIMITED"
	ErrorCodeInvalidField         = "INVALID_FIELD"
	ErrorCodeMissingField         = "MISSING_FIELD"
	ErrorCodeInvalidRange         = "INVALID_RANGE"
	ErrorCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrorCodeMalformedInput       = "MALFORMED_INPUT"
	ErrorCodeUpstreamCallFailed   = "UPSTREAM_CALL_FAILED"
	ErrorCodeUpstreamParseFailed  = "UPSTREAM_PARSE_FAILED"
	ErrorCodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrorCodeResourceUnavailable  = "RESOURCE_UNAVAILABLE"
	ErrorCodeStoreFailed          = "STORE_FAILED"
	ErrorCodeMethodNotFound       = "METHOD_NOT_FOUND"
)

const (
	ResourceDiagnosisWidget = "ui://home-repair/diagnosis/v1.html"
	ResourceStepsWidget     = "ui://home-repair/steps/v1.html"
	OutputTemplateMetaKey   = "openai/outputTemplate"
)

const (
	DefaultListenAddr = "127.0.0.1:8087"
	DefaultMCPPath    = "/mcp"

	MCPSessionHeader = "MCP-Session-Id"
)

const (
	RPCMethodInitialize               = "initialize"
	RPCMethodNotificationsInitialized = "notifications/initialized"
	RPCMethodPing                     = "ping"
	RPCMethodToolsList                = "tools/list"
	RPCMethodToolsCall                = "tools/call"
	RPCMethodResourcesList            = "resources/list"
	RPCMethodResourcesRead            = "resources/read"
)

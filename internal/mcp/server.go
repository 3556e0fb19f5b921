package mcp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"homefix/internal/config"
	"homefix/internal/diagnosis"
	"homefix/internal/logging"
	"homefix/internal/materials"
	"homefix/internal/model"
	"homefix/internal/outcome"
	"homefix/internal/plan"
	"homefix/internal/protocol"
	"homefix/internal/quotes"
	"homefix/internal/widgets"
)

const (
	serverName         = "homefix"
	serverDescription  = "Safety-gated home repair diagnosis, materials, plans, quotes and outcome feedback."
	serverInstructions = "Call analyze_issue with a description and 1-5 photos first. " +
		"Use generate_plan with the diagnosed issue_type and risk_level for step-by-step guidance. " +
		"Never encourage DIY work when diy_disabled is true."

	defaultSessionInactivityTimeout = time.Hour
	defaultSessionMaxLifetime       = 24 * time.Hour
	minSessionSweepInterval         = time.Second

	// five photos of 5 MiB each, base64 encoded, plus JSON overhead
	maxRequestBodyBytes = 40 << 20
)

// JSON-RPC error codes.
const (
	rpcCodeParseError     = -32700
	rpcCodeInvalidRequest = -32600
	rpcCodeMethodNotFound = -32601
	rpcCodeInvalidParams  = -32602
	rpcCodeServerError    = -32000
)

// Options wires the server's collaborators. Nil collaborators fall back to
// in-process defaults, except Vision which tools report as unavailable.
type Options struct {
	Config      config.Config
	Vision      model.VisionModel
	Contractors model.ContractorMatcher
	Outcomes    model.OutcomeStore
	Widgets     *widgets.Registry
	Logger      *slog.Logger
	Version     string
}

type Server struct {
	cfg     config.Config
	version string
	logger  *slog.Logger

	tools     map[string]toolDefinition
	extractor *diagnosis.Extractor
	estimator *materials.Estimator
	planner   *plan.Generator
	quotes    *quotes.Service
	outcomes  *outcome.Service
	widgets   *widgets.Registry

	limiter        *ipRateLimiter
	trustedProxies []*net.IPNet

	sessionMu sync.Mutex
	sessions  map[string]*session

	now func() time.Time
}

type session struct {
	createdAt time.Time
	lastSeen  time.Time
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *rpcErrorData `json:"data,omitempty"`
}

type rpcErrorData struct {
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

type validationError struct {
	message       string
	canonicalCode string
}

func (e validationError) Error() string { return e.message }

func NewServer(opts Options) *Server {
	logger := logging.OrDefault(opts.Logger)
	registry := opts.Widgets
	if registry == nil {
		registry = widgets.NewRegistry(opts.Config.Widgets.DistDir)
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	s := &Server{
		cfg:       opts.Config,
		version:   version,
		logger:    logger,
		extractor: diagnosis.NewExtractor(opts.Vision, logger),
		estimator: materials.NewEstimator(opts.Vision, logger),
		planner:   plan.NewGenerator(opts.Vision, logger),
		quotes:    quotes.NewService(opts.Contractors, logger),
		outcomes:  outcome.NewService(opts.Outcomes, logger),
		widgets:   registry,
		sessions:  make(map[string]*session),
		now:       time.Now,
	}
	if opts.Config.Server.Public {
		s.limiter = newIPRateLimiter(opts.Config.Server.RateLimitRPS, opts.Config.Server.RateLimitBurst)
	}
	s.trustedProxies = parseTrustedProxies(opts.Config.Server.TrustedProxies)
	s.tools = s.buildToolRegistry()
	return s
}

// Handler returns the HTTP handler serving the MCP endpoint, its manifest
// and the health probe.
func (s *Server) Handler() http.Handler {
	mcpPath := s.mcpPath()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle(mcpPath, s.guard(http.HandlerFunc(s.handleMCP)))
	mux.Handle(strings.TrimRight(mcpPath, "/")+"/manifest", s.guard(http.HandlerFunc(s.handleManifest)))
	return mux
}

// Serve blocks while handling HTTP. Cancel ctx to initiate graceful
// shutdown; in-flight requests are allowed to drain.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepLoop(sweepCtx)

	s.logger.Info("mcp server listening",
		"addr", listener.Addr().String(),
		"path", s.mcpPath(),
		"public", s.cfg.Server.Public,
		"auth", s.cfg.Server.AuthToken != "",
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) mcpPath() string {
	p := strings.TrimSpace(s.cfg.Server.MCPPath)
	if p == "" {
		return protocol.DefaultMCPPath
	}
	return p
}

// guard applies the public-mode rate limit and bearer auth.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.allow(s.clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, nil, rpcCodeServerError, "rate limit exceeded", protocol.ErrorCodeRateLimited, true)
			return
		}
		if token := strings.TrimSpace(s.cfg.Server.AuthToken); token != "" {
			got := bearerToken(r)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="homefix"`)
				writeError(w, http.StatusUnauthorized, nil, rpcCodeServerError, "missing or invalid bearer token", protocol.ErrorCodeUnauthorized, false)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tools := make([]map[string]interface{}, 0, len(toolOrder))
	for _, def := range s.orderedTools() {
		tools = append(tools, map[string]interface{}{
			"name":        def.Name,
			"title":       def.Title,
			"description": def.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":            serverName,
		"version":         s.version,
		"description":     serverDescription,
		"protocolVersion": s.cfg.Server.ProtocolVersion,
		"tools":           tools,
		"resources":       s.resourceList(),
	})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, nil, rpcCodeInvalidRequest, "method not allowed", protocol.ErrorCodeInvalidField, false)
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, nil, rpcCodeInvalidRequest, "request body too large", protocol.ErrorCodeInvalidRange, false)
			return
		}
		writeError(w, http.StatusBadRequest, nil, rpcCodeParseError, "parse error", protocol.ErrorCodeInvalidField, false)
		return
	}

	var id interface{}
	if len(req.ID) > 0 {
		id = req.ID
	}
	if req.JSONRPC != "2.0" {
		writeError(w, http.StatusBadRequest, id, rpcCodeInvalidRequest, "jsonrpc must be \"2.0\"", protocol.ErrorCodeInvalidField, false)
		return
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		writeError(w, http.StatusBadRequest, id, rpcCodeInvalidRequest, "method is required", protocol.ErrorCodeMissingField, false)
		return
	}

	if method == protocol.RPCMethodInitialize {
		s.handleInitialize(w, id)
		return
	}

	if !s.touchSession(strings.TrimSpace(r.Header.Get(protocol.MCPSessionHeader))) {
		writeError(w, http.StatusNotFound, id, rpcCodeServerError, "session not found", protocol.ErrorCodeSessionNotFound, false)
		return
	}

	// notifications carry no id and get no body
	if id == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	switch method {
	case protocol.RPCMethodPing:
		writeResult(w, http.StatusOK, id, map[string]interface{}{})
	case protocol.RPCMethodToolsList:
		s.handleToolsList(w, id)
	case protocol.RPCMethodToolsCall:
		s.handleToolsCall(r.Context(), w, req.Params, id)
	case protocol.RPCMethodResourcesList:
		writeResult(w, http.StatusOK, id, map[string]interface{}{"resources": s.resourceList()})
	case protocol.RPCMethodResourcesRead:
		s.handleResourcesRead(w, req.Params, id)
	default:
		writeError(w, http.StatusOK, id, rpcCodeMethodNotFound, "method not found: "+method, protocol.ErrorCodeMethodNotFound, false)
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, id interface{}) {
	sessionID := s.createSession()
	w.Header().Set(protocol.MCPSessionHeader, sessionID)
	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"protocolVersion": s.cfg.Server.ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{"listChanged": false},
			"resources": map[string]interface{}{"listChanged": false},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": s.version,
		},
		"instructions": serverInstructions,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.Header.Get(protocol.MCPSessionHeader))
	s.sessionMu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.sessionMu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, nil, rpcCodeServerError, "session not found", protocol.ErrorCodeSessionNotFound, false)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createSession() string {
	id := uuid.NewString()
	now := s.now()
	s.sessionMu.Lock()
	s.sessions[id] = &session{createdAt: now, lastSeen: now}
	s.sessionMu.Unlock()
	return id
}

// touchSession reports whether id names a live session and refreshes its
// inactivity window. Expired sessions are removed.
func (s *Server) touchSession(id string) bool {
	if id == "" {
		return false
	}
	inactivity, maxLifetime := s.resolveSessionTimeouts()
	now := s.now()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	if sessionExpired(sess, now, inactivity, maxLifetime) {
		delete(s.sessions, id)
		return false
	}
	sess.lastSeen = now
	return true
}

func (s *Server) sweepSessions() int {
	inactivity, maxLifetime := s.resolveSessionTimeouts()
	now := s.now()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sessionExpired(sess, now, inactivity, maxLifetime) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func sessionExpired(sess *session, now time.Time, inactivity, maxLifetime time.Duration) bool {
	if inactivity > 0 && now.Sub(sess.lastSeen) > inactivity {
		return true
	}
	return maxLifetime > 0 && now.Sub(sess.createdAt) > maxLifetime
}

// resolveSessionTimeouts treats a zero value as "no limit" unless both are
// zero, in which case the defaults apply.
func (s *Server) resolveSessionTimeouts() (time.Duration, time.Duration) {
	inactivity := s.cfg.Server.SessionInactivityTimeout
	maxLifetime := s.cfg.Server.SessionMaxLifetime
	if inactivity <= 0 && maxLifetime <= 0 {
		return defaultSessionInactivityTimeout, defaultSessionMaxLifetime
	}
	return inactivity, maxLifetime
}

func (s *Server) sessionSweepInterval() time.Duration {
	inactivity, maxLifetime := s.resolveSessionTimeouts()
	window := inactivity
	if window <= 0 || (maxLifetime > 0 && maxLifetime < window) {
		window = maxLifetime
	}
	interval := window / 2
	if interval < minSessionSweepInterval {
		interval = minSessionSweepInterval
	}
	return interval
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sessionSweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sweepSessions(); removed > 0 {
				s.logger.Debug("expired sessions removed", "count", removed)
			}
			s.limiter.cleanup(s.limiter.idleBucketAge())
		}
	}
}

func writeResult(w http.ResponseWriter, statusCode int, id interface{}, result interface{}) {
	writeResponse(w, statusCode, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func writeError(w http.ResponseWriter, statusCode int, id interface{}, code int, message, canonicalCode string, retryable bool) {
	writeResponse(w, statusCode, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &rpcError{
			Code:    code,
			Message: message,
			Data: &rpcErrorData{
				Code:      canonicalCode,
				Retryable: retryable,
			},
		},
	})
}

func writeResponse(w http.ResponseWriter, statusCode int, resp rpcResponse) {
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/domain"
	domchat "github.com/ahsan-courses/coursebot/internal/domain/chat"
	domenr "github.com/ahsan-courses/coursebot/internal/domain/enrollment"
	domlead "github.com/ahsan-courses/coursebot/internal/domain/lead"
	logpkg "github.com/ahsan-courses/coursebot/internal/logger"
	healthuc "github.com/ahsan-courses/coursebot/internal/usecase/health"
	"github.com/ahsan-courses/coursebot/internal/usecase/retrieval"
)

const (
	defaultTopK    = 3
	maxTopK        = 50
	maxRequestBody = 1 << 20
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to Ahsan Courses AI Chatbot API"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the chatbot HTTP API.
type Server struct {
	chat          ChatService
	leads         LeadService
	enrollments   EnrollmentService
	kb            KnowledgeBase
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat ChatService,
	leads LeadService,
	enrollments EnrollmentService,
	kb KnowledgeBase,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:        chat,
		leads:       leads,
		enrollments: enrollments,
		kb:          kb,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidCourse, http.StatusBadRequest, ErrorResponseCodeInvalidCourse),
		sentinelHandler(domain.ErrAlreadyEnrolled, http.StatusConflict, ErrorResponseCodeAlreadyEnrolled),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, ErrorResponseCodeLLMProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrIndexUnavailable,
			http.StatusServiceUnavailable, ErrorResponseCodeKnowledgeUnavailable),
		sentinelHandler(domain.ErrEmptyCorpus,
			http.StatusServiceUnavailable, ErrorResponseCodeKnowledgeUnavailable),
	}
	return s
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: WelcomeMessage})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// KBStatus handles GET /kb/status.
func (s *Server) KBStatus(w http.ResponseWriter, r *http.Request) {
	s.kb.EnsureLoaded(r.Context())
	writeJSON(w, http.StatusOK, kbStatusToDTO(s.kb.Status()))
}

// KBSearch handles POST /kb/search.
func (s *Server) KBSearch(w http.ResponseWriter, r *http.Request) {
	var req KBSearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "query is required")
		return
	}
	topK := defaultTopK
	if req.TopK != nil {
		if *req.TopK <= 0 || *req.TopK > maxTopK {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				fmt.Sprintf("top_k must be between 1 and %d", maxTopK))
			return
		}
		topK = *req.TopK
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	docs, err := s.kb.Query(ctx, query, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, KBSearchResponse{Documents: docs})
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	reply, err := s.chat.Reply(ctx, req.SessionID, req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, chatReplyToDTO(reply))
}

// History handles GET /history/{session_id}.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	err := runtime.BindStyledParameterWithOptions("simple", "session_id", gochi.URLParam(r, "session_id"),
		&sessionID, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid session_id: "+err.Error())
		return
	}

	limit, ok := bindLimit(w, r)
	if !ok {
		return
	}

	exchanges, err := s.chat.History(r.Context(), sessionID, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]HistoryItem, len(exchanges))
	for i := range exchanges {
		items[i] = exchangeToDTO(&exchanges[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// CaptureLead handles POST /lead.
func (s *Server) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var req LeadRequest
	if !s.decode(w, r, &req) {
		return
	}

	l, err := s.leads.Capture(r.Context(), req.Name, req.Email, req.Phone, req.Interest)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, leadToDTO(&l))
}

// Enroll handles POST /enroll.
func (s *Server) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if !s.decode(w, r, &req) {
		return
	}

	e, err := s.enrollments.Enroll(r.Context(), req.Username, req.Email, req.Phone, req.Address, req.Course)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrollmentToDTO(&e))
}

// ListLeads handles GET /admin/leads.
func (s *Server) ListLeads(w http.ResponseWriter, r *http.Request) {
	limit, ok := bindLimit(w, r)
	if !ok {
		return
	}

	leads, err := s.leads.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]LeadResponse, len(leads))
	for i := range leads {
		items[i] = leadToDTO(&leads[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// ListEnrollments handles GET /admin/enrollments.
func (s *Server) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	limit, ok := bindLimit(w, r)
	if !ok {
		return
	}

	enrollments, err := s.enrollments.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		items[i] = enrollmentToDTO(&enrollments[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// RebuildKB handles POST /admin/kb/rebuild. The rebuild runs synchronously.
func (s *Server) RebuildKB(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	if err := s.kb.Rebuild(ctx); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, kbStatusToDTO(s.kb.Status()))
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindLimit binds the optional ?limit= query parameter. 0 means "service default".
func bindLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid limit: "+err.Error())
		return 0, false
	}
	if limit == nil {
		return 0, true
	}
	if *limit <= 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "limit must be positive")
		return 0, false
	}
	return *limit, true
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if usage == nil {
		return
	}
	if usage.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.Generated {
		w.Header().Set("X-LLM-Tokens", strconv.Itoa(usage.LLMTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientSentinels may be shown to clients. Detail after a client-input sentinel is
// written by the domain layer and safe to echo.
var clientSentinels = []struct {
	err        error
	withDetail bool
}{
	{domain.ErrValidation, true},
	{domain.ErrInvalidCourse, true},
	{domain.ErrAlreadyEnrolled, false},
	{domain.ErrNotFound, false},
	{domain.ErrLLMProviderError, false},
	{domain.ErrEmbeddingProviderError, false},
	{domain.ErrIndexUnavailable, false},
	{domain.ErrEmptyCorpus, false},
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientSentinels {
		if !errors.Is(err, s.err) {
			continue
		}
		if s.withDetail {
			msg := err.Error()
			if i := strings.Index(msg, s.err.Error()); i >= 0 {
				return msg[i:]
			}
		}
		return s.err.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func kbStatusToDTO(st retrieval.Status) KBStatusResponse {
	resp := KBStatusResponse{
		Loaded:    st.Loaded,
		Documents: st.Documents,
		Dimension: st.Dimension,
		Source:    st.Source,
	}
	if !st.BuiltAt.IsZero() {
		t := st.BuiltAt.UTC()
		resp.BuiltAt = &t
	}
	return resp
}

func chatReplyToDTO(r domchat.Reply) ChatResponse {
	sources := r.Sources
	if sources == nil {
		sources = []string{}
	}
	contextUsed := r.Context
	if contextUsed == nil {
		contextUsed = []string{}
	}
	return ChatResponse{
		SessionID:   r.SessionID,
		Reply:       r.Text,
		Sources:     sources,
		ContextUsed: contextUsed,
	}
}

func exchangeToDTO(e *domchat.Exchange) HistoryItem {
	return HistoryItem{
		ID:          e.ID(),
		SessionID:   e.SessionID(),
		UserMessage: e.UserMessage(),
		BotReply:    e.BotReply(),
		CreatedAt:   e.CreatedAt().UTC(),
	}
}

func leadToDTO(l *domlead.Lead) LeadResponse {
	var phone *string
	if l.Phone() != "" {
		p := l.Phone()
		phone = &p
	}
	return LeadResponse{
		ID:        l.ID(),
		Name:      l.Name(),
		Email:     l.Email(),
		Phone:     phone,
		Interest:  l.Interest(),
		CreatedAt: l.CreatedAt().UTC(),
	}
}

func enrollmentToDTO(e *domenr.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:        e.ID(),
		Username:  e.Username(),
		Email:     e.Email(),
		Phone:     e.Phone(),
		Address:   e.Address(),
		Course:    e.Course(),
		CreatedAt: e.CreatedAt().UTC(),
	}
}

package chi

import "time"

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest             ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed       ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInvalidCourse          ErrorResponseCode = "invalid_course"
	ErrorResponseCodeAlreadyEnrolled        ErrorResponseCode = "already_enrolled"
	ErrorResponseCodeNotFound               ErrorResponseCode = "not_found"
	ErrorResponseCodeMethodNotAllowed       ErrorResponseCode = "method_not_allowed"
	ErrorResponseCodeUnauthorized           ErrorResponseCode = "unauthorized"
	ErrorResponseCodeLLMProviderError       ErrorResponseCode = "llm_provider_error"
	ErrorResponseCodeEmbeddingProviderError ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeKnowledgeUnavailable   ErrorResponseCode = "knowledge_base_unavailable"
	ErrorResponseCodeInternalError          ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// MessageResponse carries a plain informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports aggregated component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// KBStatusResponse describes the served knowledge base.
type KBStatusResponse struct {
	Loaded    bool       `json:"loaded"`
	Documents int        `json:"documents"`
	Dimension int        `json:"dimension"`
	Source    string     `json:"source,omitempty"`
	BuiltAt   *time.Time `json:"built_at,omitempty"`
}

// KBSearchRequest is the body of POST /kb/search.
type KBSearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// KBSearchResponse lists matching documents, nearest first.
type KBSearchResponse struct {
	Documents []string `json:"documents"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant's answer with the material it was grounded on.
type ChatResponse struct {
	SessionID   string   `json:"session_id"`
	Reply       string   `json:"reply"`
	Sources     []string `json:"sources"`
	ContextUsed []string `json:"context_used"`
}

// HistoryItem is one stored exchange.
type HistoryItem struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeadRequest is the body of POST /lead.
type LeadRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Interest string `json:"interest,omitempty"`
}

// LeadResponse is a stored lead.
type LeadResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Interest  string    `json:"interest"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrollRequest is the body of POST /enroll.
type EnrollRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Course   string `json:"course"`
}

// EnrollmentResponse is a stored enrollment.
type EnrollmentResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

package api

import "time"

// CreateSessionResponse is returned by POST /session.
type CreateSessionResponse struct {
	SessionID  string         `json:"session_id"`
	Profile    string         `json:"profile"`
	Settings   map[string]any `json:"settings"`
	Provider   string         `json:"provider"`
	PortalURL  string         `json:"portal_url"`
	NextTools  []string       `json:"next_tools"`
}

// SessionResponse is returned by GET /sessions/{id} and as an element of
// GET /sessions.
type SessionResponse struct {
	ID              string         `json:"id"`
	ProfileName     string         `json:"profile"`
	Status          string         `json:"status"`
	NextTools       []string       `json:"next_tools"`
	LastBranch      string         `json:"branch,omitempty"`
	BudgetCallsUsed int            `json:"budget_calls_used"`
	BudgetCallsMax  int            `json:"budget_calls_max"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SettingsResponse is returned by PUT /session/{id}/settings.
type SettingsResponse struct {
	SessionID string         `json:"session_id"`
	Settings  map[string]any `json:"settings"`
}

// EventResponse is one entry of GET /session/{id}/events.
type EventResponse struct {
	SequenceNumber int64          `json:"sequence_number"`
	ToolName       string         `json:"tool_name"`
	StatusCode     string         `json:"status_code"`
	Payload        map[string]any `json:"payload"`
	CreatedAt      time.Time      `json:"created_at"`
}

// EventsResponse wraps a page of pipeline events.
type EventsResponse struct {
	Events []EventResponse `json:"events"`
}

// ErrorResponse is the body of a transport/auth error (HTTP 401/403/429).
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// PipelineConflictResponse is the body of a 409 pipeline ordering error.
type PipelineConflictResponse struct {
	Message      string   `json:"message"`
	ExpectedNext []string `json:"expected_next"`
}

// HealthResponse is returned by GET /health/live.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is returned by GET /health/ready.
type ReadyResponse struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"open_connections,omitempty"`
}

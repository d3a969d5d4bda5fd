package models

import (
	"github.com/cortexai/roster/internal/dispatch"
	"github.com/cortexai/roster/internal/store"
	"github.com/cortexai/roster/internal/tools"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// TurnResponse is returned by POST /api/v1/turns
type TurnResponse struct {
	Status     string             `json:"status"`
	SessionID  string             `json:"session_id"`
	Answer     string             `json:"answer"`
	ToolsUsed  []string           `json:"tools_used"`
	Outcomes   []dispatch.Outcome `json:"outcomes"`
	Iterations int                `json:"iterations"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// ToolInfo describes one catalog entry
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  []tools.Parameter      `json:"parameters"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// ToolsResponse is returned by GET /api/v1/tools
type ToolsResponse struct {
	Status string     `json:"status"`
	Tools  []ToolInfo `json:"tools"`
}

// ToolCallResponse is returned by POST /api/v1/tools/{name}
type ToolCallResponse struct {
	Status  string           `json:"status"`
	Outcome dispatch.Outcome `json:"outcome"`
}

// PeopleResponse is returned by GET /api/v1/people
type PeopleResponse struct {
	Status string             `json:"status"`
	Count  int                `json:"count"`
	People []store.PersonView `json:"people"`
}

// PersonResponse is returned by GET /api/v1/people/{name}
type PersonResponse struct {
	Status string           `json:"status"`
	Person store.PersonView `json:"person"`
}

// SessionResponse is returned by GET and DELETE /api/v1/session. Store is
// only filled by GET.
type SessionResponse struct {
	Status    string         `json:"status"`
	SessionID string         `json:"session_id"`
	People    int            `json:"people"`
	Seeded    bool           `json:"seeded"`
	Messages  int            `json:"messages"`
	Store     map[string]any `json:"store,omitempty"`
}

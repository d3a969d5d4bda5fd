package security

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs security-relevant events with hashed payloads. Raw
// prompts and tool arguments never reach the log.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// ToolCallAudit describes one dispatched tool call.
type ToolCallAudit struct {
	SessionID string
	CallID    string
	Tool      string
	Arguments string
	Status    string
	Failure   string
	Duration  time.Duration
}

// LogToolCall records a tool dispatch event
func (a *AuditLogger) LogToolCall(e ToolCallAudit) {
	if a == nil || !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "tool_audit").
		Str("session_id", e.SessionID).
		Str("call_id", e.CallID).
		Str("tool", e.Tool).
		Str("args_hash", shortHash(e.Arguments)).
		Str("status", e.Status).
		Int64("duration_ms", e.Duration.Milliseconds())

	if e.Failure != "" {
		evt = evt.Str("failure", e.Failure)
	}
	evt.Msg("tool audit")
}

// LogTurn records a completed or failed conversation turn
func (a *AuditLogger) LogTurn(
	sessionID, prompt string,
	toolsUsed []string,
	validationPassed bool,
	piiDetected bool,
	executionTimeMs int64,
	errMsg string,
) {
	if a == nil || !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "turn_audit").
		Str("session_id", sessionID).
		Str("prompt_hash", shortHash(prompt)).
		Strs("tools_used", toolsUsed).
		Bool("validation_passed", validationPassed).
		Bool("pii_detected", piiDetected).
		Int64("execution_time_ms", executionTimeMs)

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("turn audit")
}

func shortHash(s string) string {
	if s == "" {
		return ""
	}
	return hashStr(s)[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}

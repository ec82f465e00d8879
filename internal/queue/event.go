// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer for them.
package queue

// DivinationCompletedEvent is published after a generation's write unit
// commits. It contains enough information for downstream consumers to log
// and to maintain template usage statistics without querying the primary
// database.
type DivinationCompletedEvent struct {
	DivinationID   uint64  `json:"divination_id"`
	UserID         *uint64 `json:"user_id,omitempty"`
	SessionID      *string `json:"session_id,omitempty"`
	TemplateID     *uint64 `json:"template_id,omitempty"`
	DivinationType string  `json:"divination_type"`
	Language       string  `json:"language"`
	Model          string  `json:"model"`
	Success        bool    `json:"success"`
	TokenCount     int     `json:"token_count"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	CreatedAt      string  `json:"created_at"`
}

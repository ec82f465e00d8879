package model

import "time"

// Divination is one persisted question/answer generation result, mirroring
// the `divinations` table.  Exactly one of UserID and SessionID identifies
// the owning actor for quota purposes; both may be stored for audit.  Rows
// are immutable once created.
type Divination struct {
	ID             uint64    // divinations.id
	UserID         *uint64   // divinations.user_id (nullable)
	SessionID      *string   // divinations.session_id (nullable)
	Question       string    // divinations.question
	Answer         string    // divinations.answer
	DivinationType string    // divinations.divination_type (e.g. "tarot")
	ModelUsed      string    // divinations.model_used
	Language       string    // divinations.language (e.g. "zh-CN", "en")
	UserIP         *string   // divinations.user_ip (nullable)
	UserAgent      *string   // divinations.user_agent (nullable)
	CreatedAt      time.Time // divinations.created_at
}

// UsageLog is one append-only request audit row in the `usage_logs` table.
// It is written in the same transaction as the divination it accounts for
// and is never read by the serving path.
type UsageLog struct {
	ID         uint64    // usage_logs.id
	UserID     *uint64   // usage_logs.user_id (nullable)
	SessionID  *string   // usage_logs.session_id (nullable)
	Endpoint   string    // usage_logs.endpoint
	Method     string    // usage_logs.method
	StatusCode int       // usage_logs.status_code
	UserIP     *string   // usage_logs.user_ip (nullable)
	UserAgent  *string   // usage_logs.user_agent (nullable)
	CreatedAt  time.Time // usage_logs.created_at
}

// DailyCount is an aggregate row produced by the daily statistics query:
// the number of divinations created on a given date.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

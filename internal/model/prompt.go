package model

import "time"

// PromptTemplate mirrors the `prompt_templates` table: a stored
// (system prompt, user-message template, generation parameters) tuple keyed
// by divination type and language.  The user template contains a single
// literal `{question}` placeholder that is substituted verbatim at
// generation time.
//
// UsageCount and SuccessRate are maintained asynchronously by the event
// consumer; AvgRating has writable schema but no write path until a rating
// endpoint exists.
type PromptTemplate struct {
	ID              uint64    // prompt_templates.id
	Name            string    // prompt_templates.name
	Description     *string   // prompt_templates.description (nullable)
	DivinationType  string    // prompt_templates.divination_type
	Language        string    // prompt_templates.language
	SystemPrompt    string    // prompt_templates.system_prompt
	UserTemplate    string    // prompt_templates.user_template
	Version         string    // prompt_templates.version
	Temperature     float64   // prompt_templates.temperature
	MaxTokens       int       // prompt_templates.max_tokens
	ModelPreference *string   // prompt_templates.model_preference (nullable)
	IsActive        bool      // prompt_templates.is_active
	IsDefault       bool      // prompt_templates.is_default
	UsageCount      int       // prompt_templates.usage_count
	SuccessRate     float64   // prompt_templates.success_rate
	AvgRating       float64   // prompt_templates.avg_rating
	CreatedBy       *string   // prompt_templates.created_by (nullable)
	Tags            *string   // prompt_templates.tags (nullable)
	CreatedAt       time.Time // prompt_templates.created_at
	UpdatedAt       time.Time // prompt_templates.updated_at
}

// TemplateUsage is one append-only row in the `template_usage_history`
// table: the rendered prompts and upstream call metadata for a single
// generation attempt.  UserRating is writable schema without a write path,
// matching the rating gap on PromptTemplate.
type TemplateUsage struct {
	ID             uint64    // template_usage_history.id
	TemplateID     *uint64   // template_usage_history.template_id (null for the builtin fallback)
	DivinationID   uint64    // template_usage_history.divination_id
	SystemPrompt   string    // template_usage_history.system_prompt (as sent)
	RenderedPrompt string    // template_usage_history.rendered_prompt (as sent)
	ResponseTimeMs int64     // template_usage_history.response_time_ms
	TokenCount     int       // template_usage_history.token_count
	Success        bool      // template_usage_history.success
	ErrorMessage   *string   // template_usage_history.error_message (nullable)
	UserRating     *int      // template_usage_history.user_rating (nullable, inert)
	CreatedAt      time.Time // template_usage_history.created_at
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/model"
	"github.com/fatewave/fatewave-api/internal/repository"
	"github.com/fatewave/fatewave-api/internal/utils"
)

// TemplateHandler exposes read-only access to stored prompt templates.
// The list view omits prompt bodies; the detail view includes them.
type TemplateHandler struct {
	Templates *repository.TemplateRepo
}

func NewTemplateHandler(t *repository.TemplateRepo) *TemplateHandler {
	return &TemplateHandler{Templates: t}
}

type templateSummary struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	DivinationType string  `json:"divination_type"`
	Language       string  `json:"language"`
	Version        string  `json:"version"`
	IsActive       bool    `json:"is_active"`
	IsDefault      bool    `json:"is_default"`
	UsageCount     int     `json:"usage_count"`
	SuccessRate    float64 `json:"success_rate"`
	AvgRating      float64 `json:"avg_rating"`
	UpdatedAt      string  `json:"updated_at"`
}

type templateDetail struct {
	templateSummary
	SystemPrompt    string  `json:"system_prompt"`
	UserTemplate    string  `json:"user_template"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
	ModelPreference *string `json:"model_preference,omitempty"`
	Tags            *string `json:"tags,omitempty"`
	CreatedBy       *string `json:"created_by,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func summaryOf(t model.PromptTemplate) templateSummary {
	return templateSummary{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		DivinationType: t.DivinationType,
		Language:       t.Language,
		Version:        t.Version,
		IsActive:       t.IsActive,
		IsDefault:      t.IsDefault,
		UsageCount:     t.UsageCount,
		SuccessRate:    t.SuccessRate,
		AvgRating:      t.AvgRating,
		UpdatedAt:      t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// List returns template summaries, filterable by divination_type, language
// and is_active. Without an explicit is_active filter only active templates
// are listed.
func (h *TemplateHandler) List(c echo.Context) error {
	active := true
	activeOnly := &active
	if raw := c.QueryParam("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "is_active must be a boolean")
		}
		activeOnly = &v
	}

	items, err := h.Templates.List(c.Request().Context(),
		c.QueryParam("divination_type"), c.QueryParam("language"), activeOnly)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "template lookup failed")
	}

	out := make([]templateSummary, 0, len(items))
	for _, t := range items {
		out = append(out, summaryOf(t))
	}
	return utils.OK(c, "ok", map[string]interface{}{
		"templates": out,
		"total":     len(out),
	})
}

// GetByID returns one template with its prompt bodies.
func (h *TemplateHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid template id")
	}

	t, err := h.Templates.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return utils.Fail(c, http.StatusNotFound, "NOT_FOUND", "template not found")
		}
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "template lookup failed")
	}

	d := templateDetail{
		templateSummary: summaryOf(*t),
		SystemPrompt:    t.SystemPrompt,
		UserTemplate:    t.UserTemplate,
		Temperature:     t.Temperature,
		MaxTokens:       t.MaxTokens,
		ModelPreference: t.ModelPreference,
		Tags:            t.Tags,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
	}
	return utils.OK(c, "ok", d)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/middleware"
	"github.com/fatewave/fatewave-api/internal/model"
	"github.com/fatewave/fatewave-api/internal/repository"
	"github.com/fatewave/fatewave-api/internal/service"
	"github.com/fatewave/fatewave-api/internal/utils"
)

// DivinationHandler exposes the generation pipeline and its read endpoints.
// All endpoints sit behind OptionalAuth: a bearer resolves to a user id,
// otherwise the client-supplied session id is the identity.
type DivinationHandler struct {
	Svc *service.DivinationService
}

func NewDivinationHandler(svc *service.DivinationService) *DivinationHandler {
	return &DivinationHandler{Svc: svc}
}

type createDivinationReq struct {
	Question       string `json:"question" validate:"required,min=1,max=1000"`
	DivinationType string `json:"divination_type" validate:"omitempty,max=50"`
	Language       string `json:"language" validate:"omitempty,max=10"`
	SessionID      string `json:"session_id" validate:"omitempty,max=64"`
}

type divinationView struct {
	ID             uint64  `json:"id"`
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	DivinationType string  `json:"divination_type"`
	Language       string  `json:"language"`
	ModelUsed      string  `json:"model_used"`
	SessionID      *string `json:"session_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func viewOf(d model.Divination) divinationView {
	return divinationView{
		ID:             d.ID,
		Question:       d.Question,
		Answer:         d.Answer,
		DivinationType: d.DivinationType,
		Language:       d.Language,
		ModelUsed:      d.ModelUsed,
		SessionID:      d.SessionID,
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// actorOf builds the accounting identity for a request: the authenticated
// user id when OptionalAuth resolved one, else the session id from body,
// query or header.
func actorOf(c echo.Context, bodySessionID string) service.Actor {
	if v, ok := c.Get(middleware.CtxUserID).(uint64); ok && v > 0 {
		return service.Actor{UserID: &v}
	}
	sid := bodySessionID
	if sid == "" {
		sid = c.QueryParam("session_id")
	}
	if sid == "" {
		sid = c.Request().Header.Get("X-Session-ID")
	}
	return service.Actor{SessionID: sid}
}

// Create runs one generation. Anonymous clients without a session id get
// one minted here so the caller can keep using it; the id rides back in
// the response. Quota accounting accepts the id from the body, but the rate
// limiter keys off the X-Session-ID header (it cannot read the body), so
// anonymous clients should send both or they share a per-IP bucket.
func (h *DivinationHandler) Create(c echo.Context) error {
	var req createDivinationReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return utils.FailWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "question is required (max 1000 chars)", err.Error())
	}

	actor := actorOf(c, req.SessionID)
	if actor.UserID == nil && actor.SessionID == "" {
		actor.SessionID = uuid.NewString()
	}

	rec, err := h.Svc.Create(c.Request().Context(), service.CreateInput{
		Actor:          actor,
		Question:       req.Question,
		DivinationType: req.DivinationType,
		Language:       req.Language,
		UserIP:         c.RealIP(),
		UserAgent:      c.Request().UserAgent(),
	})
	if err != nil {
		if err == repository.ErrQuotaExceeded {
			return utils.Fail(c, http.StatusBadRequest, "QUOTA_EXCEEDED", "free usage limit reached")
		}
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "divination failed")
	}
	return utils.OK(c, "divination completed", viewOf(*rec))
}

// Usage reports remaining free generations for the caller's identity.
func (h *DivinationHandler) Usage(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context(), actorOf(c, ""))
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "usage lookup failed")
	}
	return utils.OK(c, "ok", st)
}

// History returns the caller's records, newest first, paginated.
func (h *DivinationHandler) History(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	pg, err := h.Svc.History(c.Request().Context(), actorOf(c, ""), page, size)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "history lookup failed")
	}

	views := make([]divinationView, 0, len(pg.Divinations))
	for _, d := range pg.Divinations {
		views = append(views, viewOf(d))
	}
	return utils.OK(c, "ok", map[string]interface{}{
		"divinations": views,
		"total":       pg.Total,
		"page":        pg.Page,
		"size":        pg.Size,
		"has_next":    pg.HasNext,
	})
}

// DailyStats returns per-day generation counts over the trailing N days.
func (h *DivinationHandler) DailyStats(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	counts, err := h.Svc.DailyStats(c.Request().Context(), days)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "stats lookup failed")
	}
	return utils.OK(c, "ok", map[string]interface{}{"daily": counts})
}

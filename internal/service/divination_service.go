package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/fatewave/fatewave-api/internal/llm"
	"github.com/fatewave/fatewave-api/internal/model"
	"github.com/fatewave/fatewave-api/internal/queue"
	"github.com/fatewave/fatewave-api/internal/repository"
)

// Actor identifies who a request is accounted against: a registered user by
// id or an anonymous session by opaque string. Exactly one of the two is
// the quota basis; a request with neither is denied.
type Actor struct {
	UserID    *uint64
	SessionID string
}

// unlimitedRemaining is the sentinel returned for premium users.
const unlimitedRemaining = -1

// Interfaces over the persistence and generation dependencies. The service
// is constructed once at process start and handed to the HTTP layer; tests
// substitute in-memory fakes.
type userStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

type recordStore interface {
	SaveDivination(ctx context.Context, rec *model.Divination, entry *model.UsageLog, usage *model.TemplateUsage, freeLimit int) error
	CountBySession(ctx context.Context, sessionID string) (int, error)
	ListByActor(ctx context.Context, userID *uint64, sessionID string, page, size int) ([]model.Divination, int, error)
	DailyStats(ctx context.Context, days int) ([]model.DailyCount, error)
}

type generator interface {
	Generate(ctx context.Context, req llm.Request) (string, llm.Meta)
}

type templateResolver interface {
	Resolve(ctx context.Context, divinationType, language string) TemplateContent
}

// DivinationService is the single entry point tying usage accounting,
// template resolution and the generation client together around the
// persistence write.
type DivinationService struct {
	users        userStore
	store        recordStore
	gen          generator
	resolver     templateResolver
	freeLimit    int
	defaultModel string

	// publish sends the post-commit event; nil disables publishing.
	publish func(ctx context.Context, ev queue.DivinationCompletedEvent) error
}

func NewDivinationService(users userStore, store recordStore, gen generator, resolver templateResolver, freeLimit int, defaultModel string) *DivinationService {
	return &DivinationService{
		users:        users,
		store:        store,
		gen:          gen,
		resolver:     resolver,
		freeLimit:    freeLimit,
		defaultModel: defaultModel,
		publish:      queue.PublishDivinationCompleted,
	}
}

// CheckQuota computes whether an actor may generate and how many free
// generations remain. Premium users are always allowed with the -1
// sentinel. An unknown user id and an absent identity both deny.
func (s *DivinationService) CheckQuota(ctx context.Context, actor Actor) (bool, int, error) {
	switch {
	case actor.UserID != nil:
		u, err := s.users.GetByID(ctx, *actor.UserID)
		if err == sql.ErrNoRows {
			return false, 0, nil
		}
		if err != nil {
			return false, 0, err
		}
		if u.IsPremium {
			return true, unlimitedRemaining, nil
		}
		remaining := s.freeLimit - u.UsageCount
		if remaining < 0 {
			remaining = 0
		}
		return remaining > 0, remaining, nil

	case actor.SessionID != "":
		n, err := s.store.CountBySession(ctx, actor.SessionID)
		if err != nil {
			return false, 0, err
		}
		remaining := s.freeLimit - n
		if remaining < 0 {
			remaining = 0
		}
		return remaining > 0, remaining, nil
	}
	return false, 0, nil
}

// UsageStats mirrors CheckQuota without the gating decision, for the
// read-only usage endpoint.
type UsageStats struct {
	UserID         *uint64 `json:"user_id,omitempty"`
	SessionID      string  `json:"session_id,omitempty"`
	UsageCount     int     `json:"usage_count"`
	RemainingCount int     `json:"remaining_count"`
	IsPremium      bool    `json:"is_premium"`
}

// Stats reports an actor's consumption. Unknown or absent identities report
// zeros rather than an error.
func (s *DivinationService) Stats(ctx context.Context, actor Actor) (UsageStats, error) {
	switch {
	case actor.UserID != nil:
		u, err := s.users.GetByID(ctx, *actor.UserID)
		if err == sql.ErrNoRows {
			return UsageStats{}, nil
		}
		if err != nil {
			return UsageStats{}, err
		}
		st := UsageStats{UserID: actor.UserID, UsageCount: u.UsageCount, IsPremium: u.IsPremium}
		if u.IsPremium {
			st.RemainingCount = unlimitedRemaining
		} else if st.RemainingCount = s.freeLimit - u.UsageCount; st.RemainingCount < 0 {
			st.RemainingCount = 0
		}
		return st, nil

	case actor.SessionID != "":
		n, err := s.store.CountBySession(ctx, actor.SessionID)
		if err != nil {
			return UsageStats{}, err
		}
		st := UsageStats{SessionID: actor.SessionID, UsageCount: n}
		if st.RemainingCount = s.freeLimit - n; st.RemainingCount < 0 {
			st.RemainingCount = 0
		}
		return st, nil
	}
	return UsageStats{}, nil
}

// CreateInput carries one generation request into the orchestrator.
type CreateInput struct {
	Actor          Actor
	Question       string
	DivinationType string // defaults to "tarot"
	Language       string // defaults to "zh-CN"
	UserIP         string
	UserAgent      string
}

// Create runs the full pipeline: quota gate, template resolution, upstream
// generation with the canned-answer fallback, and the atomic write unit
// (record + counter + audit rows). repository.ErrQuotaExceeded is returned
// with no side effects when the actor is out of free generations; any
// persistence failure rolls the whole unit back.
func (s *DivinationService) Create(ctx context.Context, in CreateInput) (*model.Divination, error) {
	if in.DivinationType == "" {
		in.DivinationType = "tarot"
	}
	if in.Language == "" {
		in.Language = "zh-CN"
	}

	allowed, _, err := s.CheckQuota(ctx, in.Actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, repository.ErrQuotaExceeded
	}

	tc := s.resolver.Resolve(ctx, in.DivinationType, in.Language)
	modelID := tc.ModelPreference
	if modelID == "" {
		modelID = s.defaultModel
	}

	answer, meta := s.gen.Generate(ctx, llm.Request{
		SystemPrompt: tc.SystemPrompt,
		UserTemplate: tc.UserTemplate,
		Question:     in.Question,
		Model:        modelID,
		Temperature:  tc.Temperature,
		MaxTokens:    tc.MaxTokens,
	})
	if !meta.Success {
		// The user always receives some answer text even when the upstream
		// model is unreachable.
		answer = fallbackAnswer(in.Language)
	}

	rec := &model.Divination{
		UserID:         in.Actor.UserID,
		Question:       in.Question,
		Answer:         answer,
		DivinationType: in.DivinationType,
		ModelUsed:      modelID,
		Language:       in.Language,
	}
	if in.Actor.UserID == nil && in.Actor.SessionID != "" {
		sid := in.Actor.SessionID
		rec.SessionID = &sid
	}
	if in.UserIP != "" {
		ip := in.UserIP
		rec.UserIP = &ip
	}
	if in.UserAgent != "" {
		ua := in.UserAgent
		rec.UserAgent = &ua
	}

	entry := &model.UsageLog{
		Endpoint:   "/v1/divinations",
		Method:     "POST",
		StatusCode: 200,
		UserIP:     rec.UserIP,
		UserAgent:  rec.UserAgent,
	}
	usage := &model.TemplateUsage{
		TemplateID:     tc.TemplateID,
		SystemPrompt:   tc.SystemPrompt,
		RenderedPrompt: llm.RenderUserPrompt(tc.UserTemplate, in.Question),
		ResponseTimeMs: meta.ResponseTimeMs,
		TokenCount:     meta.TokenCount,
		Success:        meta.Success,
	}
	if meta.ErrorMessage != "" {
		msg := meta.ErrorMessage
		usage.ErrorMessage = &msg
	}

	if err := s.store.SaveDivination(ctx, rec, entry, usage, s.freeLimit); err != nil {
		return nil, err
	}

	if s.publish != nil {
		ev := queue.DivinationCompletedEvent{
			DivinationID:   rec.ID,
			UserID:         rec.UserID,
			SessionID:      rec.SessionID,
			TemplateID:     tc.TemplateID,
			DivinationType: rec.DivinationType,
			Language:       rec.Language,
			Model:          rec.ModelUsed,
			Success:        meta.Success,
			TokenCount:     meta.TokenCount,
			ResponseTimeMs: meta.ResponseTimeMs,
			CreatedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		// Fire and forget: the commit already happened and event delivery is
		// best effort.
		go func() { _ = s.publish(context.Background(), ev) }()
	}
	return rec, nil
}

// HistoryPage is one page of an actor's records.
type HistoryPage struct {
	Divinations []model.Divination `json:"divinations"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	Size        int                `json:"size"`
	HasNext     bool               `json:"has_next"`
}

// History returns paginated records for an actor, newest first. page is
// floored at 1 and size clamped to 1..100 with a default of 10.
func (s *DivinationService) History(ctx context.Context, actor Actor, page, size int) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	out := HistoryPage{Page: page, Size: size}
	if actor.UserID == nil && actor.SessionID == "" {
		return out, nil
	}
	items, total, err := s.store.ListByActor(ctx, actor.UserID, actor.SessionID, page, size)
	if err != nil {
		return HistoryPage{}, err
	}
	out.Divinations = items
	out.Total = total
	out.HasNext = total > page*size
	return out, nil
}

// DailyStats returns per-day generation counts over the trailing N days
// (default 7, capped at 90).
func (s *DivinationService) DailyStats(ctx context.Context, days int) ([]model.DailyCount, error) {
	if days < 1 {
		days = 7
	}
	if days > 90 {
		days = 90
	}
	return s.store.DailyStats(ctx, days)
}

// SetPublisher overrides the post-commit event hook. Passing nil disables
// publishing; tests use this to capture events synchronously.
func (s *DivinationService) SetPublisher(fn func(ctx context.Context, ev queue.DivinationCompletedEvent) error) {
	s.publish = fn
}

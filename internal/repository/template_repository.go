package repository

import (
	"context"
	"database/sql"

	"github.com/fatewave/fatewave-api/internal/model"
)

// TemplateRepo provides lookups over stored prompt templates and the
// append-only template usage history.
type TemplateRepo struct{ DB *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{DB: db} }

const templateColumns = `id,name,description,divination_type,language,system_prompt,user_template,
	version,temperature,max_tokens,model_preference,is_active,is_default,
	usage_count,success_rate,avg_rating,created_by,tags,created_at,updated_at`

// FindActive returns the active template for an exact (type, language) pair.
// When several match, the one flagged default wins, then the most recently
// updated. ErrNotFound signals the caller to continue its fallback chain.
func (r *TemplateRepo) FindActive(ctx context.Context, divinationType, language string) (*model.PromptTemplate, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+templateColumns+` FROM prompt_templates
		 WHERE divination_type=? AND language=? AND is_active=1
		 ORDER BY is_default DESC, updated_at DESC LIMIT 1`,
		divinationType, language)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID returns one template or ErrNotFound.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*model.PromptTemplate, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+templateColumns+" FROM prompt_templates WHERE id=? LIMIT 1", id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns templates ordered by type then language. Empty filter values
// are ignored; activeOnly nil means both active and inactive.
func (r *TemplateRepo) List(ctx context.Context, divinationType, language string, activeOnly *bool) ([]model.PromptTemplate, error) {
	q := "SELECT " + templateColumns + " FROM prompt_templates WHERE 1=1"
	var args []interface{}
	if divinationType != "" {
		q += " AND divination_type=?"
		args = append(args, divinationType)
	}
	if language != "" {
		q += " AND language=?"
		args = append(args, language)
	}
	if activeOnly != nil {
		q += " AND is_active=?"
		args = append(args, *activeOnly)
	}
	q += " ORDER BY divination_type, language"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PromptTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// InsertUsageTx appends one template_usage_history row within the caller's
// transaction. Rendered prompts are stored verbatim for audit.
func (r *TemplateRepo) InsertUsageTx(ctx context.Context, tx *sql.Tx, u *model.TemplateUsage) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO template_usage_history
		 (template_id, divination_id, system_prompt, rendered_prompt, response_time_ms, token_count, success, error_message)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.TemplateID, u.DivinationID, u.SystemPrompt, u.RenderedPrompt,
		u.ResponseTimeMs, u.TokenCount, u.Success, u.ErrorMessage)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// RecordUsage folds one generation outcome into a template's aggregate
// statistics. success_rate is a running mean, so it must be recomputed from
// the pre-increment usage_count; the assignment order below matters because
// MySQL applies SET clauses left to right.
func (r *TemplateRepo) RecordUsage(ctx context.Context, templateID uint64, success bool) error {
	s := 0.0
	if success {
		s = 1.0
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE prompt_templates
		 SET success_rate = ((success_rate * usage_count) + ?) / (usage_count + 1),
		     usage_count = usage_count + 1
		 WHERE id=?`,
		s, templateID)
	return err
}

// rowScanner lets scanTemplate work for both QueryRow and Query results.
type rowScanner interface{ Scan(dest ...interface{}) error }

func scanTemplate(row rowScanner) (*model.PromptTemplate, error) {
	var (
		t                    model.PromptTemplate
		desc, pref, by, tags sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &desc, &t.DivinationType, &t.Language,
		&t.SystemPrompt, &t.UserTemplate, &t.Version, &t.Temperature, &t.MaxTokens,
		&pref, &t.IsActive, &t.IsDefault, &t.UsageCount, &t.SuccessRate, &t.AvgRating,
		&by, &tags, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		t.Description = &v
	}
	if pref.Valid {
		v := pref.String
		t.ModelPreference = &v
	}
	if by.Valid {
		v := by.String
		t.CreatedBy = &v
	}
	if tags.Valid {
		v := tags.String
		t.Tags = &v
	}
	return &t, nil
}

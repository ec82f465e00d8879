package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatewave/fatewave-api/internal/model"
	"github.com/fatewave/fatewave-api/internal/repository"
)

// fakeTemplates keys stored templates by "type/language".
type fakeTemplates struct {
	byKey map[string]*model.PromptTemplate
}

func (f *fakeTemplates) FindActive(ctx context.Context, divinationType, language string) (*model.PromptTemplate, error) {
	if t, ok := f.byKey[divinationType+"/"+language]; ok {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func tmpl(id uint64, name string) *model.PromptTemplate {
	return &model.PromptTemplate{
		ID:           id,
		Name:         name,
		SystemPrompt: "system for " + name,
		UserTemplate: "user {question} for " + name,
		Temperature:  0.5,
		MaxTokens:    777,
	}
}

func TestResolve_ExactMatchWins(t *testing.T) {
	store := &fakeTemplates{byKey: map[string]*model.PromptTemplate{
		"tarot/zh-CN":   tmpl(1, "tarot-zh"),
		"general/zh-CN": tmpl(2, "general-zh"),
	}}
	r := NewTemplateResolver(store)

	c := r.Resolve(context.Background(), "tarot", "zh-CN")
	require.NotNil(t, c.TemplateID)
	assert.Equal(t, uint64(1), *c.TemplateID)
	assert.Equal(t, "system for tarot-zh", c.SystemPrompt)
	assert.Equal(t, 0.5, c.Temperature)
	assert.Equal(t, 777, c.MaxTokens)
}

func TestResolve_FallsBackToGeneral(t *testing.T) {
	store := &fakeTemplates{byKey: map[string]*model.PromptTemplate{
		"general/en": tmpl(2, "general-en"),
	}}
	r := NewTemplateResolver(store)

	c := r.Resolve(context.Background(), "astrology", "en")
	require.NotNil(t, c.TemplateID)
	assert.Equal(t, uint64(2), *c.TemplateID)
}

func TestResolve_FallsBackToBuiltin(t *testing.T) {
	r := NewTemplateResolver(&fakeTemplates{byKey: map[string]*model.PromptTemplate{}})

	c := r.Resolve(context.Background(), "tarot", "zh-CN")
	assert.Nil(t, c.TemplateID, "builtin has no stored identity")
	assert.Equal(t, builtinSystemZH, c.SystemPrompt)
	assert.Equal(t, builtinUserZH, c.UserTemplate)
	assert.Equal(t, 0.8, c.Temperature)
	assert.Equal(t, 1000, c.MaxTokens)
}

func TestResolve_BuiltinEnglishBranch(t *testing.T) {
	r := NewTemplateResolver(&fakeTemplates{byKey: map[string]*model.PromptTemplate{}})

	for _, lang := range []string{"en", "fr", "ja"} {
		c := r.Resolve(context.Background(), "tarot", lang)
		assert.Equal(t, builtinSystemEN, c.SystemPrompt, "language %q should take the English branch", lang)
	}
}

func TestResolve_GeneralTypeSkipsSecondLookup(t *testing.T) {
	// When the requested type is already "general" a miss goes straight to
	// the builtin instead of retrying the same key.
	r := NewTemplateResolver(&fakeTemplates{byKey: map[string]*model.PromptTemplate{}})

	c := r.Resolve(context.Background(), "general", "en")
	assert.Nil(t, c.TemplateID)
	assert.Equal(t, builtinSystemEN, c.SystemPrompt)
}

func TestResolve_ModelPreferencePassthrough(t *testing.T) {
	pref := "openai/gpt-4o-mini"
	stored := tmpl(3, "with-pref")
	stored.ModelPreference = &pref
	store := &fakeTemplates{byKey: map[string]*model.PromptTemplate{"tarot/en": stored}}
	r := NewTemplateResolver(store)

	c := r.Resolve(context.Background(), "tarot", "en")
	assert.Equal(t, pref, c.ModelPreference)
}

func TestBuiltinTemplatesContainPlaceholder(t *testing.T) {
	assert.True(t, strings.Contains(builtinUserZH, "{question}"))
	assert.True(t, strings.Contains(builtinUserEN, "{question}"))
}

package service

import (
	"context"

	"github.com/fatewave/fatewave-api/internal/model"
)

// TemplateContent is what the orchestrator needs from template resolution:
// the prompt pair, generation parameters and an optional identity for
// audit. TemplateID and Name are nil/empty when the compiled-in fallback
// was used.
type TemplateContent struct {
	TemplateID      *uint64
	Name            string
	SystemPrompt    string
	UserTemplate    string
	Temperature     float64
	MaxTokens       int
	ModelPreference string
}

// templateStore is the slice of the template repository the resolver needs.
type templateStore interface {
	FindActive(ctx context.Context, divinationType, language string) (*model.PromptTemplate, error)
}

// TemplateResolver selects the prompt template for a generation. The chain
// is: exact active (type, language) match preferring the default flag, then
// the active ("general", language) template, then a compiled-in builtin
// chosen by a coarse language check. Resolution never fails; the builtin is
// always available.
type TemplateResolver struct {
	Templates templateStore
}

func NewTemplateResolver(templates templateStore) *TemplateResolver {
	return &TemplateResolver{Templates: templates}
}

// generalType is the catch-all divination type used as the second lookup.
const generalType = "general"

// Resolve walks the fallback chain for (divinationType, language). Store
// errors are treated as misses: a broken template store degrades to the
// builtin rather than failing the generation.
func (r *TemplateResolver) Resolve(ctx context.Context, divinationType, language string) TemplateContent {
	if t, err := r.Templates.FindActive(ctx, divinationType, language); err == nil {
		return contentFrom(t)
	}
	if divinationType != generalType {
		if t, err := r.Templates.FindActive(ctx, generalType, language); err == nil {
			return contentFrom(t)
		}
	}
	return builtinContent(language)
}

func contentFrom(t *model.PromptTemplate) TemplateContent {
	id := t.ID
	c := TemplateContent{
		TemplateID:   &id,
		Name:         t.Name,
		SystemPrompt: t.SystemPrompt,
		UserTemplate: t.UserTemplate,
		Temperature:  t.Temperature,
		MaxTokens:    t.MaxTokens,
	}
	if t.ModelPreference != nil {
		c.ModelPreference = *t.ModelPreference
	}
	return c
}

// builtinContent returns the compiled-in template. The language check is
// deliberately coarse: one branch for zh-CN, one generic English branch.
func builtinContent(language string) TemplateContent {
	c := TemplateContent{
		Temperature: 0.8,
		MaxTokens:   1000,
	}
	if language == "zh-CN" {
		c.SystemPrompt = builtinSystemZH
		c.UserTemplate = builtinUserZH
	} else {
		c.SystemPrompt = builtinSystemEN
		c.UserTemplate = builtinUserEN
	}
	return c
}

package service

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)
	customBlockPattern = regexp.MustCompile(`(?s)\{\{#customMessage\}\}(.*?)\{\{/customMessage\}\}`)
)

// Renderer substitutes context variables into a template. It is
// deterministic: no clock reads, no generated identifiers; anything
// time-dependent must be precomputed into the context.
type Renderer struct{}

// NewRenderer constructs a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the final subject and body for a template and context.
//
// Every variable the template declares must be present in the context,
// except customMessage which is optional by definition. The administrator
// customMessage is free text and is HTML-escaped before substitution; the
// template bodies themselves are trusted seed content. After substitution no
// placeholder may survive in the output.
func (r *Renderer) Render(template models.EmailTemplate, context models.RenderContext) (models.RenderedMessage, error) {
	for _, name := range template.Variables {
		if name == models.CustomMessageVariable {
			continue
		}
		if _, ok := context[name]; !ok {
			return models.RenderedMessage{}, appErrors.Clone(appErrors.ErrMissingVariable, fmt.Sprintf("variable %s missing from context for template %s", name, template.Key))
		}
	}

	message := strings.TrimSpace(context[models.CustomMessageVariable])
	escaped := make(models.RenderContext, len(context))
	for name, value := range context {
		escaped[name] = value
	}
	escaped[models.CustomMessageVariable] = html.EscapeString(message)

	body := expandCustomMessageBlock(template.Body, message != "")
	subject := substitute(template.Subject, escaped)
	body = substitute(body, escaped)

	if leftover := placeholderPattern.FindStringSubmatch(subject + body); leftover != nil {
		return models.RenderedMessage{}, appErrors.Clone(appErrors.ErrMissingVariable, fmt.Sprintf("variable %s missing from context for template %s", leftover[1], template.Key))
	}
	return models.RenderedMessage{Subject: subject, Body: body}, nil
}

// expandCustomMessageBlock keeps the block's inner markup when a message is
// present and removes the block, markup included, when it is not.
func expandCustomMessageBlock(body string, hasMessage bool) string {
	return customBlockPattern.ReplaceAllStringFunc(body, func(block string) string {
		if !hasMessage {
			return ""
		}
		return customBlockPattern.FindStringSubmatch(block)[1]
	})
}

func substitute(text string, context models.RenderContext) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := context[name]; ok {
			return value
		}
		return match
	})
}

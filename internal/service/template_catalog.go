package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

// TemplateCatalog is the read-only store of seeded message templates, keyed
// by {workflow}_status_{status}_{role}. It is built once at startup and
// never mutated afterwards; template changes ship as new seed data.
type TemplateCatalog struct {
	templates map[string]models.EmailTemplate
	logger    *zap.Logger
}

// NewTemplateCatalog indexes the given templates. Duplicate keys are
// rejected so a bad seed fails fast at startup.
func NewTemplateCatalog(templates []models.EmailTemplate, logger *zap.Logger) (*TemplateCatalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := make(map[string]models.EmailTemplate, len(templates))
	for _, tpl := range templates {
		if tpl.Key == "" {
			return nil, fmt.Errorf("template %q has an empty key", tpl.Name)
		}
		if _, exists := index[tpl.Key]; exists {
			return nil, fmt.Errorf("duplicate template key %q", tpl.Key)
		}
		index[tpl.Key] = tpl
	}
	return &TemplateCatalog{templates: index, logger: logger}, nil
}

// Get returns the template stored under key.
func (c *TemplateCatalog) Get(key string) (models.EmailTemplate, bool) {
	tpl, ok := c.templates[key]
	return tpl, ok
}

// Len returns the number of seeded templates.
func (c *TemplateCatalog) Len() int {
	return len(c.templates)
}

// Resolve finds the template for a workflow/status/role triple. A miss on
// the exact key falls back to the role's generic status-changed template;
// when neither exists a NO_TEMPLATE error is returned and the caller skips
// the notification without failing the transition.
func (c *TemplateCatalog) Resolve(workflow models.WorkflowKind, status models.Status, role models.RecipientRole) (models.EmailTemplate, error) {
	key := models.TemplateKey(workflow, status, role)
	if tpl, ok := c.templates[key]; ok {
		return tpl, nil
	}
	fallback := models.FallbackTemplateKey(role)
	if tpl, ok := c.templates[fallback]; ok {
		c.logger.Debug("template fallback",
			zap.String("requested_key", key),
			zap.String("fallback_key", fallback))
		return tpl, nil
	}
	return models.EmailTemplate{}, appErrors.Clone(appErrors.ErrNoTemplate, fmt.Sprintf("no template for key %s and no fallback for role %s", key, role))
}

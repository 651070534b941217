package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Built-in template names.
const (
	TemplateWelcome          = "welcome"
	TemplatePremiumActivated = "premium_activated"
	TemplateReviewApproved   = "review_approved"
)

var builtinTemplates = map[string]string{
	TemplateWelcome: `<h2>Welcome to CollabHub, {{.Name}}!</h2>
<p>Your account is ready. Fill out your profile so other creators can find you.</p>
<p><a href="{{.ProfileURL}}">Complete your profile</a></p>`,

	TemplatePremiumActivated: `<h2>Premium is active</h2>
<p>Hi {{.Name}}, your premium subscription is now active until {{.PeriodEnd}}.</p>
<p>You now have unlimited messaging and a featured spot in the directory.</p>`,

	TemplateReviewApproved: `<h2>You received a new review</h2>
<p>Hi {{.Name}}, {{.ReviewerName}} left you a {{.Rating}}-star review:</p>
<blockquote>{{.Comment}}</blockquote>`,
}

// TemplateManager is an in-memory TemplateRenderer preloaded with the
// built-in transactional templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, body := range builtinTemplates {
		// built-ins are compile-time constants, parse errors are programmer errors
		if err := tm.AddTemplate(name, body); err != nil {
			panic(fmt.Sprintf("invalid builtin email template %s: %v", name, err))
		}
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

package email

// Provider sends transactional email.
type Provider interface {
	// Send delivers a fully built message.
	Send(email *Email) error

	// SendTemplate renders a named template and delivers it.
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	// Validate checks the provider configuration.
	Validate() error

	// Close releases any provider resources.
	Close() error
}

// TemplateRenderer renders named HTML templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}

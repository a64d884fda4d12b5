package models

// ContactService selects the provider behind the contact form.
type ContactService string

const (
	ContactFormspree ContactService = "formspree"
	ContactNetlify   ContactService = "netlify"
	ContactCustom    ContactService = "custom"
	ContactNone      ContactService = "none"
)

// RequiresEndpoint reports whether the service posts to an operator supplied URL.
func (s ContactService) RequiresEndpoint() bool {
	return s == ContactFormspree || s == ContactCustom
}

// ContactConfig configures the contact form. Endpoint is required for formspree and custom.
type ContactConfig struct {
	Service  ContactService `json:"service" validate:"required,oneof=formspree netlify custom none"`
	Endpoint string         `json:"endpoint,omitempty" validate:"omitempty,url"`
}

// DefaultContactConfig disables the contact form.
func DefaultContactConfig() ContactConfig {
	return ContactConfig{Service: ContactNone}
}

// Normalize clears the endpoint when the form is disabled.
func (c ContactConfig) Normalize() ContactConfig {
	if c.Service == "" {
		c.Service = ContactNone
	}
	if c.Service == ContactNone {
		c.Endpoint = ""
	}
	return c
}

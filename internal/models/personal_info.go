package models

// PersonalInfo is the hero/about content of the portfolio.
type PersonalInfo struct {
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,max=100"`
	Bio      string `json:"bio" validate:"required,max=500"`
	Email    string `json:"email" validate:"required,email"`
	Location string `json:"location" validate:"omitempty,max=100"`
	GitHub   string `json:"github" validate:"required,url,contains=github.com"`
	LinkedIn string `json:"linkedin" validate:"required,url,contains=linkedin.com"`
	Twitter  string `json:"twitter,omitempty" validate:"omitempty,url,contains=twitter.com|contains=x.com"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
}

const (
	placeholderName  = "Your Name"
	placeholderEmail = "your.email@example.com"
)

// DefaultPersonalInfo is served when personal info has never been persisted.
func DefaultPersonalInfo() PersonalInfo {
	return PersonalInfo{
		Name:     placeholderName,
		Role:     "Software Engineer",
		Bio:      "Tell visitors who you are and what you build.",
		Email:    placeholderEmail,
		GitHub:   "https://github.com/yourusername",
		LinkedIn: "https://linkedin.com/in/yourusername",
	}
}

// IsPlaceholder reports whether the name and email are still blank or the shipped placeholders.
func (p PersonalInfo) IsPlaceholder() bool {
	if p.Name == "" || p.Name == placeholderName {
		return true
	}
	return p.Email == "" || p.Email == placeholderEmail
}

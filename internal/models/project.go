package models

import "strings"

// Project is a portfolio project card plus the details shown in its modal.
// Empty optional fields are dropped when persisted.
type Project struct {
	Title           string   `json:"title" validate:"required,max=100"`
	Description     string   `json:"description" validate:"required,max=300"`
	LongDescription string   `json:"longDescription,omitempty" validate:"omitempty,max=1000"`
	Tags            []string `json:"tags" validate:"required,min=1,max=20"`
	Highlight       string   `json:"highlight,omitempty" validate:"omitempty,max=50"`
	Features        []string `json:"features,omitempty" validate:"omitempty,max=20"`
	Challenges      []string `json:"challenges,omitempty" validate:"omitempty,max=20"`
	Technologies    []string `json:"technologies,omitempty" validate:"omitempty,max=20"`
	GitHubURL       string   `json:"githubUrl,omitempty" validate:"omitempty,url"`
	LiveURL         string   `json:"liveUrl,omitempty" validate:"omitempty,url"`
	Duration        string   `json:"duration,omitempty" validate:"omitempty,max=50"`
	TeamSize        string   `json:"teamSize,omitempty" validate:"omitempty,max=50"`
	Role            string   `json:"role,omitempty" validate:"omitempty,max=100"`
}

// Collapse returns a copy with blank list items dropped and empty optional
// fields cleared so they are omitted on the wire.
func (p Project) Collapse() Project {
	p.Tags = compact(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Features = compact(p.Features)
	p.Challenges = compact(p.Challenges)
	p.Technologies = compact(p.Technologies)
	for _, f := range []*string{&p.LongDescription, &p.Highlight, &p.GitHubURL, &p.LiveURL, &p.Duration, &p.TeamSize, &p.Role} {
		if strings.TrimSpace(*f) == "" {
			*f = ""
		}
	}
	return p
}

// CollapseProjects applies Collapse to every project and never returns nil.
func CollapseProjects(in []Project) []Project {
	out := make([]Project, 0, len(in))
	for _, p := range in {
		out = append(out, p.Collapse())
	}
	return out
}

// DefaultProjects returns an empty project list.
func DefaultProjects() []Project { return []Project{} }

func compact(items []string) []string {
	var out []string
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}

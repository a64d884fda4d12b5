package models

// AccentColor tags a work experience entry for the timeline.
type AccentColor string

const (
	ColorPrimary AccentColor = "primary"
	ColorAccent  AccentColor = "accent"
)

// WorkExperience is one entry of the resume timeline. Period is display text only.
type WorkExperience struct {
	Title       string      `json:"title" validate:"required,max=100"`
	Company     string      `json:"company" validate:"required,max=100"`
	Period      string      `json:"period" validate:"required,max=50"`
	Description string      `json:"description" validate:"omitempty,max=500"`
	Color       AccentColor `json:"color" validate:"required,oneof=primary accent"`
}

// Education is one entry of the education timeline.
type Education struct {
	Degree      string `json:"degree" validate:"required,max=100"`
	School      string `json:"school" validate:"required,max=100"`
	Period      string `json:"period" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// Experience is the persisted unit holding both timelines.
type Experience struct {
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
}

// DefaultExperience returns empty, non-nil timelines.
func DefaultExperience() Experience {
	return Experience{
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
	}
}

// Normalize replaces nil timelines with empty ones so they serialize as [].
func (e Experience) Normalize() Experience {
	if e.WorkExperience == nil {
		e.WorkExperience = []WorkExperience{}
	}
	if e.Education == nil {
		e.Education = []Education{}
	}
	return e
}

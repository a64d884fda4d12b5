package models

// OnboardingData is the aggregate edited by the wizard and handed to the orchestrator.
type OnboardingData struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	Resume         ResumeMeta       `json:"resume"`
	Skills         []string         `json:"skills"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Projects       []Project        `json:"projects"`
	ContactForm    ContactConfig    `json:"contactForm"`
	Deployment     DeploymentConfig `json:"deployment"`
}

// DefaultOnboardingData is the blank wizard form.
func DefaultOnboardingData() OnboardingData {
	return OnboardingData{
		Skills:         []string{},
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
		Projects:       []Project{},
		ContactForm:    ContactConfig{Service: ContactNone},
		Deployment:     DeploymentConfig{Platform: PlatformNone},
	}
}

// Customized reports whether the operator has entered anything worth keeping.
func (d OnboardingData) Customized() bool {
	if !d.PersonalInfo.IsPlaceholder() {
		return true
	}
	return len(d.Skills) > 0 || len(d.WorkExperience) > 0 || len(d.Projects) > 0
}

// Experience returns the work and education timelines as one persisted unit.
func (d OnboardingData) Experience() Experience {
	return Experience{WorkExperience: d.WorkExperience, Education: d.Education}.Normalize()
}

// Clone returns a deep copy so callers can hand the aggregate across goroutines.
func (d OnboardingData) Clone() OnboardingData {
	out := d
	out.Skills = append([]string{}, d.Skills...)
	out.WorkExperience = append([]WorkExperience{}, d.WorkExperience...)
	out.Education = append([]Education{}, d.Education...)
	out.Projects = CloneProjects(d.Projects)
	return out
}

// CloneProjects deep-copies a project list including its string slices.
func CloneProjects(in []Project) []Project {
	out := make([]Project, len(in))
	for i, p := range in {
		p.Tags = cloneStrings(p.Tags)
		p.Features = cloneStrings(p.Features)
		p.Challenges = cloneStrings(p.Challenges)
		p.Technologies = cloneStrings(p.Technologies)
		out[i] = p
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

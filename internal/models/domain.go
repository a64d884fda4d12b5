package models

// Domain names one independently persisted content unit.
type Domain string

const (
	DomainPersonalInfo  Domain = "personal-info"
	DomainSkills        Domain = "skills"
	DomainExperience    Domain = "experience"
	DomainProjects      Domain = "projects"
	DomainContactConfig Domain = "contact-config"
	DomainResume        Domain = "resume"
)

// AllDomains lists every content domain in a stable order.
func AllDomains() []Domain {
	return []Domain{
		DomainPersonalInfo,
		DomainSkills,
		DomainExperience,
		DomainProjects,
		DomainContactConfig,
		DomainResume,
	}
}

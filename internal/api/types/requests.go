package types

import "github.com/portfolio-studio/engine/internal/models"

// Request bodies. Each one is checked against the schema of the same name before decoding.

type PersonalInfoRequest struct {
	PersonalInfo models.PersonalInfo `json:"personalInfo"`
}

type SkillsRequest struct {
	Skills []string `json:"skills"`
}

type ExperienceRequest = models.Experience

type ProjectsRequest struct {
	Projects []models.Project `json:"projects"`
}

type ContactConfigRequest struct {
	ContactConfig models.ContactConfig `json:"contactConfig"`
}

type ResumeRequest struct {
	Resume models.ResumeMeta `json:"resume"`
}

type UpdateEnvRequest struct {
	GitHubToken string `json:"GITHUB_TOKEN"`
}

package types

import (
	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/services"
)

// Envelope is the body of every write and every error response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

type PersonalInfoResponse struct {
	PersonalInfo models.PersonalInfo `json:"personalInfo"`
	Success      bool                `json:"success"`
}

type SkillsResponse struct {
	Skills []string `json:"skills"`
}

// ExperienceResponse carries both timelines at the top level.
type ExperienceResponse = models.Experience

type ProjectsResponse struct {
	Projects []models.Project `json:"projects"`
}

type ContactConfigResponse struct {
	ContactConfig models.ContactConfig `json:"contactConfig"`
	Success       bool                 `json:"success"`
}

// ResumeResponse is served bare.
type ResumeResponse = models.ResumeMeta

type ExportResponse struct {
	Success bool                     `json:"success"`
	Files   []services.GeneratedFile `json:"files"`
}

type UploadResumeResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    *services.UploadResult `json:"data,omitempty"`
}

type GitHubEnabledResponse struct {
	Enabled bool `json:"enabled"`
}

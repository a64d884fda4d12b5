package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/api/middleware"
	"github.com/portfolio-studio/engine/internal/api/schemas"
	"github.com/portfolio-studio/engine/internal/api/types"
	"github.com/portfolio-studio/engine/internal/services"
)

// ContentHandler serves /api/data. Reads always answer 200 with defaults for missing content.
type ContentHandler struct {
	svc services.ContentService
}

func NewContentHandler(svc services.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

func (h *ContentHandler) GetPersonalInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.PersonalInfoResponse{PersonalInfo: h.svc.PersonalInfo(r.Context()), Success: true})
}

func (h *ContentHandler) SavePersonalInfo(w http.ResponseWriter, r *http.Request) {
	var req types.PersonalInfoRequest
	if err := decodeBody(w, r, schemas.PersonalInfo, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SavePersonalInfo(r.Context(), req.PersonalInfo); err != nil {
		writeError(w, r, err, "Failed to update personal info")
		return
	}
	h.logWrite(r, "personal info")
	writeOK(w, "Personal info updated successfully")
}

func (h *ContentHandler) GetSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.SkillsResponse{Skills: h.svc.Skills(r.Context())})
}

func (h *ContentHandler) SaveSkills(w http.ResponseWriter, r *http.Request) {
	var req types.SkillsRequest
	if err := decodeBody(w, r, schemas.Skills, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SaveSkills(r.Context(), req.Skills); err != nil {
		writeError(w, r, err, "Failed to update skills")
		return
	}
	h.logWrite(r, "skills")
	writeOK(w, "Skills updated successfully")
}

func (h *ContentHandler) GetExperience(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ExperienceResponse(h.svc.Experience(r.Context())))
}

func (h *ContentHandler) SaveExperience(w http.ResponseWriter, r *http.Request) {
	var req types.ExperienceRequest
	if err := decodeBody(w, r, schemas.Experience, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SaveExperience(r.Context(), req); err != nil {
		writeError(w, r, err, "Failed to update experience")
		return
	}
	h.logWrite(r, "experience")
	writeOK(w, "Experience updated successfully")
}

func (h *ContentHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ProjectsResponse{Projects: h.svc.Projects(r.Context())})
}

func (h *ContentHandler) SaveProjects(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectsRequest
	if err := decodeBody(w, r, schemas.Projects, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SaveProjects(r.Context(), req.Projects); err != nil {
		writeError(w, r, err, "Failed to update projects")
		return
	}
	h.logWrite(r, "projects")
	writeOK(w, "Projects updated successfully")
}

func (h *ContentHandler) GetContactConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ContactConfigResponse{ContactConfig: h.svc.ContactConfig(r.Context()), Success: true})
}

func (h *ContentHandler) SaveContactConfig(w http.ResponseWriter, r *http.Request) {
	var req types.ContactConfigRequest
	if err := decodeBody(w, r, schemas.ContactConfig, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SaveContactConfig(r.Context(), req.ContactConfig); err != nil {
		writeError(w, r, err, "Failed to update contact configuration")
		return
	}
	h.logWrite(r, "contact config")
	writeOK(w, "Contact configuration updated successfully")
}

func (h *ContentHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ResumeResponse(h.svc.Resume(r.Context())))
}

func (h *ContentHandler) SaveResume(w http.ResponseWriter, r *http.Request) {
	var req types.ResumeRequest
	if err := decodeBody(w, r, schemas.Resume, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SaveResume(r.Context(), req.Resume); err != nil {
		writeError(w, r, err, "Failed to update resume data")
		return
	}
	h.logWrite(r, "resume")
	writeOK(w, "Resume data updated successfully")
}

// Export renders the data modules of the static site from the persisted content.
func (h *ContentHandler) Export(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to export content")
		return
	}
	writeJSON(w, http.StatusOK, types.ExportResponse{Success: true, Files: files})
}

func (h *ContentHandler) logWrite(r *http.Request, what string) {
	middleware.Logger(r.Context()).Info("content updated", zap.String("content", what))
}

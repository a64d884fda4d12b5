package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/portfolio-studio/engine/internal/api/types"
	"github.com/portfolio-studio/engine/internal/services"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// multipartOverhead is allowed on top of the file limit for boundaries and headers.
const multipartOverhead = 64 << 10

// ResumeHandler stores and removes the resume asset. It never updates the resume metadata.
type ResumeHandler struct {
	svc      services.ResumeService
	maxBytes int64
}

func NewResumeHandler(svc services.ResumeService, maxBytes int64) *ResumeHandler {
	return &ResumeHandler{svc: svc, maxBytes: maxBytes}
}

// Upload accepts a multipart form with the file in the "resume" field.
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, appErr.Wrap(err, appErr.CodeTooLarge, h.tooLargeMessage()), "")
			return
		}
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "No resume file provided"), "")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInvalid, "No resume file provided"), "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, r, appErr.Wrap(err, appErr.CodeInternal, "read upload"), "Failed to upload resume")
		return
	}

	res, err := h.svc.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, r, err, "Failed to upload resume")
		return
	}
	writeJSON(w, http.StatusOK, types.UploadResumeResponse{
		Success: true,
		Message: "Resume uploaded successfully",
		Data:    res,
	})
}

// Delete removes the asset named by the fileName query parameter.
func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.URL.Query().Get("fileName")); err != nil {
		writeError(w, r, err, "Failed to delete resume")
		return
	}
	writeOK(w, "Resume deleted successfully")
}

func (h *ResumeHandler) tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %d bytes.", h.maxBytes)
}

package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/models"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/storage"
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	resumeBaseName = "resume"
)

var resumeExtensions = map[string]string{
	mimePDF:  ".pdf",
	mimeDOC:  ".doc",
	mimeDOCX: ".docx",
}

// UploadResult describes a stored resume asset.
type UploadResult struct {
	FileName     string `json:"fileName"`
	FilePath     string `json:"filePath"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// Meta is the ResumeMeta an operator would save for this upload.
func (u UploadResult) Meta() models.ResumeMeta {
	return models.ResumeMeta{FileName: u.FileName, OriginalName: u.OriginalName, Size: u.Size}
}

// ResumeService stores the resume asset under the public dir. It never touches the persisted ResumeMeta.
type ResumeService interface {
	Upload(ctx context.Context, originalName, declaredType string, data []byte) (*UploadResult, error)
	Delete(ctx context.Context, fileName string) error
}

type resumeService struct {
	public   billy.Filesystem
	maxBytes int64
}

func NewResumeService(public billy.Filesystem, maxBytes int64) ResumeService {
	return &resumeService{public: public, maxBytes: maxBytes}
}

func (s *resumeService) Upload(ctx context.Context, originalName, declaredType string, data []byte) (*UploadResult, error) {
	logger.L().Info("upload resume", zap.String("original_name", originalName), zap.Int("size", len(data)))
	if err := ctx.Err(); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "upload canceled")
	}
	if len(data) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "No resume file provided")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, appErr.New(appErr.CodeTooLarge, fmt.Sprintf("File too large. Maximum size is %s.", humanBytes(s.maxBytes)))
	}

	detected := mimetype.Detect(data)
	ext, ok := resumeExtensions[detected.String()]
	if !ok && detected.Is("application/x-ole-storage") && mimetype.EqualsAny(declaredType, mimeDOC) {
		// Legacy Word files without a recognizable stream directory sniff as plain OLE.
		ext, ok = resumeExtensions[mimeDOC], true
	}
	if !ok {
		logger.L().Warn("resume rejected", zap.String("detected", detected.String()), zap.String("declared", declaredType))
		return nil, appErr.New(appErr.CodeInvalid, "Invalid file type. Only PDF, DOC, and DOCX files are allowed.").
			WithMeta("detected", detected.String())
	}

	fileName := resumeBaseName + ext
	for _, other := range resumeExtensions {
		if other == ext {
			continue
		}
		stale := resumeBaseName + other
		if err := s.public.Remove(stale); err == nil {
			logger.L().Info("removed stale resume", zap.String("file", stale))
		}
	}
	if err := storage.WriteFileAtomic(s.public, fileName, data, 0o644); err != nil {
		logger.L().Error("store resume failed", zap.Error(err))
		return nil, appErr.Wrap(err, appErr.CodeInternal, "Failed to upload resume")
	}

	res := &UploadResult{
		FileName:     fileName,
		FilePath:     "/" + fileName,
		OriginalName: originalName,
		Size:         int64(len(data)),
		Type:         detected.String(),
	}
	logger.L().Info("resume uploaded", zap.String("file", fileName))
	return res, nil
}

func (s *resumeService) Delete(ctx context.Context, fileName string) error {
	logger.L().Info("delete resume", zap.String("file", fileName))
	if err := ctx.Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "delete canceled")
	}
	if fileName == "" {
		return appErr.New(appErr.CodeInvalid, "No fileName provided")
	}
	if !isPlainFileName(fileName) {
		return appErr.New(appErr.CodeInvalid, "invalid fileName")
	}
	ok, err := storage.Exists(s.public, fileName)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "Failed to delete resume")
	}
	if !ok {
		return appErr.New(appErr.CodeNotFound, "File not found")
	}
	if err := s.public.Remove(fileName); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "Failed to delete resume")
	}
	logger.L().Info("resume deleted", zap.String("file", fileName))
	return nil
}

func isPlainFileName(name string) bool {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

func humanBytes(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

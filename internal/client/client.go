// Package client reaches the content endpoints, either over HTTP or in-process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/api/types"
	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/services"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/utils"
)

// Client talks to a running content API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token when set.
	Token string
	// Retry schedules retries of requests that did not reach the server or were turned away
	// with 429 or 503. A Retry-After header replaces the scheduled delay, bounded by MaxDelay.
	Retry utils.Backoff
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retry:   utils.Backoff{MaxRetries: 4, Delay: 200 * time.Millisecond, MaxDelay: 5 * time.Second},
	}
}

func (c *Client) PersonalInfo(ctx context.Context) (models.PersonalInfo, error) {
	var out types.PersonalInfoResponse
	err := c.getJSON(ctx, "/api/data/personal-info", &out)
	return out.PersonalInfo, err
}

func (c *Client) Skills(ctx context.Context) ([]string, error) {
	var out types.SkillsResponse
	err := c.getJSON(ctx, "/api/data/skills", &out)
	return out.Skills, err
}

func (c *Client) Experience(ctx context.Context) (models.Experience, error) {
	var out types.ExperienceResponse
	err := c.getJSON(ctx, "/api/data/experience", &out)
	return out.Normalize(), err
}

func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	var out types.ProjectsResponse
	err := c.getJSON(ctx, "/api/data/projects", &out)
	return out.Projects, err
}

func (c *Client) ContactConfig(ctx context.Context) (models.ContactConfig, error) {
	var out types.ContactConfigResponse
	err := c.getJSON(ctx, "/api/data/contact-config", &out)
	return out.ContactConfig, err
}

func (c *Client) Resume(ctx context.Context) (models.ResumeMeta, error) {
	var out types.ResumeResponse
	err := c.getJSON(ctx, "/api/data/resume", &out)
	return out, err
}

func (c *Client) SavePersonalInfo(ctx context.Context, info models.PersonalInfo) error {
	return c.postJSON(ctx, "/api/data/personal-info", types.PersonalInfoRequest{PersonalInfo: info}, nil)
}

func (c *Client) SaveSkills(ctx context.Context, skills []string) error {
	if skills == nil {
		skills = []string{}
	}
	return c.postJSON(ctx, "/api/data/skills", types.SkillsRequest{Skills: skills}, nil)
}

func (c *Client) SaveExperience(ctx context.Context, exp models.Experience) error {
	return c.postJSON(ctx, "/api/data/experience", types.ExperienceRequest(exp.Normalize()), nil)
}

func (c *Client) SaveProjects(ctx context.Context, projects []models.Project) error {
	if projects == nil {
		projects = []models.Project{}
	}
	return c.postJSON(ctx, "/api/data/projects", types.ProjectsRequest{Projects: projects}, nil)
}

func (c *Client) SaveContactConfig(ctx context.Context, cfg models.ContactConfig) error {
	return c.postJSON(ctx, "/api/data/contact-config", types.ContactConfigRequest{ContactConfig: cfg}, nil)
}

func (c *Client) SaveResume(ctx context.Context, meta models.ResumeMeta) error {
	return c.postJSON(ctx, "/api/data/resume", types.ResumeRequest{Resume: meta}, nil)
}

// Export fetches the generated data modules.
func (c *Client) Export(ctx context.Context) ([]services.GeneratedFile, error) {
	var out types.ExportResponse
	err := c.getJSON(ctx, "/api/data/export", &out)
	return out.Files, err
}

// UploadResume stores the resume asset. The metadata unit is not touched.
func (c *Client) UploadResume(ctx context.Context, fileName, contentType string, data []byte) (*services.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, filepath.Base(fileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out types.UploadResumeResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload-resume", buf.Bytes(), mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) DeleteResume(ctx context.Context, fileName string) error {
	return c.do(ctx, http.MethodDelete, "/api/upload-resume?fileName="+url.QueryEscape(fileName), nil, "", nil)
}

func (c *Client) SetGitHubToken(ctx context.Context, token string) error {
	return c.postJSON(ctx, "/api/update-env", types.UpdateEnvRequest{GitHubToken: token}, nil)
}

func (c *Client) GitHubEnabled(ctx context.Context) (bool, error) {
	var out types.GitHubEnabledResponse
	err := c.getJSON(ctx, "/api/github-enabled", &out)
	return out.Enabled, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "encode request")
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

// do sends one request. Transport failures and 429/503 answers are retried on the Retry
// schedule; any other response ends the retries. Every content request replaces whole values,
// so resending is safe.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInvalid, "build request")
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		}

		resp, err := c.HTTP.Do(req)
		var wait time.Duration
		switch {
		case err != nil:
			if attempt >= c.Retry.MaxRetries || ctx.Err() != nil {
				return appErr.Wrap(err, appErr.CodeUnavailable, fmt.Sprintf("%s %s failed", method, path))
			}
			logger.L().Warn("content api unreachable", zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			wait = c.Retry.Next(attempt)
		case retryable(resp.StatusCode) && attempt < c.Retry.MaxRetries:
			wait = c.Retry.Next(attempt)
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = c.Retry.Cap(d)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.L().Warn("content api busy", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt), zap.Duration("wait", wait))
		default:
			return readResponse(resp, out)
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return appErr.Wrap(ctx.Err(), appErr.CodeUnavailable, "request canceled")
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// retryAfter parses a Retry-After value given in seconds or as an HTTP date.
func retryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0), true
	}
	return 0, false
}

func readResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "decode response")
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &types.APIError{Status: status}
	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		apiErr.Code, apiErr.Message = env.Code, env.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	if apiErr.Code == "" {
		apiErr.Code = string(codeForStatus(status))
	}
	return apiErr.AsAppError()
}

func codeForStatus(status int) appErr.Code {
	switch status {
	case http.StatusBadRequest:
		return appErr.CodeInvalid
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErr.CodeUnauthorized
	case http.StatusNotFound:
		return appErr.CodeNotFound
	case http.StatusRequestEntityTooLarge:
		return appErr.CodeTooLarge
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return appErr.CodeUnavailable
	}
	return appErr.CodeInternal
}

// IsAPIError reports whether err came back from the server rather than from the transport.
func IsAPIError(err error) bool {
	var apiErr *types.APIError
	return errors.As(err, &apiErr)
}

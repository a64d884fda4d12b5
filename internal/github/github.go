// Package github checks personal access tokens before they are stored for the stats integration.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
)

const DefaultBaseURL = "https://api.github.com"

// User is the subset of GET /user the onboarding flow shows back to the operator.
type User struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Timeout: 15 * time.Second}}
}

// ValidateToken resolves the account behind token. A rejected token is CodeUnauthorized;
// an unreachable or failing API is CodeUnavailable.
func (c *Client) ValidateToken(ctx context.Context, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErr.New(appErr.CodeInvalid, "token is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/user", nil)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "build github request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "Portfolio-App")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "github api unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		logger.L().Warn("github token rejected", zap.Int("status", resp.StatusCode))
		return nil, appErr.New(appErr.CodeUnauthorized, "GitHub rejected the token")
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, appErr.New(appErr.CodeUnavailable, fmt.Sprintf("GitHub API Error: %d %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "decode github user")
	}
	logger.L().Info("github token accepted", zap.String("login", u.Login))
	return &u, nil
}

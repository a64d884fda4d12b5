package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func newAPI(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			http.NotFound(w, r)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"login":"ada","name":"Ada Lovelace","public_repos":3,"followers":10}`))
		case "Bearer limited":
			http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusTooManyRequests)
		default:
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestValidateToken(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	u, err := c.ValidateToken(ctx, " good ")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Login)
	assert.Equal(t, 3, u.PublicRepos)

	_, err = c.ValidateToken(ctx, "bad")
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	_, err = c.ValidateToken(ctx, "limited")
	assert.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	assert.Contains(t, err.Error(), "429")

	_, err = c.ValidateToken(ctx, "")
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL)
}

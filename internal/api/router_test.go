package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-studio/engine/internal/api/handlers"
	"github.com/portfolio-studio/engine/internal/api/types"
	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/repository"
	"github.com/portfolio-studio/engine/internal/services"
	"github.com/portfolio-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

const testMaxResume = 1024

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type fixture struct {
	handler http.Handler
	data    billy.Filesystem
	public  billy.Filesystem
	modules billy.Filesystem
	env     billy.Filesystem
}

func newFixture(t *testing.T, secret []byte) *fixture {
	t.Helper()
	f := &fixture{data: memfs.New(), public: memfs.New(), modules: memfs.New(), env: memfs.New()}
	repos := repository.NewRepositories(repository.NewContentRepository(f.data))
	content := services.NewContentService(repos, services.NewModuleWriter(f.modules))
	f.handler = NewRouter(Dependencies{
		HMACSecret:     secret,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		ContentHandler: handlers.NewContentHandler(content),
		ResumeHandler:  handlers.NewResumeHandler(services.NewResumeService(f.public, testMaxResume), testMaxResume),
		EnvHandler:     handlers.NewEnvHandler(services.NewEnvService(f.env, ".env.local")),
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func uploadRequest(t *testing.T, name, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="resume"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadsServeDefaultsBeforeAnyWrite(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodGet, "/api/data/personal-info", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	pi := decode[types.PersonalInfoResponse](t, rr)
	assert.True(t, pi.Success)
	assert.Equal(t, models.DefaultPersonalInfo(), pi.PersonalInfo)

	rr = f.do(t, http.MethodGet, "/api/data/skills", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"skills":[]}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/data/experience", "", nil)
	assert.JSONEq(t, `{"workExperience":[],"education":[]}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/data/projects", "", nil)
	assert.JSONEq(t, `{"projects":[]}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/data/contact-config", "", nil)
	assert.JSONEq(t, `{"contactConfig":{"service":"none"},"success":true}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/data/resume", "", nil)
	assert.JSONEq(t, `{"fileName":"","originalName":"","size":0}`, rr.Body.String())
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	f := newFixture(t, nil)

	writes := []struct {
		path string
		body string
		read string
		want string
	}{
		{
			"/api/data/personal-info",
			`{"personalInfo":{"name":"Ada Lovelace","role":"Engineer","bio":"...","email":"ada@example.com","location":"","github":"https://github.com/ada","linkedin":"https://linkedin.com/in/ada"}}`,
			"/api/data/personal-info",
			`{"personalInfo":{"name":"Ada Lovelace","role":"Engineer","bio":"...","email":"ada@example.com","location":"","github":"https://github.com/ada","linkedin":"https://linkedin.com/in/ada"},"success":true}`,
		},
		{"/api/data/skills", `{"skills":["Go","SQL"]}`, "/api/data/skills", `{"skills":["Go","SQL"]}`},
		{
			"/api/data/experience",
			`{"workExperience":[{"title":"Dev","company":"Acme","period":"2020","description":"","color":"primary"}],"education":[]}`,
			"/api/data/experience",
			`{"workExperience":[{"title":"Dev","company":"Acme","period":"2020","description":"","color":"primary"}],"education":[]}`,
		},
		{
			"/api/data/projects",
			`{"projects":[{"title":"X","description":"Y","tags":["a"],"features":[]}]}`,
			"/api/data/projects",
			`{"projects":[{"title":"X","description":"Y","tags":["a"]}]}`,
		},
		{
			"/api/data/contact-config",
			`{"contactConfig":{"service":"none","endpoint":"https://stale.example.com"}}`,
			"/api/data/contact-config",
			`{"contactConfig":{"service":"none"},"success":true}`,
		},
		{
			"/api/data/resume",
			`{"resume":{"fileName":"resume.pdf","originalName":"cv.pdf","size":120}}`,
			"/api/data/resume",
			`{"fileName":"resume.pdf","originalName":"cv.pdf","size":120}`,
		},
	}
	for _, w := range writes {
		t.Run(w.path, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, w.path, w.body, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.True(t, decode[types.Envelope](t, rr).Success)

			rr = f.do(t, http.MethodGet, w.read, "", nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, w.want, rr.Body.String())
		})
	}

	skillsModule, err := util.ReadFile(f.modules, "skills.ts")
	require.NoError(t, err)
	assert.Contains(t, string(skillsModule), "export const skills: string[] = [")
}

func TestMalformedBodies(t *testing.T) {
	f := newFixture(t, nil)

	cases := []struct {
		name string
		path string
		body string
	}{
		{"not json", "/api/data/skills", `{"skills":[`},
		{"wrong key", "/api/data/skills", `{"skill":["Go"]}`},
		{"wrong type", "/api/data/projects", `{"projects":{"title":"X"}}`},
		{"missing education", "/api/data/experience", `{"workExperience":[]}`},
		{"resume missing", "/api/data/resume", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, tc.path, tc.body, nil)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			env := decode[types.Envelope](t, rr)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
			assert.Equal(t, "invalid", env.Code)
		})
	}

	ok, err := util.ReadFile(f.data, repository.FileName(models.DomainSkills))
	assert.Error(t, err, "rejected writes must not create the unit")
	assert.Nil(t, ok)
}

func TestExportListsEveryModule(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodGet, "/api/data/export", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[types.ExportResponse](t, rr)
	require.Len(t, res.Files, len(models.AllDomains()))
	assert.Equal(t, "personal-info.ts", res.Files[0].Filename)
	assert.Contains(t, res.Files[2].Content, "export const education: Education[] = [];")
}

func TestResumeUploadAndDelete(t *testing.T) {
	f := newFixture(t, nil)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, uploadRequest(t, "Ada CV.pdf", "application/pdf", samplePDF))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[types.UploadResumeResponse](t, rr)
	require.NotNil(t, res.Data)
	assert.Equal(t, "resume.pdf", res.Data.FileName)
	assert.Equal(t, "/resume.pdf", res.Data.FilePath)
	assert.Equal(t, "Ada CV.pdf", res.Data.OriginalName)

	// the metadata unit is left for the caller to save
	rr = f.do(t, http.MethodGet, "/api/data/resume", "", nil)
	assert.JSONEq(t, `{"fileName":"","originalName":"","size":0}`, rr.Body.String())

	rr = f.do(t, http.MethodDelete, "/api/upload-resume?fileName=resume.pdf", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/upload-resume?fileName=resume.pdf", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "File not found", decode[types.Envelope](t, rr).Error)

	rr = f.do(t, http.MethodDelete, "/api/upload-resume?fileName=../content/skills.json", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/upload-resume", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResumeUploadRejections(t *testing.T) {
	f := newFixture(t, nil)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, uploadRequest(t, "cv.txt", "text/plain", []byte("plain text resume")))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid file type. Only PDF, DOC, and DOCX files are allowed.", decode[types.Envelope](t, rr).Error)

	big := append(append([]byte{}, samplePDF...), bytes.Repeat([]byte(" "), testMaxResume)...)
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, uploadRequest(t, "cv.pdf", "application/pdf", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/upload-resume", `{"resume":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	_, err := f.public.Stat("resume.pdf")
	assert.Error(t, err)
}

func TestUpdateEnvAndGitHubEnabled(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/api/update-env", `{"GITHUB_TOKEN":42}`, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid token format", decode[types.Envelope](t, rr).Error)

	rr = f.do(t, http.MethodPost, "/api/update-env", `{"GITHUB_TOKEN":"ghp_abc"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	env, err := util.ReadFile(f.env, ".env.local")
	require.NoError(t, err)
	assert.Contains(t, string(env), `GITHUB_TOKEN="ghp_abc"`)

	rr = f.do(t, http.MethodGet, "/api/github-enabled", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"enabled":true}`, rr.Body.String())
}

func TestAuthGuardsMutatingRoutesOnly(t *testing.T) {
	secret := []byte("s3cret")
	f := newFixture(t, secret)

	rr := f.do(t, http.MethodGet, "/api/data/skills", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/data/skills", `{"skills":["Go"]}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/update-env", `{"GITHUB_TOKEN":"x"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	rr = f.do(t, http.MethodPost, "/api/data/skills", `{"skills":["Go"]}`, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

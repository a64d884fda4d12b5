// Package schemas holds the JSON Schemas request bodies are checked against before decoding.
package schemas

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// Schema names, one per mutating route.
const (
	PersonalInfo  = "personal-info"
	Skills        = "skills"
	Experience    = "experience"
	Projects      = "projects"
	ContactConfig = "contact-config"
	Resume        = "resume"
	UpdateEnv     = "update-env"
)

//go:embed json/*.json
var files embed.FS

var (
	once     sync.Once
	compiled map[string]*gojsonschema.Schema
	loadErr  error
)

func load() {
	entries, err := files.ReadDir("json")
	if err != nil {
		loadErr = err
		return
	}
	compiled = make(map[string]*gojsonschema.Schema, len(entries))
	for _, e := range entries {
		raw, err := files.ReadFile(path.Join("json", e.Name()))
		if err != nil {
			loadErr = err
			return
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			loadErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
			return
		}
		compiled[strings.TrimSuffix(e.Name(), ".json")] = s
	}
}

// Validate checks body against the named schema. A body that is not JSON or does not match
// returns a CodeInvalid error listing every violation.
func Validate(name string, body []byte) error {
	once.Do(load)
	if loadErr != nil {
		return appErr.Wrap(loadErr, appErr.CodeInternal, "schemas unavailable")
	}
	s, ok := compiled[name]
	if !ok {
		return appErr.New(appErr.CodeInternal, "unknown schema "+name)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "Invalid JSON body")
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return appErr.New(appErr.CodeInvalid, "Invalid request body: "+strings.Join(msgs, "; ")).
		WithMeta("violations", msgs)
}

package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

func TestEverySchemaCompiles(t *testing.T) {
	for _, name := range []string{PersonalInfo, Skills, Experience, Projects, ContactConfig, Resume, UpdateEnv} {
		assert.NotEqual(t, appErr.CodeInternal, appErr.CodeOf(Validate(name, []byte(`{}`))), name)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		schema string
		body   string
		ok     bool
	}{
		{"skills ok", Skills, `{"skills":["Go","SQL"]}`, true},
		{"skills wrong item type", Skills, `{"skills":["Go",3]}`, false},
		{"skills missing", Skills, `{"skill":["Go"]}`, false},
		{"not json", Skills, `{"skills":`, false},
		{"experience needs both", Experience, `{"workExperience":[]}`, false},
		{"experience ok", Experience, `{"workExperience":[{"title":"Dev"}],"education":[]}`, true},
		{"projects tags list", Projects, `{"projects":[{"title":"X","tags":"a"}]}`, false},
		{"contact needs service", ContactConfig, `{"contactConfig":{"endpoint":"https://x"}}`, false},
		{"contact ok", ContactConfig, `{"contactConfig":{"service":"none"}}`, true},
		{"resume negative size", Resume, `{"resume":{"fileName":"resume.pdf","size":-1}}`, false},
		{"token must be string", UpdateEnv, `{"GITHUB_TOKEN":42}`, false},
		{"empty token ok", UpdateEnv, `{"GITHUB_TOKEN":""}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.schema, []byte(tc.body))
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
		})
	}
}

func TestUnknownSchema(t *testing.T) {
	assert.True(t, appErr.IsCode(Validate("graphs", []byte(`{}`)), appErr.CodeInternal))
}

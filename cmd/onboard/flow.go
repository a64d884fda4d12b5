package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/orchestrator"
	"github.com/portfolio-studio/engine/internal/session"
	"github.com/portfolio-studio/engine/internal/store"
	"github.com/portfolio-studio/engine/internal/validators"
	"github.com/portfolio-studio/engine/internal/wizard"
)

// flow is one command's view of the onboarding: content backend, session, store and wizard.
type flow struct {
	backend   backend
	session   session.Storage
	store     *store.Store
	wizard    *wizard.Wizard
	validator *validators.Validator
}

func (o *options) openFlow(cmd *cobra.Command) (*flow, error) {
	b, err := o.backend(cmd)
	if err != nil {
		return nil, err
	}
	sess, err := o.session(cmd)
	if err != nil {
		return nil, err
	}
	st := store.New(b, sess)
	v := validators.New()
	wiz, err := wizard.New(wizard.DefaultSteps(), v, orchestrator.New(st, b), sess)
	if err != nil {
		return nil, err
	}
	return &flow{backend: b, session: sess, store: st, wizard: wiz, validator: v}, nil
}

func (f *flow) close() error {
	return f.store.Close()
}

// overlay replaces each top-level form field named in patch. A named field is decoded from
// scratch, so replacement list entries and objects never keep values from the entries they replace.
func overlay(d *models.OnboardingData, patch []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return err
	}
	current, err := json.Marshal(d)
	if err != nil {
		return err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	var next models.OnboardingData
	if err := json.Unmarshal(b, &next); err != nil {
		return err
	}

	def := models.DefaultOnboardingData()
	if next.Skills == nil {
		next.Skills = def.Skills
	}
	if next.WorkExperience == nil {
		next.WorkExperience = def.WorkExperience
	}
	if next.Education == nil {
		next.Education = def.Education
	}
	if next.Projects == nil {
		next.Projects = def.Projects
	}
	*d = next
	return nil
}

// yamlToJSON re-encodes a YAML document so it can be decoded with the content's json tags.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("content file must be a mapping, got %T", doc)
	}
	return json.Marshal(doc)
}

func printValidation(w io.Writer, step wizard.Step, res validators.Result) {
	fmt.Fprintf(w, "✗ %s\n", step.Title)
	for _, fe := range res.Errors {
		fmt.Fprintf(w, "    %s: %s\n", fe.Field, fe.Message)
	}
}

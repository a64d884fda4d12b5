// Package orchestrator pushes wizard data into the client store and the persisted content.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/store"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/logger"
)

// Writer is the write side of the content endpoints.
type Writer interface {
	SavePersonalInfo(ctx context.Context, info models.PersonalInfo) error
	SaveSkills(ctx context.Context, skills []string) error
	SaveExperience(ctx context.Context, exp models.Experience) error
	SaveProjects(ctx context.Context, projects []models.Project) error
	SaveContactConfig(ctx context.Context, cfg models.ContactConfig) error
	SaveResume(ctx context.Context, meta models.ResumeMeta) error
}

// Result reports the outcome of one Save. Err is nil exactly when OK is true.
type Result struct {
	OK     bool
	Failed []models.Domain
	Errors map[models.Domain]error
	Err    error
}

// Orchestrator is the only path from the wizard to the store and the persisted content.
type Orchestrator struct {
	store  *store.Store
	writer Writer

	// overlapping saves run one after another
	mu sync.Mutex
}

func New(s *store.Store, w Writer) *Orchestrator {
	return &Orchestrator{store: s, writer: w}
}

type write struct {
	domain models.Domain
	run    func(ctx context.Context) error
}

func (o *Orchestrator) writes(data models.OnboardingData) []write {
	return []write{
		{models.DomainPersonalInfo, func(ctx context.Context) error { return o.writer.SavePersonalInfo(ctx, data.PersonalInfo) }},
		{models.DomainSkills, func(ctx context.Context) error { return o.writer.SaveSkills(ctx, data.Skills) }},
		{models.DomainExperience, func(ctx context.Context) error { return o.writer.SaveExperience(ctx, data.Experience()) }},
		{models.DomainProjects, func(ctx context.Context) error { return o.writer.SaveProjects(ctx, data.Projects) }},
		{models.DomainContactConfig, func(ctx context.Context) error { return o.writer.SaveContactConfig(ctx, data.ContactForm) }},
		{models.DomainResume, func(ctx context.Context) error { return o.writer.SaveResume(ctx, data.Resume) }},
	}
}

// Save applies data to the store, writes every domain concurrently and, when all writes
// succeed, reloads the store from the persisted content. On failure the optimistic store
// values are kept so the operator can retry.
func (o *Orchestrator) Save(ctx context.Context, data models.OnboardingData) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	data = data.Clone()
	o.store.UpdateAll(store.UpdateFrom(data))

	writes := o.writes(data)
	errs := make([]error, len(writes))
	var g errgroup.Group
	for i, w := range writes {
		g.Go(func() error {
			errs[i] = w.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{OK: true}
	var failedNames []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		d := writes[i].domain
		if res.Errors == nil {
			res.Errors = map[models.Domain]error{}
		}
		res.OK = false
		res.Failed = append(res.Failed, d)
		res.Errors[d] = err
		failedNames = append(failedNames, string(d))
	}

	if !res.OK {
		joined := make([]error, 0, len(res.Failed))
		for _, d := range res.Failed {
			joined = append(joined, res.Errors[d])
		}
		res.Err = appErr.Wrap(errors.Join(joined...), appErr.CodeInternal, "save failed for "+strings.Join(failedNames, ", ")).
			WithMeta("failed", failedNames)
		logger.L().Warn("save incomplete", zap.Strings("failed", failedNames), zap.Error(res.Err))
		return res
	}

	if err := o.store.ReloadFromFiles(ctx); err != nil {
		logger.L().Warn("reload after save did not finish", zap.Error(err))
	}
	logger.L().Info("save complete")
	return res
}

// Package wizard drives the onboarding steps: validation gated navigation, session
// bookkeeping and the save and complete actions.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/orchestrator"
	"github.com/portfolio-studio/engine/internal/session"
	"github.com/portfolio-studio/engine/internal/store"
	"github.com/portfolio-studio/engine/internal/validators"
	"github.com/portfolio-studio/engine/pkg/logger"
)

// ErrUnsavedChanges is returned by RequestClose when closing would drop customized data.
var ErrUnsavedChanges = errors.New("wizard has unsaved changes")

// Step is one page of the wizard. Fields names the aggregate fields validated before leaving it.
type Step struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Fields []string `json:"fields,omitempty"`
}

// DefaultSteps is the portfolio onboarding flow.
func DefaultSteps() []Step {
	return []Step{
		{ID: "personal-info", Title: "Personal Info", Fields: []string{validators.FieldPersonalInfo}},
		{ID: "resume", Title: "Resume"},
		{ID: "skills", Title: "Skills", Fields: []string{validators.FieldSkills}},
		{ID: "experience", Title: "Experience", Fields: []string{validators.FieldWorkExperience, validators.FieldEducation}},
		{ID: "projects", Title: "Projects", Fields: []string{validators.FieldProjects}},
		{ID: "github", Title: "GitHub Integration"},
		{ID: "form-setup", Title: "Form Setup", Fields: []string{validators.FieldContactForm, validators.FieldDeployment}},
		{ID: "theme", Title: "Theme & Colors"},
	}
}

// Saver persists the aggregate. *orchestrator.Orchestrator implements it.
type Saver interface {
	Save(ctx context.Context, data models.OnboardingData) orchestrator.Result
}

// Wizard is safe for concurrent use; Save calls run without holding the lock.
type Wizard struct {
	steps     []Step
	validator *validators.Validator
	saver     Saver
	session   session.Storage

	mu         sync.Mutex
	current    int
	open       bool
	completed  bool
	data       models.OnboardingData
	validation validators.Result
}

// New starts at step 0 with the modal closed and the completed flag read from storage.
func New(steps []Step, v *validators.Validator, saver Saver, storage session.Storage) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard needs at least one step")
	}
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	return &Wizard{
		steps:      append([]Step{}, steps...),
		validator:  v,
		saver:      saver,
		session:    storage,
		completed:  session.GetBool(storage, session.KeyOnboardingCompleted),
		data:       models.DefaultOnboardingData(),
		validation: validators.Result{Valid: true},
	}, nil
}

func (w *Wizard) Steps() []Step { return append([]Step{}, w.steps...) }

func (w *Wizard) Current() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.current]
}

func (w *Wizard) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

func (w *Wizard) IsCompleted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

func (w *Wizard) IsLastStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current == len(w.steps)-1
}

// Progress is the completed share of steps including the current one, in (0, 1].
func (w *Wizard) Progress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return float64(w.current+1) / float64(len(w.steps))
}

// Data returns a copy of the form.
func (w *Wizard) Data() models.OnboardingData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data.Clone()
}

// Validation returns the result of the last gated transition.
func (w *Wizard) Validation() validators.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validation
}

// Customized reports whether closing now would drop entered data.
func (w *Wizard) Customized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data.Customized()
}

// Update edits the form in place. Skills are normalized afterwards: labels are trimmed, blanks
// dropped and case-insensitive duplicates removed.
func (w *Wizard) Update(fn func(*models.OnboardingData)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.data)
	w.data.Skills = models.NormalizeSkills(w.data.Skills)
}

// AddSkill appends one label to the form unless it is blank or already listed.
func (w *Wizard) AddSkill(label string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	skills, added := models.AddSkill(w.data.Skills, label)
	w.data.Skills = skills
	return added
}

// Validate checks the current step's fields without moving.
func (w *Wizard) Validate() validators.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.validation = w.validateCurrentLocked()
	return w.validation
}

func (w *Wizard) validateCurrentLocked() validators.Result {
	fields := w.steps[w.current].Fields
	if len(fields) == 0 {
		return validators.Result{Valid: true}
	}
	return w.validator.Validate(w.data, fields...)
}

// Next advances one step when the current step validates. On the last step it completes instead.
// The returned result tells the caller which fields blocked the move.
func (w *Wizard) Next(ctx context.Context) (validators.Result, error) {
	w.mu.Lock()
	res := w.validateCurrentLocked()
	w.validation = res
	if !res.Valid {
		w.mu.Unlock()
		return res, nil
	}
	if w.current == len(w.steps)-1 {
		w.mu.Unlock()
		_, err := w.Complete(ctx)
		return res, err
	}
	w.current++
	w.persistStepLocked()
	w.mu.Unlock()
	return res, nil
}

// Prev moves back one step, never below 0. It is never gated.
func (w *Wizard) Prev() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current > 0 {
		w.current--
	}
	w.validation = validators.Result{Valid: true}
	w.persistStepLocked()
}

// JumpTo moves to index without validating the steps in between. showHint is true the first
// time the operator ever jumps to a different step.
func (w *Wizard) JumpTo(index int) (showHint bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.steps) {
		return false, fmt.Errorf("step %d out of range [0,%d)", index, len(w.steps))
	}
	if index == w.current {
		return false, nil
	}
	w.current = index
	w.validation = validators.Result{Valid: true}
	w.persistStepLocked()

	if session.GetBool(w.session, session.KeyStepJumpHintSeen) {
		return false, nil
	}
	w.setFlag(session.KeyStepJumpHintSeen, true)
	return true, nil
}

// Open shows the modal and resumes the step saved by the last close, when it is still in range.
func (w *Wizard) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = true
	raw, ok, err := w.session.Get(session.KeyLastStep)
	if err != nil || !ok {
		return
	}
	if i, err := strconv.Atoi(raw); err == nil && i >= 0 && i < len(w.steps) {
		w.current = i
	}
}

// AutoOpen opens the wizard for operators who never completed it.
func (w *Wizard) AutoOpen() bool {
	if w.IsCompleted() {
		return false
	}
	w.Open()
	return true
}

// RequestClose closes unless the form is customized, in which case ErrUnsavedChanges asks
// the caller to confirm with Close or SaveAndClose.
func (w *Wizard) RequestClose() error {
	if w.Customized() {
		return ErrUnsavedChanges
	}
	w.Close()
	return nil
}

// Close hides the modal and remembers the current step.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.persistStepLocked()
	w.open = false
}

// SaveProgress persists the form without touching the completed flag.
func (w *Wizard) SaveProgress(ctx context.Context) error {
	data := w.Data()
	res := w.saver.Save(ctx, data)
	if !res.OK {
		logger.L().Warn("save progress failed", zap.Error(res.Err))
		return res.Err
	}
	logger.L().Info("progress saved")
	return nil
}

// SaveAndClose saves, then closes only when the save succeeded.
func (w *Wizard) SaveAndClose(ctx context.Context) error {
	if err := w.SaveProgress(ctx); err != nil {
		return err
	}
	w.Close()
	return nil
}

// Complete saves the form, marks onboarding completed and closes the modal. firstTime is true
// only for the first completion ever recorded in storage. A failed save changes nothing.
func (w *Wizard) Complete(ctx context.Context) (firstTime bool, err error) {
	data := w.Data()
	res := w.saver.Save(ctx, data)
	if !res.OK {
		logger.L().Warn("complete failed", zap.Error(res.Err))
		return false, res.Err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.completed = true
	w.open = false
	w.setFlag(session.KeyOnboardingCompleted, true)
	w.persistStepLocked()

	if !session.GetBool(w.session, session.KeyCompletedBefore) {
		w.setFlag(session.KeyCompletedBefore, true)
		firstTime = true
	}
	logger.L().Info("onboarding completed", zap.Bool("first_time", firstTime))
	return firstTime, nil
}

// Reset clears the completion and step bookkeeping, restores the blank form and reopens at
// step 0. Persisted content is left alone.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeKey(session.KeyOnboardingCompleted)
	w.removeKey(session.KeyLastStep)
	w.completed = false
	w.current = 0
	w.data = models.DefaultOnboardingData()
	w.validation = validators.Result{Valid: true}
	w.open = true
	logger.L().Info("onboarding reset")
}

// Prefill replaces the form with the currently persisted content. Unreadable domains keep
// their form defaults; Deployment is wizard-only and is not touched.
func (w *Wizard) Prefill(ctx context.Context, r store.Reader) {
	d := w.Data()
	if v, err := r.PersonalInfo(ctx); err == nil {
		d.PersonalInfo = v
	}
	if v, err := r.Skills(ctx); err == nil && v != nil {
		d.Skills = v
	}
	if v, err := r.Experience(ctx); err == nil {
		exp := v.Normalize()
		d.WorkExperience, d.Education = exp.WorkExperience, exp.Education
	}
	if v, err := r.Projects(ctx); err == nil && v != nil {
		d.Projects = v
	}
	if v, err := r.ContactConfig(ctx); err == nil {
		d.ContactForm = v.Normalize()
	}
	if v, err := r.Resume(ctx); err == nil {
		d.Resume = v
	}

	w.mu.Lock()
	w.data = d
	w.mu.Unlock()
	logger.L().Info("form prefilled",
		zap.String("name", d.PersonalInfo.Name),
		zap.Int("skills", len(d.Skills)),
		zap.Int("work_experience", len(d.WorkExperience)),
		zap.Int("projects", len(d.Projects)),
		zap.String("contact_service", string(d.ContactForm.Service)),
	)
}

func (w *Wizard) persistStepLocked() {
	if err := w.session.Set(session.KeyLastStep, strconv.Itoa(w.current)); err != nil {
		logger.L().Warn("persist wizard step failed", zap.Error(err))
	}
}

func (w *Wizard) setFlag(key string, v bool) {
	if err := session.SetBool(w.session, key, v); err != nil {
		logger.L().Warn("persist wizard flag failed", zap.String("key", key), zap.Error(err))
	}
}

func (w *Wizard) removeKey(key string) {
	if err := w.session.Remove(key); err != nil {
		logger.L().Warn("clear wizard key failed", zap.String("key", key), zap.Error(err))
	}
}

// Package store holds the in-memory copy of every content domain and notifies
// subscribers when the domain they watch changes.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/portfolio-studio/engine/internal/models"
	"github.com/portfolio-studio/engine/internal/session"
	"github.com/portfolio-studio/engine/pkg/logger"
	"github.com/portfolio-studio/engine/pkg/utils"
)

// Reader is the read side of the content endpoints.
type Reader interface {
	PersonalInfo(ctx context.Context) (models.PersonalInfo, error)
	Skills(ctx context.Context) ([]string, error)
	Experience(ctx context.Context) (models.Experience, error)
	Projects(ctx context.Context) ([]models.Project, error)
	ContactConfig(ctx context.Context) (models.ContactConfig, error)
	Resume(ctx context.Context) (models.ResumeMeta, error)
}

// State is one observable version of the store.
type State struct {
	PersonalInfo   models.PersonalInfo     `json:"personalInfo"`
	Skills         []string                `json:"skills"`
	WorkExperience []models.WorkExperience `json:"workExperience"`
	Education      []models.Education      `json:"education"`
	Projects       []models.Project        `json:"projects"`
	ContactConfig  models.ContactConfig    `json:"contactConfig"`
	Resume         models.ResumeMeta       `json:"resume"`
	// Loaded is never persisted and is false after construction.
	Loaded bool `json:"-"`
}

// DefaultState is the state of a store that has nothing persisted.
func DefaultState() State {
	exp := models.DefaultExperience()
	return State{
		PersonalInfo:   models.DefaultPersonalInfo(),
		Skills:         models.DefaultSkills(),
		WorkExperience: exp.WorkExperience,
		Education:      exp.Education,
		Projects:       models.DefaultProjects(),
		ContactConfig:  models.DefaultContactConfig(),
		Resume:         models.DefaultResume(),
	}
}

func (s State) clone() State {
	out := s
	out.Skills = append([]string{}, s.Skills...)
	out.WorkExperience = append([]models.WorkExperience{}, s.WorkExperience...)
	out.Education = append([]models.Education{}, s.Education...)
	out.Projects = models.CloneProjects(s.Projects)
	return out
}

func (s State) value(d models.Domain) any {
	switch d {
	case models.DomainPersonalInfo:
		return s.PersonalInfo
	case models.DomainSkills:
		return s.Skills
	case models.DomainExperience:
		return models.Experience{WorkExperience: s.WorkExperience, Education: s.Education}
	case models.DomainProjects:
		return s.Projects
	case models.DomainContactConfig:
		return s.ContactConfig
	case models.DomainResume:
		return s.Resume
	}
	return nil
}

// Reader serves s as a Reader, so a form can be prefilled from the store without another
// round trip to the content endpoints. Reads return copies and never fail.
func (s State) Reader() Reader {
	return stateReader{st: s.clone()}
}

type stateReader struct {
	st State
}

func (r stateReader) PersonalInfo(context.Context) (models.PersonalInfo, error) {
	return r.st.PersonalInfo, nil
}

func (r stateReader) Skills(context.Context) ([]string, error) {
	return append([]string{}, r.st.Skills...), nil
}

func (r stateReader) Experience(context.Context) (models.Experience, error) {
	return r.st.clone().value(models.DomainExperience).(models.Experience), nil
}

func (r stateReader) Projects(context.Context) ([]models.Project, error) {
	return models.CloneProjects(r.st.Projects), nil
}

func (r stateReader) ContactConfig(context.Context) (models.ContactConfig, error) {
	return r.st.ContactConfig, nil
}

func (r stateReader) Resume(context.Context) (models.ResumeMeta, error) {
	return r.st.Resume, nil
}

// Update carries the domains a bulk transition replaces; nil fields are left alone.
type Update struct {
	PersonalInfo   *models.PersonalInfo
	Skills         *[]string
	WorkExperience *[]models.WorkExperience
	Education      *[]models.Education
	Projects       *[]models.Project
	ContactConfig  *models.ContactConfig
	Resume         *models.ResumeMeta
}

// UpdateFrom builds an Update replacing every domain carried by the wizard aggregate.
func UpdateFrom(data models.OnboardingData) Update {
	d := data.Clone()
	exp := d.Experience()
	return Update{
		PersonalInfo:   &d.PersonalInfo,
		Skills:         &d.Skills,
		WorkExperience: &exp.WorkExperience,
		Education:      &exp.Education,
		Projects:       &d.Projects,
		ContactConfig:  &d.ContactForm,
		Resume:         &d.Resume,
	}
}

// Listener receives the state that produced the notification.
type Listener func(State)

type subscription struct {
	id     int
	domain models.Domain
	fn     Listener
}

// Store is created with New, populated with LoadInitialData and released with Close.
type Store struct {
	reader  Reader
	storage session.Storage

	mu     sync.RWMutex
	state  State
	sums   map[models.Domain][32]byte
	subs   []subscription
	loaded map[int]func(bool)
	nextID int

	// notifications are delivered in transition order by one goroutine at a time
	pending  []notification
	draining bool

	loads singleflight.Group
}

// New builds a store restored from the snapshot kept in storage, if any.
func New(reader Reader, storage session.Storage) *Store {
	s := &Store{
		reader:  reader,
		storage: storage,
		state:   restore(storage),
		loaded:  map[int]func(bool){},
	}
	s.sums = s.state.sums()
	return s
}

func restore(storage session.Storage) State {
	st := DefaultState()
	if storage == nil {
		return st
	}
	raw, ok, err := storage.Get(session.KeyStoreSnapshot)
	if err != nil {
		logger.L().Warn("read store snapshot failed", zap.Error(err))
		return st
	}
	if !ok {
		return st
	}
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		logger.L().Warn("discarding unreadable store snapshot", zap.Error(err))
		return DefaultState()
	}
	st.Loaded = false
	return st.normalized()
}

func (s State) normalized() State {
	if s.Skills == nil {
		s.Skills = models.DefaultSkills()
	}
	exp := models.Experience{WorkExperience: s.WorkExperience, Education: s.Education}.Normalize()
	s.WorkExperience, s.Education = exp.WorkExperience, exp.Education
	if s.Projects == nil {
		s.Projects = models.DefaultProjects()
	}
	s.ContactConfig = s.ContactConfig.Normalize()
	return s
}

func (s State) sums() map[models.Domain][32]byte {
	out := make(map[models.Domain][32]byte, len(models.AllDomains()))
	for _, d := range models.AllDomains() {
		out[d] = utils.SumJSON(s.value(d))
	}
	return out
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loaded
}

func (s *Store) PersonalInfo() models.PersonalInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.PersonalInfo
}

func (s *Store) Skills() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.state.Skills...)
}

func (s *Store) WorkExperience() []models.WorkExperience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WorkExperience{}, s.state.WorkExperience...)
}

func (s *Store) Education() []models.Education {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Education{}, s.state.Education...)
}

func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneProjects(s.state.Projects)
}

func (s *Store) ContactConfig() models.ContactConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ContactConfig
}

func (s *Store) Resume() models.ResumeMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Resume
}

// Subscribe calls fn after every transition that changes domain. The returned func unsubscribes.
func (s *Store) Subscribe(domain models.Domain, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, domain: domain, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeLoaded calls fn whenever the loaded flag flips.
func (s *Store) SubscribeLoaded(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.loaded[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.loaded, id)
	}
}

func (s *Store) SetPersonalInfo(info models.PersonalInfo) {
	s.UpdateAll(Update{PersonalInfo: &info})
}

func (s *Store) SetSkills(skills []string) {
	s.UpdateAll(Update{Skills: &skills})
}

func (s *Store) SetWorkExperience(work []models.WorkExperience) {
	s.UpdateAll(Update{WorkExperience: &work})
}

func (s *Store) SetEducation(edu []models.Education) {
	s.UpdateAll(Update{Education: &edu})
}

func (s *Store) SetProjects(projects []models.Project) {
	s.UpdateAll(Update{Projects: &projects})
}

func (s *Store) SetContactConfig(cfg models.ContactConfig) {
	s.UpdateAll(Update{ContactConfig: &cfg})
}

func (s *Store) SetResume(meta models.ResumeMeta) {
	s.UpdateAll(Update{Resume: &meta})
}

// UpdateAll applies every non-nil field of u as one transition. It never persists anything.
func (s *Store) UpdateAll(u Update) {
	s.transition(func(st *State) {
		if u.PersonalInfo != nil {
			st.PersonalInfo = *u.PersonalInfo
		}
		if u.Skills != nil {
			st.Skills = append([]string{}, *u.Skills...)
		}
		if u.WorkExperience != nil {
			st.WorkExperience = append([]models.WorkExperience{}, *u.WorkExperience...)
		}
		if u.Education != nil {
			st.Education = append([]models.Education{}, *u.Education...)
		}
		if u.Projects != nil {
			st.Projects = models.CloneProjects(*u.Projects)
		}
		if u.ContactConfig != nil {
			st.ContactConfig = *u.ContactConfig
		}
		if u.Resume != nil {
			st.Resume = *u.Resume
		}
	})
}

// ReloadFromFiles replaces every domain with what the reader returns. The store reads as
// not loaded until all reads finish; a failed read yields that domain's default.
func (s *Store) ReloadFromFiles(ctx context.Context) error {
	s.transition(func(st *State) { st.Loaded = false })

	next := DefaultState()
	var g errgroup.Group
	g.Go(func() error {
		next.PersonalInfo = readOr(ctx, models.DomainPersonalInfo, s.reader.PersonalInfo, next.PersonalInfo)
		return nil
	})
	g.Go(func() error {
		next.Skills = readOr(ctx, models.DomainSkills, s.reader.Skills, next.Skills)
		return nil
	})
	g.Go(func() error {
		exp := readOr(ctx, models.DomainExperience, s.reader.Experience, models.DefaultExperience()).Normalize()
		next.WorkExperience, next.Education = exp.WorkExperience, exp.Education
		return nil
	})
	g.Go(func() error {
		next.Projects = readOr(ctx, models.DomainProjects, s.reader.Projects, next.Projects)
		return nil
	})
	g.Go(func() error {
		next.ContactConfig = readOr(ctx, models.DomainContactConfig, s.reader.ContactConfig, next.ContactConfig)
		return nil
	})
	g.Go(func() error {
		next.Resume = readOr(ctx, models.DomainResume, s.reader.Resume, next.Resume)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.L().Warn("reload canceled, keeping current content", zap.Error(err))
		s.transition(func(st *State) { st.Loaded = true })
		return err
	}

	next = next.normalized()
	next.Loaded = true
	s.transition(func(st *State) { *st = next })
	logger.L().Info("store reloaded")
	return nil
}

// LoadInitialData loads once. Concurrent callers share the same load.
func (s *Store) LoadInitialData(ctx context.Context) error {
	if s.IsLoaded() {
		return nil
	}
	_, err, _ := s.loads.Do("initial", func() (any, error) {
		if s.IsLoaded() {
			return nil, nil
		}
		return nil, s.ReloadFromFiles(ctx)
	})
	return err
}

// Persist writes the snapshot to session storage.
func (s *Store) Persist() error {
	if s.storage == nil {
		return nil
	}
	st := s.State()
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.storage.Set(session.KeyStoreSnapshot, string(b))
}

// Close persists the snapshot and drops all subscribers.
func (s *Store) Close() error {
	err := s.Persist()
	s.mu.Lock()
	s.subs = nil
	s.loaded = map[int]func(bool){}
	s.mu.Unlock()
	return err
}

type notification struct {
	listeners []Listener
	snapshot  State
	loadedFns []func(bool)
	isLoaded  bool
}

func (n notification) deliver() {
	for _, fn := range n.listeners {
		fn(n.snapshot)
	}
	for _, fn := range n.loadedFns {
		fn(n.isLoaded)
	}
}

// transition applies fn and queues the resulting notifications. Listeners run outside the
// lock and in transition order; a transition made from inside a listener is delivered after
// that listener returns.
func (s *Store) transition(fn func(*State)) {
	s.mu.Lock()
	wasLoaded := s.state.Loaded
	fn(&s.state)
	sums := s.state.sums()
	changed := map[models.Domain]bool{}
	for d, sum := range sums {
		if s.sums[d] != sum {
			changed[d] = true
		}
	}
	s.sums = sums

	n := notification{isLoaded: s.state.Loaded}
	for _, sub := range s.subs {
		if changed[sub.domain] {
			n.listeners = append(n.listeners, sub.fn)
		}
	}
	if wasLoaded != n.isLoaded {
		for _, fn := range s.loaded {
			n.loadedFns = append(n.loadedFns, fn)
		}
	}
	if len(n.listeners) == 0 && len(n.loadedFns) == 0 {
		s.mu.Unlock()
		return
	}
	n.snapshot = s.state.clone()
	s.pending = append(s.pending, n)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		next.deliver()
	}
}

func readOr[T any](ctx context.Context, d models.Domain, read func(context.Context) (T, error), def T) T {
	v, err := read(ctx)
	if err != nil {
		logger.L().Warn("content read failed, using default", zap.String("domain", string(d)), zap.Error(err))
		return def
	}
	return v
}

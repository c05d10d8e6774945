// Package draft holds one survey under edit and applies every editing
// operation to it. After each mutation the question list and every option
// list carry dense 1..N display orders.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/guard"
	"github.com/aura-survey/builder/internal/identity"
	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/persistence"
	"github.com/aura-survey/builder/internal/reorder"
	"github.com/aura-survey/builder/internal/wire"
)

var (
	// ErrDiscarded is returned by every operation on a discarded draft.
	ErrDiscarded = errors.New("draft discarded")
	// ErrUnknownType is returned when adding a question of an unsupported type.
	ErrUnknownType = errors.New("unknown question type")
	// ErrDeleteInProgress is returned when a delete for the same question is already in flight.
	ErrDeleteInProgress = errors.New("delete already in progress")
	// ErrOutOfRange is returned by moves with an index outside the list.
	ErrOutOfRange = reorder.ErrOutOfRange
)

// API is the subset of the persistence API a draft talks to.
type API interface {
	GetSurvey(ctx context.Context, id string) (*wire.Survey, error)
	CreateSurvey(ctx context.Context, s wire.Survey) (*wire.Survey, error)
	UpdateSurvey(ctx context.Context, id string, s wire.Survey) (*wire.Survey, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// SurveyPatch updates survey-level fields. Nil fields are left alone.
type SurveyPatch struct {
	Title                    *string `json:"title"`
	Description              *string `json:"description"`
	IsPublic                 *bool   `json:"is_public"`
	AllowMultipleSubmissions *bool   `json:"allow_multiple_submissions"`
	RequiresLogin            *bool   `json:"requires_login"`
}

// QuestionPatch updates question fields. Nil fields are left alone; the id,
// type and display order can never be patched.
type QuestionPatch struct {
	Text       *string `json:"text"`
	IsRequired *bool   `json:"is_required"`
}

// Option configures a Store.
type Option func(*Store)

// WithGuard shares an in-flight guard between drafts.
func WithGuard(g guard.Guard) Option { return func(s *Store) { s.guard = g } }

// WithLogger sets the logger used for network failures.
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l } }

// WithIDSource replaces the temporary id generator.
func WithIDSource(fn func() string) Option { return func(s *Store) { s.newID = fn } }

// WithGuardTTL bounds how long a delete claim may be held.
func WithGuardTTL(d time.Duration) Option { return func(s *Store) { s.guardTTL = d } }

// Store is a survey draft. It is safe for concurrent use; network calls never
// run while the draft lock is held.
type Store struct {
	mu        sync.Mutex
	survey    models.Survey
	saving    bool
	discarded bool
	// deleting holds persisted question ids with an API delete in flight.
	deleting map[string]bool

	api      API
	guard    guard.Guard
	logger   *zap.Logger
	newID    func() string
	guardTTL time.Duration
}

// New creates an empty draft for a new survey.
func New(api API, opts ...Option) *Store {
	return Hydrate(models.Survey{
		Status:    models.StatusDraft,
		Settings:  models.DefaultSettings(),
		Questions: []models.Question{},
	}, api, opts...)
}

// Hydrate creates a draft from an existing survey. Questions and options are
// ordered by display order, and entries without an id are given a temporary
// one so they can be addressed.
func Hydrate(survey models.Survey, api API, opts ...Option) *Store {
	s := &Store{
		survey:   survey.Clone(),
		deleting: make(map[string]bool),
		api:      api,
		newID:    identity.NewTemp,
		guardTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = guard.NewInMemory()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.survey.Status == "" {
		s.survey.Status = models.StatusDraft
	}
	qs := s.survey.Questions
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].DisplayOrder < qs[j].DisplayOrder })
	for i := range s.survey.Questions {
		q := &s.survey.Questions[i]
		if q.ID == "" {
			q.ID = s.newID()
		}
		options := q.Options
		sort.SliceStable(options, func(i, j int) bool { return options[i].DisplayOrder < options[j].DisplayOrder })
		for j := range q.Options {
			if q.Options[j].ID == "" {
				q.Options[j].ID = s.newID()
			}
		}
		s.renumberOptions(q)
	}
	s.renumberQuestions()
	return s
}

// Load fetches survey id and hydrates a draft from it. A missing survey
// yields an error wrapping persistence.ErrNotFound.
func Load(ctx context.Context, api API, id string, opts ...Option) (*Store, error) {
	fetched, err := api.GetSurvey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", id, err)
	}
	return Hydrate(wire.ToDraft(*fetched), api, opts...), nil
}

// Survey returns a deep copy of the current draft.
func (s *Store) Survey() models.Survey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.survey.Clone()
}

// Discard drops the draft. Further operations fail with ErrDiscarded, and
// in-flight calls that resolve later leave no trace.
func (s *Store) Discard() {
	s.mu.Lock()
	s.discarded = true
	s.mu.Unlock()
}

// Discarded reports whether Discard has been called.
func (s *Store) Discarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

// UpdateSurvey merges the patch into the survey settings.
func (s *Store) UpdateSurvey(p SurveyPatch) (models.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return models.Survey{}, ErrDiscarded
	}
	if p.Title != nil {
		s.survey.Title = *p.Title
	}
	if p.Description != nil {
		s.survey.Description = *p.Description
	}
	if p.IsPublic != nil {
		s.survey.Settings.IsPublic = *p.IsPublic
	}
	if p.AllowMultipleSubmissions != nil {
		s.survey.Settings.AllowMultipleSubmissions = *p.AllowMultipleSubmissions
	}
	if p.RequiresLogin != nil {
		s.survey.Settings.RequiresLogin = *p.RequiresLogin
	}
	return s.survey.Clone(), nil
}

// AddQuestion appends an empty, optional question of type t. Choice questions
// are seeded with a single "Option 1".
func (s *Store) AddQuestion(t models.QuestionType) (models.Question, error) {
	if !t.Valid() {
		return models.Question{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return models.Question{}, ErrDiscarded
	}

	q := models.Question{
		ID:           s.newID(),
		Type:         t,
		DisplayOrder: len(s.survey.Questions) + 1,
		Options:      []models.Option{},
	}
	if t.IsChoice() {
		q.Options = append(q.Options, models.Option{ID: s.newID(), Text: "Option 1", DisplayOrder: 1})
	}
	s.survey.Questions = append(s.survey.Questions, q)
	return q.Clone(), nil
}

// UpdateQuestion merges the patch into question id. An unknown id is a no-op
// reported through ok, so an update racing a delete is harmless.
func (s *Store) UpdateQuestion(id string, p QuestionPatch) (q models.Question, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return models.Question{}, false, ErrDiscarded
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Question{}, false, nil
	}
	target := &s.survey.Questions[idx]
	if p.Text != nil {
		target.Text = *p.Text
	}
	if p.IsRequired != nil {
		target.IsRequired = *p.IsRequired
	}
	return target.Clone(), true, nil
}

// SetCondition stores (or, with nil, clears) the display rule of question id.
func (s *Store) SetCondition(id string, c *models.Condition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return false, ErrDiscarded
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	if c == nil {
		s.survey.Questions[idx].Condition = nil
	} else {
		cc := *c
		s.survey.Questions[idx].Condition = &cc
	}
	return true, nil
}

// DeleteQuestion removes question id. A persisted question is first deleted
// through the API; if that fails the local question is kept. A second delete
// for the same id while the first is in flight fails with ErrDeleteInProgress.
// Persisted questions cannot be deleted while a save is in flight
// (ErrSaveInProgress). The API reporting the question as already gone counts
// as success.
func (s *Store) DeleteQuestion(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return false, ErrDiscarded
	}
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if identity.IsTemporary(id) {
		s.removeQuestion(idx)
		s.mu.Unlock()
		return true, nil
	}
	if s.saving {
		s.mu.Unlock()
		return false, ErrSaveInProgress
	}
	if s.deleting[id] {
		s.mu.Unlock()
		return false, ErrDeleteInProgress
	}
	s.deleting[id] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, id)
		s.mu.Unlock()
	}()

	release, acquired, err := s.guard.TryAcquire(ctx, "question:"+id, s.guardTTL)
	if err != nil {
		return false, fmt.Errorf("delete question %s: %w", id, err)
	}
	if !acquired {
		return false, ErrDeleteInProgress
	}
	defer release()

	if err := s.api.DeleteQuestion(ctx, id); err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			s.logger.Warn("delete question failed", zap.String("question_id", id), zap.Error(err))
			return false, fmt.Errorf("delete question %s: %w", id, err)
		}
		s.logger.Debug("question already deleted", zap.String("question_id", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return false, nil
	}
	if idx = s.indexOf(id); idx >= 0 {
		s.removeQuestion(idx)
	}
	return true, nil
}

// MoveQuestion moves the question at from to position to and renumbers.
func (s *Store) MoveQuestion(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return ErrDiscarded
	}
	moved, err := reorder.Move(s.survey.Questions, from, to)
	if err != nil {
		return err
	}
	s.survey.Questions = moved
	s.renumberQuestions()
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, q := range s.survey.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeQuestion(idx int) {
	qs := s.survey.Questions
	s.survey.Questions = append(qs[:idx:idx], qs[idx+1:]...)
	s.renumberQuestions()
}

func (s *Store) renumberQuestions() {
	if s.survey.Questions == nil {
		s.survey.Questions = []models.Question{}
	}
	reorder.Renumber(s.survey.Questions, func(q *models.Question, n int) { q.DisplayOrder = n })
}

func (s *Store) renumberOptions(q *models.Question) {
	if q.Options == nil {
		q.Options = []models.Option{}
	}
	reorder.Renumber(q.Options, func(o *models.Option, n int) { o.DisplayOrder = n })
}

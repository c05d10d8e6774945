package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-survey/builder/internal/identity"
	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/wire"
)

var (
	ErrTitleRequired        = errors.New("please enter a survey title")
	ErrNoQuestions          = errors.New("please add at least one question")
	ErrQuestionTextRequired = errors.New("question text is required")
	ErrSaveInProgress       = errors.New("save already in progress")
	// ErrMissingID is returned when the API accepts a new survey but does not
	// report the id it assigned.
	ErrMissingID = errors.New("persistence api returned no survey id")
)

// ValidationError lists every problem that blocks a save. errors.Is matches
// each of the wrapped problems.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.Problems }

// Validate checks the draft. Every save needs a title and at least one
// question; publishing also needs text on every question.
func (s *Store) Validate(publish bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validate(s.survey, publish)
}

func validate(survey models.Survey, publish bool) error {
	var problems []error
	if strings.TrimSpace(survey.Title) == "" {
		problems = append(problems, ErrTitleRequired)
	}
	if len(survey.Questions) == 0 {
		problems = append(problems, ErrNoQuestions)
	}
	if publish {
		for _, q := range survey.Questions {
			if strings.TrimSpace(q.Text) == "" {
				problems = append(problems, fmt.Errorf("question %d: %w", q.DisplayOrder, ErrQuestionTextRequired))
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// Save validates the draft and sends it to the API, creating the survey on
// first save and updating it afterwards. With publish the saved status is
// published. Temporary ids are replaced by the ids the API assigned so a
// later save updates rather than duplicates. Edits made while the call is
// in flight are kept. Only one save runs at a time, and none while a
// question delete is in flight.
func (s *Store) Save(ctx context.Context, publish bool) (models.Survey, error) {
	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return models.Survey{}, ErrDiscarded
	}
	if err := validate(s.survey, publish); err != nil {
		s.mu.Unlock()
		return models.Survey{}, err
	}
	if s.saving {
		s.mu.Unlock()
		return models.Survey{}, ErrSaveInProgress
	}
	// A snapshot taken now could resend a question the API is deleting.
	if len(s.deleting) > 0 {
		s.mu.Unlock()
		return models.Survey{}, ErrDeleteInProgress
	}
	s.saving = true
	snapshot := s.survey.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	if publish {
		snapshot.Status = models.StatusPublished
	}
	persisted, err := s.push(ctx, snapshot)
	if err != nil {
		s.logger.Warn("save survey failed",
			zap.String("survey_id", snapshot.ID),
			zap.Bool("publish", publish),
			zap.Error(err),
		)
		return models.Survey{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return persisted, nil
	}
	s.reconcile(snapshot, persisted)
	s.logger.Info("survey saved",
		zap.String("survey_id", s.survey.ID),
		zap.String("status", string(s.survey.Status)),
		zap.Int("questions", len(s.survey.Questions)),
	)
	return s.survey.Clone(), nil
}

// push sends snapshot and returns the survey as the API now holds it.
func (s *Store) push(ctx context.Context, snapshot models.Survey) (models.Survey, error) {
	body := wire.FromDraft(snapshot)

	var (
		saved *wire.Survey
		err   error
	)
	if snapshot.ID == "" || identity.IsTemporary(snapshot.ID) {
		saved, err = s.api.CreateSurvey(ctx, body)
	} else {
		saved, err = s.api.UpdateSurvey(ctx, snapshot.ID, body)
	}
	if err != nil {
		return models.Survey{}, fmt.Errorf("save survey: %w", err)
	}

	persisted := wire.ToDraft(*saved)
	if saved.Status == "" {
		persisted.Status = snapshot.Status
	}
	if persisted.ID == "" && !identity.IsTemporary(snapshot.ID) {
		persisted.ID = snapshot.ID
	}
	if persisted.ID == "" {
		return models.Survey{}, fmt.Errorf("save survey: %w", ErrMissingID)
	}

	// Some deployments answer a write with the survey row only; read it back
	// to learn the question ids.
	if len(persisted.Questions) == 0 && len(snapshot.Questions) > 0 {
		fetched, err := s.api.GetSurvey(ctx, persisted.ID)
		if err != nil {
			return models.Survey{}, fmt.Errorf("refetch survey %s: %w", persisted.ID, err)
		}
		status := persisted.Status
		id := persisted.ID
		persisted = wire.ToDraft(*fetched)
		if persisted.ID == "" {
			persisted.ID = id
		}
		if fetched.Status == "" {
			persisted.Status = status
		}
	}
	return persisted, nil
}

// reconcile adopts the ids and status assigned by the API. Entries are
// matched by their position in the snapshot that was sent; entries added
// after the snapshot keep their temporary ids.
func (s *Store) reconcile(snapshot, persisted models.Survey) {
	s.survey.ID = persisted.ID
	s.survey.Status = persisted.Status

	ids := make(map[string]string)
	for i, sq := range snapshot.Questions {
		if i >= len(persisted.Questions) {
			break
		}
		pq := persisted.Questions[i]
		if identity.IsTemporary(sq.ID) && pq.ID != "" && !identity.IsTemporary(pq.ID) {
			ids[sq.ID] = pq.ID
		}
		for j, so := range sq.Options {
			if j >= len(pq.Options) {
				break
			}
			po := pq.Options[j]
			if identity.IsTemporary(so.ID) && po.ID != "" && !identity.IsTemporary(po.ID) {
				ids[so.ID] = po.ID
			}
		}
	}
	if len(ids) == 0 {
		return
	}

	for i := range s.survey.Questions {
		q := &s.survey.Questions[i]
		if id, ok := ids[q.ID]; ok {
			q.ID = id
		}
		for j := range q.Options {
			if id, ok := ids[q.Options[j].ID]; ok {
				q.Options[j].ID = id
			}
		}
	}
	for i := range s.survey.Questions {
		if c := s.survey.Questions[i].Condition; c != nil {
			if id, ok := ids[c.QuestionID]; ok {
				c.QuestionID = id
			}
		}
	}
}

package draft

import (
	"fmt"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/reorder"
)

// AddOption appends "Option N" to question qid, N being the new option count.
func (s *Store) AddOption(qid string) (models.Option, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return models.Option{}, false, ErrDiscarded
	}
	q := s.question(qid)
	if q == nil {
		return models.Option{}, false, nil
	}
	n := len(q.Options) + 1
	o := models.Option{ID: s.newID(), Text: fmt.Sprintf("Option %d", n), DisplayOrder: n}
	q.Options = append(q.Options, o)
	return o, true, nil
}

// UpdateOption replaces the text of the option at index.
func (s *Store) UpdateOption(qid string, index int, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return false, ErrDiscarded
	}
	q := s.question(qid)
	if q == nil || index < 0 || index >= len(q.Options) {
		return false, nil
	}
	q.Options[index].Text = text
	return true, nil
}

// RemoveOption drops the option at index and renumbers the rest.
// Option removals are local until the next save.
func (s *Store) RemoveOption(qid string, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return false, ErrDiscarded
	}
	q := s.question(qid)
	if q == nil || index < 0 || index >= len(q.Options) {
		return false, nil
	}
	q.Options = append(q.Options[:index:index], q.Options[index+1:]...)
	s.renumberOptions(q)
	return true, nil
}

// MoveOption moves an option within its question and renumbers.
func (s *Store) MoveOption(qid string, from, to int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return false, ErrDiscarded
	}
	q := s.question(qid)
	if q == nil {
		return false, nil
	}
	moved, err := reorder.Move(q.Options, from, to)
	if err != nil {
		return false, err
	}
	q.Options = moved
	s.renumberOptions(q)
	return true, nil
}

func (s *Store) question(id string) *models.Question {
	if idx := s.indexOf(id); idx >= 0 {
		return &s.survey.Questions[idx]
	}
	return nil
}

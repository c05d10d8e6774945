// Package respond collects one respondent's answers to a survey and checks
// them before submission.
package respond

import (
	"errors"
	"fmt"

	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/wire"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrWrongShape is returned when a list is given to a single-answer
	// question or a scalar to a checkbox question.
	ErrWrongShape = errors.New("answer does not fit question type")
)

// Sheet holds the answers of one respondent. It is not safe for concurrent use.
type Sheet struct {
	questions []models.Question
	answers   map[string]models.Answer
}

// NewSheet starts an empty sheet: checkbox answers begin as an empty list,
// everything else as an empty string.
func NewSheet(questions []models.Question) *Sheet {
	s := &Sheet{
		questions: make([]models.Question, len(questions)),
		answers:   make(map[string]models.Answer, len(questions)),
	}
	for i, q := range questions {
		s.questions[i] = q.Clone()
		if q.Type == models.QuestionCheckbox {
			s.answers[q.ID] = models.List()
		} else {
			s.answers[q.ID] = models.Scalar("")
		}
	}
	return s
}

// Fill applies every answer in answers. Ids that are not questions of the
// survey are rejected.
func (s *Sheet) Fill(answers map[string]models.Answer) error {
	for id, a := range answers {
		var err error
		if a.IsList {
			err = s.SetList(id, a.Values)
		} else {
			err = s.Set(id, a.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Set answers a single-answer question.
func (s *Sheet) Set(questionID, value string) error {
	q, err := s.question(questionID)
	if err != nil {
		return err
	}
	if q.Type == models.QuestionCheckbox {
		return fmt.Errorf("%w: %s expects a list", ErrWrongShape, questionID)
	}
	s.answers[questionID] = models.Scalar(value)
	return nil
}

// SetList replaces the selections of a checkbox question.
func (s *Sheet) SetList(questionID string, values []string) error {
	q, err := s.question(questionID)
	if err != nil {
		return err
	}
	if q.Type != models.QuestionCheckbox {
		return fmt.Errorf("%w: %s expects a single value", ErrWrongShape, questionID)
	}
	vs := make([]string, 0, len(values))
	for _, v := range values {
		if !contains(vs, v) {
			vs = append(vs, v)
		}
	}
	s.answers[questionID] = models.List(vs...)
	return nil
}

// Toggle checks or unchecks option on a checkbox question. Checking an
// option twice keeps a single selection.
func (s *Sheet) Toggle(questionID, option string, checked bool) error {
	q, err := s.question(questionID)
	if err != nil {
		return err
	}
	if q.Type != models.QuestionCheckbox {
		return fmt.Errorf("%w: %s is not a checkbox question", ErrWrongShape, questionID)
	}
	current := s.answers[questionID].Values
	next := make([]string, 0, len(current)+1)
	for _, v := range current {
		if v != option {
			next = append(next, v)
		}
	}
	if checked {
		next = append(next, option)
	}
	s.answers[questionID] = models.List(next...)
	return nil
}

// Answer returns the current answer to questionID.
func (s *Sheet) Answer(questionID string) models.Answer {
	return s.answers[questionID]
}

// Validate returns one message per required question left unanswered, in
// survey order.
func (s *Sheet) Validate() []string {
	var problems []string
	for _, q := range s.questions {
		if q.IsRequired && !s.answers[q.ID].Present() {
			problems = append(problems, fmt.Sprintf("%q is required", q.Text))
		}
	}
	return problems
}

// Submission flattens the sheet to the wire body for surveyID.
func (s *Sheet) Submission(surveyID string) wire.Submission {
	return wire.NewSubmission(surveyID, s.questions, s.answers)
}

func (s *Sheet) question(id string) (models.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return models.Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
}

func contains(vs []string, v string) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

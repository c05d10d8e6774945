package models

import "time"

// QuestionType is the closed set of question kinds an editor can add.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionDropdown QuestionType = "dropdown"
	QuestionRating   QuestionType = "rating"
)

// QuestionTypes lists every supported type in palette order.
var QuestionTypes = []QuestionType{
	QuestionText, QuestionTextarea, QuestionRadio, QuestionCheckbox, QuestionDropdown, QuestionRating,
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionRadio, QuestionCheckbox, QuestionDropdown, QuestionRating:
		return true
	}
	return false
}

// IsChoice reports whether questions of this type carry options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionRadio || t == QuestionCheckbox || t == QuestionDropdown
}

// Status is the publication state of a survey.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// Settings holds the visibility and behavior flags of a survey.
type Settings struct {
	IsPublic                 bool `json:"is_public"`
	AllowMultipleSubmissions bool `json:"allow_multiple_submissions"`
	RequiresLogin            bool `json:"requires_login"`
}

// DefaultSettings returns the flags a new survey starts with.
func DefaultSettings() Settings {
	return Settings{IsPublic: true}
}

// Survey is the editing representation of a survey.
// ID is empty until the survey has been persisted.
type Survey struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Settings    Settings   `json:"settings"`
	Questions   []Question `json:"questions"`
}

// Question is one entry of a survey. Type is fixed at creation.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	IsRequired   bool         `json:"is_required"`
	DisplayOrder int          `json:"display_order"`
	Options      []Option     `json:"options"`
	Condition    *Condition   `json:"condition,omitempty"`
}

// Option is one choice of a radio, checkbox or dropdown question.
type Option struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	DisplayOrder int    `json:"display_order"`
}

// Condition operators offered by the editor.
const (
	OperatorEquals    = "equals"
	OperatorContains  = "contains"
	OperatorNotEquals = "not_equals"
)

// Condition is a conditional-display rule attached to a question.
// It is editor metadata only: nothing evaluates it and it is not persisted.
type Condition struct {
	QuestionID string `json:"question_id"`
	Operator   string `json:"operator"`
	Value      string `json:"value"`
}

// Clone returns a deep copy of the survey.
func (s Survey) Clone() Survey {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Options = make([]Option, len(q.Options))
	copy(out.Options, q.Options)
	if q.Condition != nil {
		c := *q.Condition
		out.Condition = &c
	}
	return out
}

// OptionTexts returns the option texts in display order.
func (q Question) OptionTexts() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Text
	}
	return out
}

// SurveySummary is the dashboard view of a survey owned by a user.
type SurveySummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Responses   int       `json:"responses"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Package wire translates between the editing representation of a survey and
// the field layout of the persistence API. No other package reads or writes
// wire field names.
package wire

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/aura-survey/builder/internal/identity"
	"github.com/aura-survey/builder/internal/models"
	"github.com/aura-survey/builder/internal/reorder"
)

// ID is a persistence identifier. The API may send it as a string or a number.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func ptrID(id *string) *ID {
	if id == nil {
		return nil
	}
	v := ID(*id)
	return &v
}

// Survey is the wire shape of a survey with nested questions.
type Survey struct {
	ID                       ID         `json:"id,omitempty"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	Status                   string     `json:"status"`
	IsPublic                 *bool      `json:"is_public"`
	AllowMultipleSubmissions *bool      `json:"allow_multiple_submissions"`
	RequiresLogin            *bool      `json:"requires_login"`
	Questions                []Question `json:"questions"`
}

// Question is the wire shape of a question. A nil ID asks the API to create it.
type Question struct {
	ID           *ID      `json:"id"`
	QuestionText string   `json:"question_text"`
	Type         string   `json:"type"`
	IsRequired   bool     `json:"is_required"`
	DisplayOrder int      `json:"display_order"`
	Options      []Option `json:"options"`
}

// UnmarshalJSON tolerates the field-name variants the API has used over time:
// question_text/text/question and is_required/required.
func (q *Question) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID           *ID      `json:"id"`
		QuestionText *string  `json:"question_text"`
		Text         *string  `json:"text"`
		Question     *string  `json:"question"`
		Type         string   `json:"type"`
		IsRequired   *bool    `json:"is_required"`
		Required     *bool    `json:"required"`
		DisplayOrder *int     `json:"display_order"`
		CamelOrder   *int     `json:"displayOrder"`
		Options      []Option `json:"options"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*q = Question{ID: aux.ID, Type: aux.Type, Options: aux.Options}
	q.QuestionText = firstString(aux.QuestionText, aux.Text, aux.Question)
	if aux.IsRequired != nil {
		q.IsRequired = *aux.IsRequired
	} else if aux.Required != nil {
		q.IsRequired = *aux.Required
	}
	if aux.DisplayOrder != nil {
		q.DisplayOrder = *aux.DisplayOrder
	} else if aux.CamelOrder != nil {
		q.DisplayOrder = *aux.CamelOrder
	}
	return nil
}

// Option is the wire shape of a question option.
type Option struct {
	ID           *ID    `json:"id"`
	OptionText   string `json:"option_text"`
	DisplayOrder int    `json:"display_order"`
}

// UnmarshalJSON accepts an option object (option_text or text) or a bare string.
func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = Option{OptionText: s}
		return nil
	}
	var aux struct {
		ID           *ID     `json:"id"`
		OptionText   *string `json:"option_text"`
		Text         *string `json:"text"`
		DisplayOrder int     `json:"display_order"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = Option{ID: aux.ID, OptionText: firstString(aux.OptionText, aux.Text), DisplayOrder: aux.DisplayOrder}
	return nil
}

func firstString(vs ...*string) string {
	for _, v := range vs {
		if v != nil {
			return *v
		}
	}
	return ""
}

// FromDraft maps a draft to the wire shape used by create and update requests.
// Temporary ids become null.
func FromDraft(s models.Survey) Survey {
	settings := s.Settings
	out := Survey{
		ID:                       ID(s.ID),
		Title:                    s.Title,
		Description:              s.Description,
		Status:                   string(s.Status),
		IsPublic:                 &settings.IsPublic,
		AllowMultipleSubmissions: &settings.AllowMultipleSubmissions,
		RequiresLogin:            &settings.RequiresLogin,
		Questions:                make([]Question, len(s.Questions)),
	}
	if identity.IsTemporary(s.ID) {
		out.ID = ""
	}
	for i, q := range s.Questions {
		wq := Question{
			ID:           ptrID(identity.ToWireID(q.ID)),
			QuestionText: q.Text,
			Type:         string(q.Type),
			IsRequired:   q.IsRequired,
			DisplayOrder: q.DisplayOrder,
			Options:      make([]Option, len(q.Options)),
		}
		for j, o := range q.Options {
			wq.Options[j] = Option{
				ID:           ptrID(identity.ToWireID(o.ID)),
				OptionText:   o.Text,
				DisplayOrder: o.DisplayOrder,
			}
		}
		out.Questions[i] = wq
	}
	return out
}

// ToDraft maps a fetched survey to the editing shape. Questions and options are
// sorted by display order and renumbered densely; missing options become an
// empty list and a missing status becomes draft.
func ToDraft(w Survey) models.Survey {
	settings := models.DefaultSettings()
	if w.IsPublic != nil {
		settings.IsPublic = *w.IsPublic
	}
	if w.AllowMultipleSubmissions != nil {
		settings.AllowMultipleSubmissions = *w.AllowMultipleSubmissions
	}
	if w.RequiresLogin != nil {
		settings.RequiresLogin = *w.RequiresLogin
	}
	status := models.Status(w.Status)
	if status == "" {
		status = models.StatusDraft
	}

	wqs := make([]Question, len(w.Questions))
	copy(wqs, w.Questions)
	sort.SliceStable(wqs, func(i, j int) bool { return wqs[i].DisplayOrder < wqs[j].DisplayOrder })

	out := models.Survey{
		ID:          string(w.ID),
		Title:       w.Title,
		Description: w.Description,
		Status:      status,
		Settings:    settings,
		Questions:   make([]models.Question, len(wqs)),
	}
	for i, wq := range wqs {
		out.Questions[i] = toDraftQuestion(wq)
	}
	reorder.Renumber(out.Questions, func(q *models.Question, n int) { q.DisplayOrder = n })
	return out
}

func toDraftQuestion(wq Question) models.Question {
	wos := make([]Option, len(wq.Options))
	copy(wos, wq.Options)
	sort.SliceStable(wos, func(i, j int) bool { return wos[i].DisplayOrder < wos[j].DisplayOrder })

	q := models.Question{
		Text:         wq.QuestionText,
		Type:         models.QuestionType(wq.Type),
		IsRequired:   wq.IsRequired,
		DisplayOrder: wq.DisplayOrder,
		Options:      make([]models.Option, len(wos)),
	}
	if wq.ID != nil {
		q.ID = string(*wq.ID)
	}
	for i, wo := range wos {
		o := models.Option{Text: wo.OptionText, DisplayOrder: wo.DisplayOrder}
		if wo.ID != nil {
			o.ID = string(*wo.ID)
		}
		q.Options[i] = o
	}
	reorder.Renumber(q.Options, func(o *models.Option, n int) { o.DisplayOrder = n })
	return q
}

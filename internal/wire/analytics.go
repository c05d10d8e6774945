package wire

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/aura-survey/builder/internal/models"
)

// Analytics is the body of GET /analytics/surveys/{id}: the survey plus every
// submitted response.
type Analytics struct {
	Survey
	Responses []Response `json:"responses"`
}

// Response is one submitted response as returned by the analytics endpoint.
type Response struct {
	ID          ID                       `json:"id"`
	SubmittedAt time.Time                `json:"submitted_at"`
	Answers     map[string]models.Answer `json:"answers"`
}

// UnmarshalJSON never fails on a malformed answers map or timestamp: a bad
// record degrades to an empty response instead of failing the whole report.
func (r *Response) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID          ID              `json:"id"`
		SubmittedAt *string         `json:"submitted_at"`
		CamelAt     *string         `json:"submittedAt"`
		CreatedAt   *string         `json:"created_at"`
		Answers     json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*r = Response{Answers: map[string]models.Answer{}}
		return nil
	}
	*r = Response{ID: aux.ID, SubmittedAt: parseTime(firstString(aux.SubmittedAt, aux.CamelAt, aux.CreatedAt))}
	if err := json.Unmarshal(aux.Answers, &r.Answers); err != nil || r.Answers == nil {
		r.Answers = map[string]models.Answer{}
	}
	return nil
}

// ToAnalytics maps an analytics payload to draft-shape questions and responses.
func ToAnalytics(a Analytics) (models.Survey, []models.Response) {
	survey := ToDraft(a.Survey)
	out := make([]models.Response, len(a.Responses))
	for i, r := range a.Responses {
		out[i] = models.Response{ID: string(r.ID), SubmittedAt: r.SubmittedAt, Answers: r.Answers}
		if out[i].Answers == nil {
			out[i].Answers = map[string]models.Answer{}
		}
	}
	return survey, out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

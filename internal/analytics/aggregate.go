// Package analytics turns the raw responses of a survey into per-question
// statistics and serves them over HTTP.
package analytics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aura-survey/builder/internal/models"
)

// Decimal is a statistic rendered with one decimal place. Zero renders as "0".
type Decimal float64

func (d Decimal) String() string {
	if d == 0 || math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
		return "0"
	}
	return strconv.FormatFloat(float64(d), 'f', 1, 64)
}

// MarshalJSON encodes the rendered string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func ratio(part, whole int) Decimal {
	if whole == 0 {
		return 0
	}
	return Decimal(float64(part) / float64(whole) * 100)
}

// Kind tags the statistics shape of a question.
type Kind string

const (
	KindRating   Kind = "rating"
	KindChoice   Kind = "choice"
	KindMultiple Kind = "multiple"
	KindText     Kind = "text"
	KindUnknown  Kind = "unknown"
)

// RatingBucket is how many answers gave one rating value.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// OptionCount is how many respondents picked one option.
type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage Decimal `json:"percentage"`
}

// QuestionStats holds the statistics of one question. Only the fields of
// its Kind are set.
type QuestionStats struct {
	QuestionID string              `json:"question_id"`
	Text       string              `json:"text"`
	Type       models.QuestionType `json:"type"`
	Kind       Kind                `json:"kind"`
	Total      int                 `json:"total"`

	Average      *Decimal       `json:"average,omitempty"`
	MostCommon   *int           `json:"most_common,omitempty"`
	Distribution []RatingBucket `json:"distribution,omitempty"`
	Options      []OptionCount  `json:"options,omitempty"`
	Responses    []string       `json:"responses,omitempty"`
}

// Report summarizes every question of a survey.
type Report struct {
	SurveyID        string          `json:"survey_id"`
	Title           string          `json:"title"`
	TotalResponses  int             `json:"total_responses"`
	Status          string          `json:"status"`
	LastSubmittedAt *time.Time      `json:"last_submitted_at"`
	Questions       []QuestionStats `json:"questions"`
}

// BuildReport aggregates responses for every question of survey.
func BuildReport(survey models.Survey, responses []models.Response) Report {
	r := Report{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: len(responses),
		Status:         "No responses",
		Questions:      Aggregate(survey.Questions, responses),
	}
	if len(responses) > 0 {
		r.Status = "Active"
	}
	for _, resp := range responses {
		if resp.SubmittedAt.IsZero() {
			continue
		}
		if r.LastSubmittedAt == nil || resp.SubmittedAt.After(*r.LastSubmittedAt) {
			ts := resp.SubmittedAt
			r.LastSubmittedAt = &ts
		}
	}
	return r
}

// Aggregate computes statistics for each question in order. It never fails:
// answers that do not fit a question's type are skipped.
func Aggregate(questions []models.Question, responses []models.Response) []QuestionStats {
	out := make([]QuestionStats, 0, len(questions))
	for _, q := range questions {
		out = append(out, aggregateQuestion(q, answersFor(q.ID, responses)))
	}
	return out
}

func answersFor(questionID string, responses []models.Response) []models.Answer {
	var out []models.Answer
	for _, r := range responses {
		if a, ok := r.Answers[questionID]; ok && a.Present() {
			out = append(out, a)
		}
	}
	return out
}

func aggregateQuestion(q models.Question, answers []models.Answer) QuestionStats {
	st := QuestionStats{QuestionID: q.ID, Text: q.Text, Type: q.Type}
	switch q.Type {
	case models.QuestionRating:
		st.Kind = KindRating
		rating(&st, answers)
	case models.QuestionRadio, models.QuestionDropdown:
		st.Kind = KindChoice
		choice(&st, q, answers)
	case models.QuestionCheckbox:
		st.Kind = KindMultiple
		multiple(&st, q, answers)
	case models.QuestionText, models.QuestionTextarea:
		st.Kind = KindText
		text(&st, answers)
	default:
		st.Kind = KindUnknown
		st.Total = len(answers)
	}
	return st
}

func rating(st *QuestionStats, answers []models.Answer) {
	st.Total = len(answers)
	st.Distribution = make([]RatingBucket, 5)
	for i := range st.Distribution {
		st.Distribution[i].Rating = i + 1
	}

	var sum, n int
	for _, a := range answers {
		v, ok := parseRating(a)
		if !ok {
			continue
		}
		sum += v
		n++
		if v >= 1 && v <= 5 {
			st.Distribution[v-1].Count++
		}
	}

	var avg Decimal
	if n > 0 {
		avg = Decimal(float64(sum) / float64(n))
	}
	st.Average = &avg
	most := 0
	for _, b := range st.Distribution {
		most = max(most, b.Count)
	}
	st.MostCommon = &most
}

// parseRating reads the leading integer of a scalar answer, so "4" and "4.7"
// both count as 4.
func parseRating(a models.Answer) (int, bool) {
	if a.IsList {
		return 0, false
	}
	s := strings.TrimSpace(a.Value)
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func choice(st *QuestionStats, q models.Question, answers []models.Answer) {
	st.Total = len(answers)
	counts := make(map[string]int)
	for _, a := range answers {
		if a.IsList {
			continue
		}
		counts[a.Value]++
	}
	st.Options = optionCounts(q, counts, st.Total)
}

// multiple counts each option once per respondent; percentages are relative
// to the respondents, not to the number of selections.
func multiple(st *QuestionStats, q models.Question, answers []models.Answer) {
	counts := make(map[string]int)
	for _, a := range answers {
		if !a.IsList {
			continue
		}
		st.Total++
		seen := make(map[string]bool, len(a.Values))
		for _, v := range a.Values {
			if seen[v] {
				continue
			}
			seen[v] = true
			counts[v]++
		}
	}
	st.Options = optionCounts(q, counts, st.Total)
}

func optionCounts(q models.Question, counts map[string]int, total int) []OptionCount {
	out := make([]OptionCount, 0, len(q.Options))
	for _, o := range q.Options {
		n := counts[o.Text]
		out = append(out, OptionCount{Option: o.Text, Count: n, Percentage: ratio(n, total)})
	}
	return out
}

func text(st *QuestionStats, answers []models.Answer) {
	st.Responses = make([]string, 0, len(answers))
	for _, a := range answers {
		st.Responses = append(st.Responses, a.Joined())
	}
	st.Total = len(st.Responses)
}

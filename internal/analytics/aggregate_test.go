package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/builder/internal/models"
)

func question(id string, t models.QuestionType, options ...string) models.Question {
	q := models.Question{ID: id, Text: id, Type: t, Options: []models.Option{}}
	for i, o := range options {
		q.Options = append(q.Options, models.Option{ID: o, Text: o, DisplayOrder: i + 1})
	}
	return q
}

func responses(qid string, answers ...models.Answer) []models.Response {
	out := make([]models.Response, len(answers))
	for i, a := range answers {
		out[i] = models.Response{Answers: map[string]models.Answer{qid: a}}
	}
	return out
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   Decimal
		want string
	}{
		{0, "0"},
		{3.5, "3.5"},
		{200.0 / 3, "66.7"},
		{100.0 / 3, "33.3"},
		{4, "4.0"},
		{100, "100.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
	b, err := json.Marshal(Decimal(3.5))
	require.NoError(t, err)
	assert.Equal(t, `"3.5"`, string(b))
}

func TestRating(t *testing.T) {
	q := question("q", models.QuestionRating)
	st := Aggregate([]models.Question{q}, responses("q",
		models.Scalar("5"), models.Scalar("5"), models.Scalar("3"), models.Scalar("1"),
	))[0]

	assert.Equal(t, KindRating, st.Kind)
	assert.Equal(t, 4, st.Total)
	require.NotNil(t, st.Average)
	assert.Equal(t, "3.5", st.Average.String())
	assert.Equal(t, []RatingBucket{{1, 1}, {2, 0}, {3, 1}, {4, 0}, {5, 2}}, st.Distribution)
	assert.Equal(t, 2, *st.MostCommon)
}

func TestRatingSkipsUnparsable(t *testing.T) {
	q := question("q", models.QuestionRating)
	st := Aggregate([]models.Question{q}, responses("q",
		models.Scalar("4"), models.Scalar("great"), models.List("2"), models.Scalar("2.9"),
	))[0]

	assert.Equal(t, 4, st.Total, "total counts every present answer")
	assert.Equal(t, "3.0", st.Average.String())
	assert.Equal(t, 1, st.Distribution[1].Count)
	assert.Equal(t, 1, st.Distribution[3].Count)
}

func TestChoice(t *testing.T) {
	q := question("q", models.QuestionRadio, "Yes", "No", "Maybe")
	st := Aggregate([]models.Question{q}, responses("q",
		models.Scalar("Yes"), models.Scalar("Yes"), models.Scalar("No"),
	))[0]

	assert.Equal(t, KindChoice, st.Kind)
	assert.Equal(t, 3, st.Total)
	require.Len(t, st.Options, 3)
	assert.Equal(t, OptionCount{Option: "Yes", Count: 2, Percentage: st.Options[0].Percentage}, st.Options[0])
	assert.Equal(t, "66.7", st.Options[0].Percentage.String())
	assert.Equal(t, 1, st.Options[1].Count)
	assert.Equal(t, "33.3", st.Options[1].Percentage.String())
	assert.Equal(t, 0, st.Options[2].Count, "unchosen options are still listed")
	assert.Equal(t, "0", st.Options[2].Percentage.String())
}

func TestMultiple(t *testing.T) {
	q := question("q", models.QuestionCheckbox, "A", "B")
	st := Aggregate([]models.Question{q}, responses("q",
		models.List("A"), models.List("A", "B"), models.List(),
	))[0]

	assert.Equal(t, KindMultiple, st.Kind)
	assert.Equal(t, 2, st.Total, "empty selections are excluded")
	assert.Equal(t, 2, st.Options[0].Count)
	assert.Equal(t, "100.0", st.Options[0].Percentage.String())
	assert.Equal(t, 1, st.Options[1].Count)
	assert.Equal(t, "50.0", st.Options[1].Percentage.String())
}

func TestMultipleSkipsMalformed(t *testing.T) {
	q := question("q", models.QuestionCheckbox, "A", "B")
	st := Aggregate([]models.Question{q}, responses("q",
		models.Scalar("A,B"), models.List("A", "A"), models.List("Z"),
	))[0]

	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Options[0].Count, "an option counts once per respondent")
	assert.Equal(t, 0, st.Options[1].Count)
}

func TestText(t *testing.T) {
	q := question("q", models.QuestionTextarea)
	st := Aggregate([]models.Question{q}, responses("q",
		models.Scalar("fine"), models.Scalar(""), models.Scalar("great"),
	))[0]

	assert.Equal(t, KindText, st.Kind)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, []string{"fine", "great"}, st.Responses)
}

func TestUnknownType(t *testing.T) {
	q := question("q", "matrix")
	st := Aggregate([]models.Question{q}, responses("q", models.Scalar("x")))[0]
	assert.Equal(t, KindUnknown, st.Kind)
	assert.Equal(t, 1, st.Total)
	assert.Nil(t, st.Options)
	assert.Nil(t, st.Distribution)
}

func TestEmptyResponses(t *testing.T) {
	qs := []models.Question{
		question("r", models.QuestionRating),
		question("c", models.QuestionDropdown, "A"),
		question("m", models.QuestionCheckbox, "A"),
		question("t", models.QuestionText),
	}
	stats := Aggregate(qs, nil)
	require.Len(t, stats, 4)
	for _, st := range stats {
		assert.Zero(t, st.Total, st.QuestionID)
	}
	assert.Equal(t, "0", stats[0].Average.String())
	assert.Equal(t, "0", stats[1].Options[0].Percentage.String())
	assert.Equal(t, "0", stats[2].Options[0].Percentage.String())
}

func TestBuildReport(t *testing.T) {
	survey := models.Survey{ID: "s1", Title: "T", Questions: []models.Question{question("q", models.QuestionText)}}

	empty := BuildReport(survey, nil)
	assert.Equal(t, "No responses", empty.Status)
	assert.Nil(t, empty.LastSubmittedAt)

	early := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	r := BuildReport(survey, []models.Response{
		{SubmittedAt: late, Answers: map[string]models.Answer{"q": models.Scalar("a")}},
		{SubmittedAt: early},
		{},
	})
	assert.Equal(t, "Active", r.Status)
	assert.Equal(t, 3, r.TotalResponses)
	require.NotNil(t, r.LastSubmittedAt)
	assert.Equal(t, late, *r.LastSubmittedAt)
	assert.Equal(t, 1, r.Questions[0].Total)
}

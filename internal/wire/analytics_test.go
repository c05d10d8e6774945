package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-survey/builder/internal/models"
)

func TestAnalyticsDecodingToleratesBadRecords(t *testing.T) {
	raw := `{
		"id": "s1",
		"title": "Feedback",
		"questions": [
			{"id": "q1", "text": "Rate", "type": "rating", "display_order": 1},
			{"id": "q2", "text": "Pick", "type": "checkbox", "display_order": 2, "options": ["A", "B"]}
		],
		"responses": [
			{"id": 1, "submittedAt": "2025-07-30T14:12:00Z", "answers": {"q1": 5, "q2": ["A", "B"]}},
			{"id": 2, "submitted_at": "not a date", "answers": "garbage"},
			{"id": 3, "answers": {"q1": {"nested": true}, "q2": null}},
			"not an object"
		]
	}`

	var a Analytics
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	survey, responses := ToAnalytics(a)

	require.Len(t, survey.Questions, 2)
	assert.Equal(t, "Rate", survey.Questions[0].Text)
	assert.Equal(t, []string{"A", "B"}, survey.Questions[1].OptionTexts())

	require.Len(t, responses, 4)
	assert.Equal(t, "1", responses[0].ID)
	assert.Equal(t, time.Date(2025, 7, 30, 14, 12, 0, 0, time.UTC), responses[0].SubmittedAt)
	assert.Equal(t, models.Scalar("5"), responses[0].Answers["q1"])
	assert.Equal(t, models.List("A", "B"), responses[0].Answers["q2"])

	assert.True(t, responses[1].SubmittedAt.IsZero())
	assert.Empty(t, responses[1].Answers)

	assert.False(t, responses[2].Answers["q1"].Present())
	assert.False(t, responses[2].Answers["q2"].Present())

	assert.NotNil(t, responses[3].Answers)
}

func TestSummariesDecoding(t *testing.T) {
	raw := `[
		{"id": 1, "title": "A", "status": "published", "responses": 152, "updatedAt": "2025-07-30T14:12:00Z"},
		{"id": "2", "title": "B", "response_count": 3, "updated_at": "2025-07-29"}
	]`
	var in []Summary
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	out := ToSummaries(in)

	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, 152, out[0].Responses)
	assert.Equal(t, models.StatusPublished, out[0].Status)
	assert.Equal(t, 2025, out[0].UpdatedAt.Year())
	assert.Equal(t, models.StatusDraft, out[1].Status)
	assert.Equal(t, 3, out[1].Responses)
	assert.Equal(t, time.July, out[1].UpdatedAt.Month())
}

func TestVerificationUser(t *testing.T) {
	var v Verification
	require.NoError(t, json.Unmarshal([]byte(`{"valid": true, "user": {"id": 5, "email": "a@b.c", "full_name": "Ada"}}`), &v))
	assert.True(t, v.Valid)
	assert.Equal(t, models.User{ID: "5", Email: "a@b.c", Name: "Ada"}, v.User.ToUser())

	var none *User
	assert.Equal(t, models.User{}, none.ToUser())
}

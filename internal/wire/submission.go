package wire

import "github.com/aura-survey/builder/internal/models"

// Submission is the body of POST /surveys/{id}/responses.
type Submission struct {
	SurveyID  string             `json:"survey_id"`
	Responses []SubmissionAnswer `json:"responses"`
}

// SubmissionAnswer carries one answer flattened to a string.
type SubmissionAnswer struct {
	QuestionID    string `json:"question_id"`
	ResponseValue string `json:"response_value"`
}

// NewSubmission builds a submission with one entry per question, in survey
// order. Multi-select answers are comma-joined, which is ambiguous when an
// option text itself contains a comma. Unanswered questions are sent as "".
func NewSubmission(surveyID string, questions []models.Question, answers map[string]models.Answer) Submission {
	out := Submission{SurveyID: surveyID, Responses: make([]SubmissionAnswer, 0, len(questions))}
	for _, q := range questions {
		out.Responses = append(out.Responses, SubmissionAnswer{
			QuestionID:    q.ID,
			ResponseValue: answers[q.ID].Joined(),
		})
	}
	return out
}

package wire

import (
	"encoding/json"

	"github.com/aura-survey/builder/internal/models"
)

// Summary is one entry of GET /surveys/user/{userId}.
type Summary struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Responses   int    `json:"responses"`
	UpdatedAt   string `json:"updated_at"`
}

// UnmarshalJSON accepts responses/response_count and updated_at/updatedAt.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID            ID      `json:"id"`
		Title         string  `json:"title"`
		Description   string  `json:"description"`
		Status        string  `json:"status"`
		Responses     *int    `json:"responses"`
		ResponseCount *int    `json:"response_count"`
		UpdatedAt     *string `json:"updated_at"`
		CamelUpdated  *string `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Summary{
		ID:          aux.ID,
		Title:       aux.Title,
		Description: aux.Description,
		Status:      aux.Status,
		UpdatedAt:   firstString(aux.UpdatedAt, aux.CamelUpdated),
	}
	if aux.Responses != nil {
		s.Responses = *aux.Responses
	} else if aux.ResponseCount != nil {
		s.Responses = *aux.ResponseCount
	}
	return nil
}

// ToSummaries maps dashboard entries to the editing shape.
func ToSummaries(in []Summary) []models.SurveySummary {
	out := make([]models.SurveySummary, len(in))
	for i, s := range in {
		status := models.Status(s.Status)
		if status == "" {
			status = models.StatusDraft
		}
		out[i] = models.SurveySummary{
			ID:          string(s.ID),
			Title:       s.Title,
			Description: s.Description,
			Status:      status,
			Responses:   s.Responses,
			UpdatedAt:   parseTime(s.UpdatedAt),
		}
	}
	return out
}

// Verification is the body returned by the token verification endpoint.
type Verification struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user,omitempty"`
}

// User is the account shape reported by the verification endpoint.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UnmarshalJSON accepts name or full_name.
func (u *User) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID       ID      `json:"id"`
		Email    string  `json:"email"`
		Name     *string `json:"name"`
		FullName *string `json:"full_name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User{ID: aux.ID, Email: aux.Email, Name: firstString(aux.Name, aux.FullName)}
	return nil
}

// ToUser maps a verified account to the editing shape.
func (u *User) ToUser() models.User {
	if u == nil {
		return models.User{}
	}
	return models.User{ID: string(u.ID), Email: u.Email, Name: u.Name}
}

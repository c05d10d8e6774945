package models

// User is the account behind an editing session, as reported by the auth guard.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

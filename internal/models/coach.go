package models

import "time"

// Coach links an auth identity to the set of names the booking platform's
// emails may use for that coach. Aliases keep the casing of their first
// occurrence; matching happens on canonical forms.
type Coach struct {
	ID          string    `json:"id"`
	Email       *string   `json:"email"`
	DisplayName string    `json:"display_name"`
	Aliases     []string  `json:"aliases"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

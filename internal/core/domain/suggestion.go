package domain

import "time"

// SuggestionStatus tracks moderation state of a submitted name.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a user-submitted candidate name awaiting moderation.
// Approved suggestions become NameEntry records.
type Suggestion struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	SubmittedBy string           `json:"submitted_by" db:"submitted_by"`
	Status      SuggestionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

package domain

import "time"

// Estados de un job a lo largo de su ciclo de vida.
const (
	JobStatusDraft      = "draft"
	JobStatusOpen       = "open"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

type Job struct {
	ID               string    `json:"id"`
	RequesterID      string    `json:"requester_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Type             string    `json:"type"`
	Budget           Budget    `json:"budget"`
	Timeline         Timeline  `json:"timeline"`
	Status           string    `json:"status"`
	Visibility       string    `json:"visibility"`
	Tags             []string  `json:"tags,omitempty"`
	Views            int       `json:"views"`
	ApplicationCount int       `json:"application_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Budget struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

type Timeline struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Duration  int        `json:"duration,omitempty"`
}

// JobFilter acota búsquedas de jobs.
type JobFilter struct {
	Category string
	Type     string
	Query    string
}

package domain

import "time"

// RequesterProfile es el perfil de cliente asociado uno a uno con un usuario
// con rol requester.
type RequesterProfile struct {
	ID                 string               `json:"id"`
	UserID             string               `json:"user_id"`
	Company            Company              `json:"company"`
	Preferences        RequesterPreferences `json:"preferences"`
	VerificationStatus string               `json:"verification_status"`
	AverageRating      float64              `json:"average_rating"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type Company struct {
	Name        string `json:"name,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

type RequesterPreferences struct {
	JobAlerts          bool   `json:"job_alerts"`
	EmailNotifications bool   `json:"email_notifications"`
	Currency           string `json:"currency,omitempty"`
}

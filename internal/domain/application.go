package domain

import "time"

// Estados de una aplicación a un job.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

type Application struct {
	ID              string    `json:"id"`
	JobID           string    `json:"job_id"`
	ArtistProfileID string    `json:"artist_profile_id"`
	CoverLetter     string    `json:"cover_letter"`
	ProposedAmount  float64   `json:"proposed_amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplicationDetail agrega el job y el artista a la aplicación, para las
// vistas de detalle.
type ApplicationDetail struct {
	Application Application `json:"application"`
	Job         *Job        `json:"job,omitempty"`
	ArtistUser  *PublicUser `json:"artist,omitempty"`
}

// PublicUser es la proyección mínima de un usuario para respuestas anidadas.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted,
		ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

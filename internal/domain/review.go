package domain

import "time"

// Review es una reseña dejada sobre un usuario (artista o requester),
// opcionalmente ligada a un job.
type Review struct {
	ID            string    `json:"id"`
	SubjectUserID string    `json:"subject_user_id"`
	AuthorUserID  string    `json:"author_user_id"`
	JobID         string    `json:"job_id,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RequesterStats y ArtistStats son los agregados que expone /api/statistics.
type RequesterStats struct {
	ActiveJobs        int `json:"active_jobs"`
	TotalApplications int `json:"total_applications"`
	CompletedJobs     int `json:"completed_jobs"`
}

type ArtistStats struct {
	TotalApplications  int `json:"total_applications"`
	ActiveApplications int `json:"active_applications"`
	AcceptedJobs       int `json:"accepted_jobs"`
	CompletedJobs      int `json:"completed_jobs"`
}

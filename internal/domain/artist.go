package domain

import "time"

// ArtistProfile es el perfil profesional asociado uno a uno con un usuario
// con rol artist.
type ArtistProfile struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	Bio                string           `json:"bio"`
	Skills             Skills           `json:"skills"`
	PortfolioItems     []PortfolioItem  `json:"portfolio_items"`
	Experience         []Experience     `json:"experience"`
	Education          []Education      `json:"education"`
	SocialLinks        SocialLinks      `json:"social_links"`
	ProfessionalInfo   ProfessionalInfo `json:"professional_info"`
	Preferences        Preferences      `json:"preferences"`
	VerificationStatus string           `json:"verification_status"`
	AverageRating      float64          `json:"average_rating"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type Skills struct {
	Primary   []Skill  `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
}

type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type PortfolioItem struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"image_url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
}

type Experience struct {
	Title       string     `json:"title"`
	Company     string     `json:"company,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Year        int    `json:"year,omitempty"`
}

type SocialLinks struct {
	Website    string `json:"website,omitempty"`
	Instagram  string `json:"instagram,omitempty"`
	ArtStation string `json:"artstation,omitempty"`
	Behance    string `json:"behance,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
}

type ProfessionalInfo struct {
	AvailabilityStatus string   `json:"availability_status,omitempty"`
	HoursPerWeek       int      `json:"hours_per_week,omitempty"`
	Timezone           string   `json:"timezone,omitempty"`
	RatePerHour        float64  `json:"rate_per_hour,omitempty"`
	RateCurrency       string   `json:"rate_currency,omitempty"`
	PreferredJobTypes  []string `json:"preferred_job_types,omitempty"`
}

type Preferences struct {
	JobAlerts          bool   `json:"job_alerts"`
	EmailNotifications bool   `json:"email_notifications"`
	Visibility         string `json:"visibility,omitempty"`
}

// ArtistListing combina el perfil con los datos públicos del usuario.
type ArtistListing struct {
	Profile  ArtistProfile `json:"profile"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Avatar   string        `json:"avatar_url,omitempty"`
	Location string        `json:"location,omitempty"`
}

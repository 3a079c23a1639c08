package model

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

type User struct {
	ID                 string    `json:"id"`
	Login              string    `json:"login"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	MustChangePassword bool      `json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type Survey struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Structure   []Question `json:"structure"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	IsActive    bool       `json:"isActive"`
	IsAnonymous bool       `json:"isAnonymous"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// PublicURL is derived from the id, never stored.
	PublicURL string `json:"publicUrl,omitempty"`
}

// Expired reports whether the survey stopped accepting submissions at now.
func (s Survey) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// AnswerRecord is one stored submission. Data maps question ids to the
// decoded JSON answer: string, []any or float64.
type AnswerRecord struct {
	ID          string         `json:"id"`
	SurveyID    string         `json:"surveyId"`
	Data        map[string]any `json:"data"`
	SubmitterIP *string        `json:"ip,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

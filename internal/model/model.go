// Package model defines domain entities shared by the client layers.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the referral lifecycle state. The set is closed; anything else
// coming off the wire is rejected at the API boundary.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusReviewed Status = "Reviewed"
	StatusHired    Status = "Hired"
	StatusRejected Status = "Rejected"
)

// ParseStatus validates a wire value against the closed status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusReviewed, StatusHired, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Role gates access to the admin surface.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the account behind the current session.
type User struct {
	ID       string `json:"id,omitempty"`
	LegacyID string `json:"_id,omitempty"` // backend may key users by _id instead of id
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Key returns whichever identifier the backend assigned.
func (u User) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return u.LegacyID
}

// Candidate is a referred candidate record mirrored from the backend.
// The backend assigns one of two interchangeable identifier keys.
type Candidate struct {
	ID         string `json:"id,omitempty"`
	LegacyID   string `json:"_id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	JobTitle   string `json:"jobTitle"`
	Experience string `json:"experience,omitempty"`
	Resume     string `json:"resume,omitempty"` // shareable resume URL
	Status     Status `json:"status"`
	ReferredBy string `json:"referredBy,omitempty"`
}

// Key returns whichever identifier the backend assigned.
func (c Candidate) Key() string {
	if c.LegacyID != "" {
		return c.LegacyID
	}
	return c.ID
}

// Matches reports whether id names this record under either identifier key.
func (c Candidate) Matches(id string) bool {
	if id == "" {
		return false
	}
	return c.ID == id || c.LegacyID == id
}

// ReferralInput is the referral submission payload (multipart on the wire).
type ReferralInput struct {
	Name       string `validate:"required,min=2,max=50"`
	Email      string `validate:"required,email"`
	Phone      string `validate:"omitempty,min=7,max=20"`
	JobTitle   string `validate:"required"`
	Experience string `validate:"omitempty"`
	Resume     string `validate:"omitempty,url"` // resume link
	ResumeFile string `validate:"omitempty"`     // local path, attached as a file part
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2,max=50,alphaspace"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,passwordstrength"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,oneof=user admin"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// StatusUpdate is one entry of a bulk status change request.
type StatusUpdate struct {
	ReferralID string `json:"referralId"`
	Status     Status `json:"status"`
}

// Session is the persisted authentication state. Token and User are written
// and cleared as a unit; one without the other is treated as no session.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at,omitempty"` // decoded from the JWT, diagnostics only
}

// StatusCounts aggregates referrals per lifecycle state.
type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Reviewed int `json:"reviewed"`
	Hired    int `json:"hired"`
	Rejected int `json:"rejected"`
}

// GraphStats is the payload behind the "stats" analytics report.
type GraphStats struct {
	Counts          StatusCounts `json:"counts"`
	RecentReferrals []Candidate  `json:"recentReferrals"`
}

// AnalyticsReport is a discriminated analytics response. Type "stats"
// carries Stats; any other type carries opaque chart series and layout
// rendered elsewhere.
type AnalyticsReport struct {
	Type   string          `json:"type"`
	Stats  *GraphStats     `json:"stats,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Layout json.RawMessage `json:"layout,omitempty"`
}

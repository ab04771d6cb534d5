// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin Role = "admin" // design authors / operators
	RoleUser  Role = "user"  // event hosts
)

// SubscriptionTier is the billing tier a user is on. Premium designs
// require an active PREMIUM subscription.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "FREE"
	TierPremium SubscriptionTier = "PREMIUM"
)

// User represents an account with authentication, 2FA, and subscription
// state. Subscription fields are written by the billing webhook flow and
// only read here.
type User struct {
	ID                  uuid.UUID        `json:"id"`
	Email               string           `json:"email"`
	PasswordHash        string           `json:"-"` // Never serialize the hash
	DisplayName         string           `json:"display_name"`
	Role                Role             `json:"role"`
	SubscriptionTier    SubscriptionTier `json:"subscription_tier"`
	SubscriptionEndDate *time.Time       `json:"subscription_end_date,omitempty"`
	TOTPSecret          *string          `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled         bool             `json:"totp_enabled"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Needs2FASetup returns true if an admin has not completed 2FA
// enrollment. Admins must set up 2FA on their first login.
func (u *User) Needs2FASetup() bool {
	return u.IsAdmin() && !u.TOTPEnabled
}

// HasActivePremium reports whether the user's premium subscription is
// active at the given instant. A nil end date means the subscription
// does not expire.
func (u *User) HasActivePremium(now time.Time) bool {
	if u.SubscriptionTier != TierPremium {
		return false
	}
	return u.SubscriptionEndDate == nil || now.Before(*u.SubscriptionEndDate)
}

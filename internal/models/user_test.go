package models

import (
	"testing"
	"time"
)

// TestUserIsAdmin verifies that IsAdmin returns true only for the admin role.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "user role", role: RoleUser, want: false},
		{name: "empty role", role: Role(""), want: false},
		{name: "unknown role", role: Role("superadmin"), want: false},
		{name: "uppercase ADMIN", role: Role("ADMIN"), want: false},
		{name: "mixed case Admin", role: Role("Admin"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			got := u.IsAdmin()
			if got != tt.want {
				t.Errorf("User{Role: %q}.IsAdmin() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

// TestUserNeeds2FASetup verifies that 2FA setup is demanded from admins
// who have not completed enrollment, and never from regular users.
func TestUserNeeds2FASetup(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	tests := []struct {
		name        string
		role        Role
		totpSecret  *string
		totpEnabled bool
		want        bool
	}{
		{
			name:        "admin without secret",
			role:        RoleAdmin,
			totpSecret:  nil,
			totpEnabled: false,
			want:        true,
		},
		{
			name:        "admin with secret but not enabled",
			role:        RoleAdmin,
			totpSecret:  &secret,
			totpEnabled: false,
			want:        true,
		},
		{
			name:        "admin fully enrolled",
			role:        RoleAdmin,
			totpSecret:  &secret,
			totpEnabled: true,
			want:        false,
		},
		{
			name:        "regular user without secret",
			role:        RoleUser,
			totpSecret:  nil,
			totpEnabled: false,
			want:        false,
		},
		{
			name:        "regular user with secret but not enabled",
			role:        RoleUser,
			totpSecret:  &secret,
			totpEnabled: false,
			want:        false,
		},
		{
			name:        "regular user fully enrolled",
			role:        RoleUser,
			totpSecret:  &secret,
			totpEnabled: true,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{
				Role:        tt.role,
				TOTPSecret:  tt.totpSecret,
				TOTPEnabled: tt.totpEnabled,
			}
			got := u.Needs2FASetup()
			if got != tt.want {
				t.Errorf("Needs2FASetup() = %v, want %v (role=%q, secret=%v, enabled=%v)",
					got, tt.want, tt.role, tt.totpSecret != nil, tt.totpEnabled)
			}
		})
	}
}

// TestUserHasActivePremium verifies premium access against the
// subscription tier and end date.
func TestUserHasActivePremium(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"free tier", User{SubscriptionTier: TierFree}, false},
		{"premium no end date", User{SubscriptionTier: TierPremium}, true},
		{"premium expired yesterday", User{SubscriptionTier: TierPremium, SubscriptionEndDate: &yesterday}, false},
		{"premium until tomorrow", User{SubscriptionTier: TierPremium, SubscriptionEndDate: &tomorrow}, true},
		{"free with future end date", User{SubscriptionTier: TierFree, SubscriptionEndDate: &tomorrow}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasActivePremium(now); got != tt.want {
				t.Errorf("HasActivePremium = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRoleConstants verifies that role string constants have the expected values.
func TestRoleConstants(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want string
	}{
		{name: "admin", role: RoleAdmin, want: "admin"},
		{name: "user", role: RoleUser, want: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.role) != tt.want {
				t.Errorf("Role constant %s = %q, want %q", tt.name, string(tt.role), tt.want)
			}
		})
	}
}

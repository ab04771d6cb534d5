package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for user-supplied fields.
const (
	maxEmailLen       = 254
	maxDisplayNameLen = 100
	minPasswordLen    = 8
	maxNameLen        = 200
	maxCoupleNameLen  = 200
	maxVenueLen       = 300
	maxMessageLen     = 2_000
	maxNoteLen        = 1_000
	maxPlusOnes       = 10
)

// validateRegistration checks signup inputs and returns the first error found.
func validateRegistration(email, password, displayName string) string {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "A valid email address is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	return ""
}

// validateInvitation checks invitation form inputs and returns the first error found.
func validateInvitation(coupleName, venueName, venueAddress, message string) string {
	coupleName = strings.TrimSpace(coupleName)
	if coupleName == "" {
		return "Couple name is required."
	}
	if utf8.RuneCountInString(coupleName) > maxCoupleNameLen {
		return "Couple name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(venueName) > maxVenueLen {
		return "Venue name is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(venueAddress) > maxVenueLen {
		return "Venue address is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return "Message is too long (max 2,000 characters)."
	}
	return ""
}

// validateGuest checks guest-list inputs and returns the first error found.
func validateGuest(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Guest name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Guest name is too long (max 200 characters)."
	}
	return ""
}

// validateRSVP checks an RSVP submission and returns the first error found.
func validateRSVP(status string, plusOnes int, note string) string {
	if status != "attending" && status != "declined" {
		return "Reply must be attending or declined."
	}
	if plusOnes < 0 || plusOnes > maxPlusOnes {
		return "Plus ones must be between 0 and 10."
	}
	if utf8.RuneCountInString(note) > maxNoteLen {
		return "Note is too long (max 1,000 characters)."
	}
	return ""
}

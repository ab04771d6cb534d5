// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the publishing state of an invitation.
type InvitationStatus string

const (
	InvitationStatusDraft     InvitationStatus = "draft"
	InvitationStatusPublished InvitationStatus = "published"
)

// Invitation is one event's invitation: it references the design used
// to render it and carries the per-event data substituted into the
// design's template placeholders.
type Invitation struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	DesignID     uuid.UUID        `json:"design_id"`
	Slug         string           `json:"slug"`
	Status       InvitationStatus `json:"status"`
	CoupleName   string           `json:"couple_name"`
	EventDate    *time.Time       `json:"event_date,omitempty"`
	VenueName    string           `json:"venue_name"`
	VenueAddress string           `json:"venue_address"`
	Message      string           `json:"message"`
	RSVPDeadline *time.Time       `json:"rsvp_deadline,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsPublished returns true if the invitation is publicly visible.
func (i *Invitation) IsPublished() bool {
	return i.Status == InvitationStatusPublished
}

// DataContext returns the flat variable set fed into the template
// renderer. Keys match the {{placeholders}} used by design templates.
func (i *Invitation) DataContext() map[string]string {
	ctx := map[string]string{
		"coupleName":   i.CoupleName,
		"venue":        i.VenueName,
		"venueAddress": i.VenueAddress,
		"message":      i.Message,
	}
	if i.EventDate != nil {
		ctx["date"] = i.EventDate.Format("January 2, 2006")
	}
	if i.RSVPDeadline != nil {
		ctx["rsvpDeadline"] = i.RSVPDeadline.Format("January 2, 2006")
	}
	return ctx
}

// ExampleDataContext is the canned data used when previewing a design
// that is not yet bound to a real invitation.
func ExampleDataContext() map[string]string {
	return map[string]string{
		"coupleName":   "Marie & Thomas",
		"date":         "June 20, 2026",
		"venue":        "Château de Chantilly",
		"venueAddress": "60500 Chantilly, France",
		"message":      "We would be honored by your presence.",
		"rsvpDeadline": "May 15, 2026",
	}
}

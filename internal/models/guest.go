// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVPStatus tracks a guest's reply to an invitation.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclined  RSVPStatus = "declined"
)

// Guest is one entry on an invitation's guest list. The RSVPToken is a
// capability: anyone holding it can submit a reply for this guest, so
// public RSVP links need no account.
type Guest struct {
	ID           uuid.UUID  `json:"id"`
	InvitationID uuid.UUID  `json:"invitation_id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	RSVPToken    uuid.UUID  `json:"-"` // Never serialize the token
	RSVPStatus   RSVPStatus `json:"rsvp_status"`
	PlusOnes     int        `json:"plus_ones"`
	Note         *string    `json:"note,omitempty"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasResponded returns true once the guest has submitted any reply.
func (g *Guest) HasResponded() bool {
	return g.RSVPStatus != RSVPPending
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"kawepla/internal/models"
)

// GuestStore handles guest-list and RSVP database operations.
type GuestStore struct {
	db *sql.DB
}

// NewGuestStore creates a new GuestStore with the given database connection.
func NewGuestStore(db *sql.DB) *GuestStore {
	return &GuestStore{db: db}
}

const guestColumns = `id, invitation_id, name, email, rsvp_token, rsvp_status,
	plus_ones, note, responded_at, created_at, updated_at`

func scanGuest(scanner interface{ Scan(...any) error }) (*models.Guest, error) {
	g := &models.Guest{}
	err := scanner.Scan(
		&g.ID, &g.InvitationID, &g.Name, &g.Email, &g.RSVPToken, &g.RSVPStatus,
		&g.PlusOnes, &g.Note, &g.RespondedAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// FindByID retrieves a guest by UUID. Returns nil if not found.
func (s *GuestStore) FindByID(id uuid.UUID) (*models.Guest, error) {
	row := s.db.QueryRow(`SELECT `+guestColumns+` FROM guests WHERE id = $1`, id)
	g, err := scanGuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find guest by id: %w", err)
	}
	return g, nil
}

// FindByRSVPToken retrieves a guest by their RSVP capability token.
// Returns nil if the token matches no guest.
func (s *GuestStore) FindByRSVPToken(token uuid.UUID) (*models.Guest, error) {
	row := s.db.QueryRow(`SELECT `+guestColumns+` FROM guests WHERE rsvp_token = $1`, token)
	g, err := scanGuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find guest by rsvp token: %w", err)
	}
	return g, nil
}

// ListByInvitation returns the full guest list for an invitation,
// ordered by name.
func (s *GuestStore) ListByInvitation(invitationID uuid.UUID) ([]models.Guest, error) {
	rows, err := s.db.Query(`
		SELECT `+guestColumns+` FROM guests
		WHERE invitation_id = $1 ORDER BY name ASC
	`, invitationID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	var guests []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		guests = append(guests, *g)
	}
	return guests, rows.Err()
}

// Create adds a guest to an invitation's list. The RSVP token is
// generated by the database default.
func (s *GuestStore) Create(invitationID uuid.UUID, name string, email *string) (*models.Guest, error) {
	row := s.db.QueryRow(`
		INSERT INTO guests (invitation_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING `+guestColumns,
		invitationID, name, email,
	)
	g, err := scanGuest(row)
	if err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	return g, nil
}

// SubmitRSVP records a guest's reply. Replies are idempotent — a guest
// following their link twice simply overwrites the previous answer.
func (s *GuestStore) SubmitRSVP(token uuid.UUID, status models.RSVPStatus, plusOnes int, note *string) (*models.Guest, error) {
	if status != models.RSVPAttending && status != models.RSVPDeclined {
		return nil, fmt.Errorf("invalid rsvp status: %s", status)
	}
	row := s.db.QueryRow(`
		UPDATE guests
		SET rsvp_status = $1, plus_ones = $2, note = $3,
			responded_at = NOW(), updated_at = NOW()
		WHERE rsvp_token = $4
		RETURNING `+guestColumns,
		status, plusOnes, note, token,
	)
	g, err := scanGuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("submit rsvp: %w", err)
	}
	return g, nil
}

// Delete removes a guest from the list.
func (s *GuestStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("guest not found")
	}
	return nil
}

// CountByStatus tallies an invitation's replies per status. Pending
// guests are included so the host sees outstanding invites.
func (s *GuestStore) CountByStatus(invitationID uuid.UUID) (map[models.RSVPStatus]int, error) {
	rows, err := s.db.Query(`
		SELECT rsvp_status, COUNT(*) FROM guests
		WHERE invitation_id = $1 GROUP BY rsvp_status
	`, invitationID)
	if err != nil {
		return nil, fmt.Errorf("count guests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RSVPStatus]int)
	for rows.Next() {
		var status models.RSVPStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan guest count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

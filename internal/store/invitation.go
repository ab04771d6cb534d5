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

// InvitationStore handles invitation database operations.
type InvitationStore struct {
	db *sql.DB
}

// NewInvitationStore creates a new InvitationStore with the given database connection.
func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

const invitationColumns = `id, user_id, design_id, slug, status, couple_name,
	event_date, venue_name, venue_address, message, rsvp_deadline,
	created_at, updated_at`

func scanInvitation(scanner interface{ Scan(...any) error }) (*models.Invitation, error) {
	inv := &models.Invitation{}
	err := scanner.Scan(
		&inv.ID, &inv.UserID, &inv.DesignID, &inv.Slug, &inv.Status, &inv.CoupleName,
		&inv.EventDate, &inv.VenueName, &inv.VenueAddress, &inv.Message, &inv.RSVPDeadline,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// FindByID retrieves an invitation by its UUID. Returns nil if not found.
func (s *InvitationStore) FindByID(id uuid.UUID) (*models.Invitation, error) {
	row := s.db.QueryRow(`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation by id: %w", err)
	}
	return inv, nil
}

// FindBySlug retrieves an invitation by its public slug. Returns nil if
// not found. Callers serving public pages must additionally check
// IsPublished — drafts resolve here too so owners can preview them.
func (s *InvitationStore) FindBySlug(slug string) (*models.Invitation, error) {
	row := s.db.QueryRow(`SELECT `+invitationColumns+` FROM invitations WHERE slug = $1`, slug)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation by slug: %w", err)
	}
	return inv, nil
}

// ListByUser returns all invitations owned by the user, newest first.
func (s *InvitationStore) ListByUser(userID uuid.UUID) ([]models.Invitation, error) {
	rows, err := s.db.Query(`
		SELECT `+invitationColumns+` FROM invitations
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// CountByDesign returns how many invitations reference a design. Used to
// decide between archiving and deleting the design.
func (s *InvitationStore) CountByDesign(designID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM invitations WHERE design_id = $1`, designID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invitations by design: %w", err)
	}
	return count, nil
}

// Create inserts a new draft invitation.
func (s *InvitationStore) Create(inv *models.Invitation) (*models.Invitation, error) {
	if inv.Status == "" {
		inv.Status = models.InvitationStatusDraft
	}
	row := s.db.QueryRow(`
		INSERT INTO invitations (user_id, design_id, slug, status, couple_name,
			event_date, venue_name, venue_address, message, rsvp_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+invitationColumns,
		inv.UserID, inv.DesignID, inv.Slug, inv.Status, inv.CoupleName,
		inv.EventDate, inv.VenueName, inv.VenueAddress, inv.Message, inv.RSVPDeadline,
	)
	created, err := scanInvitation(row)
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return created, nil
}

// Update saves the mutable fields of an invitation.
func (s *InvitationStore) Update(inv *models.Invitation) (*models.Invitation, error) {
	row := s.db.QueryRow(`
		UPDATE invitations
		SET design_id = $1, slug = $2, status = $3, couple_name = $4,
			event_date = $5, venue_name = $6, venue_address = $7,
			message = $8, rsvp_deadline = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING `+invitationColumns,
		inv.DesignID, inv.Slug, inv.Status, inv.CoupleName,
		inv.EventDate, inv.VenueName, inv.VenueAddress,
		inv.Message, inv.RSVPDeadline, inv.ID,
	)
	updated, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update invitation: %w", err)
	}
	return updated, nil
}

// SetStatus publishes or unpublishes an invitation.
func (s *InvitationStore) SetStatus(id uuid.UUID, status models.InvitationStatus) error {
	result, err := s.db.Exec(`
		UPDATE invitations SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set invitation status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set invitation status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invitation not found")
	}
	return nil
}

// Delete removes an invitation and, via cascade, its guest list.
func (s *InvitationStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invitation not found")
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kawepla/internal/access"
	"kawepla/internal/cache"
	"kawepla/internal/middleware"
	"kawepla/internal/models"
	"kawepla/internal/slug"
	"kawepla/internal/store"
)

// Invitations groups the event-host handlers: an authenticated user's
// invitations and their guest lists.
type Invitations struct {
	invitations *store.InvitationStore
	guests      *store.GuestStore
	policy      *access.Policy
	pageCache   *cache.PageCache
}

// NewInvitations creates a new Invitations handler group. pageCache may
// be nil when Valkey is not configured.
func NewInvitations(invitations *store.InvitationStore, guests *store.GuestStore, policy *access.Policy, pageCache *cache.PageCache) *Invitations {
	return &Invitations{
		invitations: invitations,
		guests:      guests,
		policy:      policy,
		pageCache:   pageCache,
	}
}

// List returns the session user's invitations, newest first.
func (h *Invitations) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	invitations, err := h.invitations.ListByUser(sess.UserID)
	if err != nil {
		slog.Error("list invitations failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if invitations == nil {
		invitations = []models.Invitation{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"invitations": invitations})
}

type invitationRequest struct {
	DesignID     uuid.UUID  `json:"design_id"`
	CoupleName   string     `json:"couple_name"`
	EventDate    *time.Time `json:"event_date"`
	VenueName    string     `json:"venue_name"`
	VenueAddress string     `json:"venue_address"`
	Message      string     `json:"message"`
	RSVPDeadline *time.Time `json:"rsvp_deadline"`
}

// Create makes a new draft invitation for the session user. The design
// must exist and be usable under the user's subscription.
func (h *Invitations) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req invitationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if msg := validateInvitation(req.CoupleName, req.VenueName, req.VenueAddress, req.Message); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if !h.authorizeDesign(w, r, sess.UserID, req.DesignID) {
		return
	}

	created, err := h.invitations.Create(&models.Invitation{
		UserID:       sess.UserID,
		DesignID:     req.DesignID,
		Slug:         slug.Unique(req.CoupleName),
		CoupleName:   req.CoupleName,
		EventDate:    req.EventDate,
		VenueName:    req.VenueName,
		VenueAddress: req.VenueAddress,
		Message:      req.Message,
		RSVPDeadline: req.RSVPDeadline,
	})
	if err != nil {
		slog.Error("create invitation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"invitation": created})
}

// Get returns one of the session user's invitations with its RSVP tally.
func (h *Invitations) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	counts, err := h.guests.CountByStatus(inv.ID)
	if err != nil {
		slog.Error("count rsvps failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"invitation": inv,
		"rsvp_counts": map[string]int{
			"pending":   counts[models.RSVPPending],
			"attending": counts[models.RSVPAttending],
			"declined":  counts[models.RSVPDeclined],
		},
	})
}

// Update saves edits to an invitation's event details. A changed design
// is re-checked against the user's subscription.
func (h *Invitations) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	var req invitationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if msg := validateInvitation(req.CoupleName, req.VenueName, req.VenueAddress, req.Message); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if req.DesignID != inv.DesignID {
		if !h.authorizeDesign(w, r, sess.UserID, req.DesignID) {
			return
		}
		inv.DesignID = req.DesignID
	}

	inv.CoupleName = req.CoupleName
	inv.EventDate = req.EventDate
	inv.VenueName = req.VenueName
	inv.VenueAddress = req.VenueAddress
	inv.Message = req.Message
	inv.RSVPDeadline = req.RSVPDeadline

	updated, err := h.invitations.Update(inv)
	if err != nil {
		slog.Error("update invitation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "invitation not found")
		return
	}

	if h.pageCache != nil {
		h.pageCache.Invalidate(r.Context(), cache.InvitationKey(updated.Slug))
	}

	respondJSON(w, http.StatusOK, map[string]any{"invitation": updated})
}

// Publish makes the invitation publicly reachable at its slug URL.
func (h *Invitations) Publish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.InvitationStatusPublished)
}

// Unpublish takes the invitation offline again.
func (h *Invitations) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.InvitationStatusDraft)
}

func (h *Invitations) setStatus(w http.ResponseWriter, r *http.Request, status models.InvitationStatus) {
	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	if err := h.invitations.SetStatus(inv.ID, status); err != nil {
		slog.Error("set invitation status failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.pageCache != nil {
		h.pageCache.Invalidate(r.Context(), cache.InvitationKey(inv.Slug))
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// Delete removes an invitation and, via cascade, its guest list.
func (h *Invitations) Delete(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	if err := h.invitations.Delete(inv.ID); err != nil {
		slog.Error("delete invitation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.pageCache != nil {
		h.pageCache.Invalidate(r.Context(), cache.InvitationKey(inv.Slug))
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListGuests returns the invitation's guest list, RSVP tokens included —
// this endpoint is only reachable by the invitation's owner, who needs
// the tokens to build shareable RSVP links.
func (h *Invitations) ListGuests(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	guests, err := h.guests.ListByInvitation(inv.ID)
	if err != nil {
		slog.Error("list guests failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Tokens are excluded from guest JSON by default; the owner view
	// carries them alongside explicitly.
	type ownedGuest struct {
		models.Guest
		RSVPToken uuid.UUID `json:"rsvp_token"`
	}
	out := make([]ownedGuest, 0, len(guests))
	for _, g := range guests {
		out = append(out, ownedGuest{Guest: g, RSVPToken: g.RSVPToken})
	}

	respondJSON(w, http.StatusOK, map[string]any{"guests": out})
}

type guestRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// AddGuest appends a guest to the invitation's list.
func (h *Invitations) AddGuest(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	var req guestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if msg := validateGuest(req.Name); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	guest, err := h.guests.Create(inv.ID, req.Name, req.Email)
	if err != nil {
		slog.Error("add guest failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"guest":      guest,
		"rsvp_token": guest.RSVPToken,
	})
}

// RemoveGuest deletes a guest from the invitation's list.
func (h *Invitations) RemoveGuest(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.findOwned(w, r)
	if !ok {
		return
	}

	guestID, err := uuid.Parse(chi.URLParam(r, "guestID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid guest id")
		return
	}

	guest, err := h.guests.FindByID(guestID)
	if err != nil {
		slog.Error("find guest failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if guest == nil || guest.InvitationID != inv.ID {
		respondError(w, http.StatusNotFound, "guest not found")
		return
	}

	if err := h.guests.Delete(guest.ID); err != nil {
		slog.Error("remove guest failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// authorizeDesign verifies the design exists and the user's subscription
// covers it, writing the error response when it doesn't.
func (h *Invitations) authorizeDesign(w http.ResponseWriter, r *http.Request, userID, designID uuid.UUID) bool {
	allowed, err := h.policy.CanUserAccessDesign(userID, designID)
	if err != nil {
		slog.Error("design access check failed", "error", err, "design", designID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return false
	}
	if !allowed {
		respondError(w, http.StatusForbidden, "this design requires an active premium subscription")
		return false
	}
	return true
}

// findOwned parses the id URL param and loads the invitation, enforcing
// that it belongs to the session user.
func (h *Invitations) findOwned(w http.ResponseWriter, r *http.Request) (*models.Invitation, bool) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invitation id")
		return nil, false
	}

	inv, err := h.invitations.FindByID(id)
	if err != nil {
		slog.Error("find invitation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	// Owners only; a missing invitation and someone else's invitation
	// are indistinguishable from outside.
	if inv == nil || inv.UserID != sess.UserID {
		respondError(w, http.StatusNotFound, "invitation not found")
		return nil, false
	}
	return inv, true
}

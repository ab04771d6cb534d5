// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kawepla/internal/cache"
	"kawepla/internal/engine"
	"kawepla/internal/models"
	"kawepla/internal/store"
)

// Public groups the unauthenticated handlers: the rendered invitation
// page and the guest RSVP endpoints.
type Public struct {
	invitations *store.InvitationStore
	guests      *store.GuestStore
	designs     *store.DesignStore
	engine      *engine.Engine
	pageCache   *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil
// when Valkey is not configured.
func NewPublic(invitations *store.InvitationStore, guests *store.GuestStore, designs *store.DesignStore, eng *engine.Engine, pageCache *cache.PageCache) *Public {
	return &Public{
		invitations: invitations,
		guests:      guests,
		designs:     designs,
		engine:      eng,
		pageCache:   pageCache,
	}
}

// InvitationPage serves the rendered HTML for a published invitation at
// its slug URL. Draft and unknown slugs both answer 404.
func (h *Public) InvitationPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx := r.Context()

	key := cache.InvitationKey(slug)
	if h.pageCache != nil {
		if cached, hit := h.pageCache.Get(ctx, key); hit {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	inv, err := h.invitations.FindBySlug(slug)
	if err != nil {
		slog.Error("find invitation by slug failed", "error", err, "slug", slug)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if inv == nil || !inv.IsPublished() {
		respondError(w, http.StatusNotFound, "invitation not found")
		return
	}

	design, err := h.designs.FindByID(inv.DesignID)
	if err != nil {
		slog.Error("find design failed", "error", err, "design", inv.DesignID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if design == nil {
		// The FK makes this unreachable short of manual DB surgery.
		slog.Error("published invitation references missing design", "slug", slug, "design", inv.DesignID)
		respondError(w, http.StatusNotFound, "invitation not found")
		return
	}

	html := h.engine.Render(design, inv.DataContext())
	if h.pageCache != nil {
		h.pageCache.Set(ctx, key, html)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// RSVPInfo returns what a guest needs to see the reply form: their name,
// any previous reply, and the event details. The token in the URL is the
// only credential.
func (h *Public) RSVPInfo(w http.ResponseWriter, r *http.Request) {
	guest, inv, ok := h.findGuestByToken(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"guest": map[string]any{
			"name":         guest.Name,
			"rsvp_status":  guest.RSVPStatus,
			"plus_ones":    guest.PlusOnes,
			"note":         guest.Note,
			"responded_at": guest.RespondedAt,
		},
		"invitation": map[string]any{
			"couple_name":   inv.CoupleName,
			"event_date":    inv.EventDate,
			"venue_name":    inv.VenueName,
			"venue_address": inv.VenueAddress,
			"rsvp_deadline": inv.RSVPDeadline,
			"slug":          inv.Slug,
		},
	})
}

type rsvpRequest struct {
	Status   string  `json:"status"`
	PlusOnes int     `json:"plus_ones"`
	Note     *string `json:"note"`
}

// SubmitRSVP records a guest's reply. Replies may be resubmitted; the
// latest one wins.
func (h *Public) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, http.StatusNotFound, "rsvp link not found")
		return
	}

	var req rsvpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	note := ""
	if req.Note != nil {
		note = *req.Note
	}
	if msg := validateRSVP(req.Status, req.PlusOnes, note); msg != "" {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	guest, err := h.guests.SubmitRSVP(token, models.RSVPStatus(req.Status), req.PlusOnes, req.Note)
	if err != nil {
		slog.Error("submit rsvp failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if guest == nil {
		respondError(w, http.StatusNotFound, "rsvp link not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"rsvp_status":  guest.RSVPStatus,
		"plus_ones":    guest.PlusOnes,
		"responded_at": guest.RespondedAt,
	})
}

// findGuestByToken resolves the token URL param to a guest and their
// invitation. Malformed and unknown tokens both answer 404.
func (h *Public) findGuestByToken(w http.ResponseWriter, r *http.Request) (*models.Guest, *models.Invitation, bool) {
	token, err := uuid.Parse(chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, http.StatusNotFound, "rsvp link not found")
		return nil, nil, false
	}

	guest, err := h.guests.FindByRSVPToken(token)
	if err != nil {
		slog.Error("find guest by token failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, nil, false
	}
	if guest == nil {
		respondError(w, http.StatusNotFound, "rsvp link not found")
		return nil, nil, false
	}

	inv, err := h.invitations.FindByID(guest.InvitationID)
	if err != nil || inv == nil {
		slog.Error("find invitation for guest failed", "error", err, "guest", guest.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, nil, false
	}
	return guest, inv, true
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kawepla/internal/access"
	"kawepla/internal/cache"
	"kawepla/internal/canvas"
	"kawepla/internal/engine"
	"kawepla/internal/middleware"
	"kawepla/internal/models"
	"kawepla/internal/store"
)

// Designs groups the design catalogue and authoring handlers. Authoring
// endpoints are admin-only; the catalogue, preview, and editor-document
// endpoints serve the frontend for all users.
type Designs struct {
	designs   *store.DesignStore
	engine    *engine.Engine
	pageCache *cache.PageCache
	policy    *access.Policy
}

// NewDesigns creates a new Designs handler group. pageCache may be nil
// when Valkey is not configured.
func NewDesigns(designs *store.DesignStore, eng *engine.Engine, pageCache *cache.PageCache, policy *access.Policy) *Designs {
	return &Designs{
		designs:   designs,
		engine:    eng,
		pageCache: pageCache,
		policy:    policy,
	}
}

// List returns the design catalogue. Regular callers see active designs
// only; admins may pass ?include_inactive=true. Category and tags come
// from query parameters, tags comma-separated.
func (h *Designs) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	if r.URL.Query().Get("include_inactive") == "true" {
		sess := middleware.SessionFromCtx(r.Context())
		includeInactive = sess != nil && sess.Role == "admin"
	}

	filter := store.ListFilter{
		Category: r.URL.Query().Get("category"),
	}
	if tags := r.URL.Query().Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	designs, err := h.designs.List(includeInactive, filter)
	if err != nil {
		respondStoreError(w, err, "list designs failed")
		return
	}
	if designs == nil {
		designs = []models.Design{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"designs": designs})
}

// Get returns one design by id.
func (h *Designs) Get(w http.ResponseWriter, r *http.Request) {
	design, ok := h.findDesign(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"design": design})
}

// Create inserts a new design authored by the session admin.
func (h *Designs) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var design models.Design
	if err := decodeJSON(w, r, &design); err != nil {
		return
	}

	created, err := h.designs.Create(&design, sess.UserID)
	if err != nil {
		respondStoreError(w, err, "create design failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"design": created})
}

// designPatchRequest is the wire shape of a partial design update.
// Absent fields leave the stored value untouched.
type designPatchRequest struct {
	Name            *string                        `json:"name"`
	Description     *string                        `json:"description"`
	Category        *string                        `json:"category"`
	Tags            *[]string                      `json:"tags"`
	IsPremium       *bool                          `json:"is_premium"`
	PriceCents      *int                           `json:"price_cents"`
	Template        *models.TemplateDoc            `json:"template"`
	Styles          *models.StyleDoc               `json:"styles"`
	Variables       *models.VariableDoc            `json:"variables"`
	Components      *map[string]json.RawMessage    `json:"components"`
	FabricData      json.RawMessage                `json:"fabric_data"`
	EditorVersion   *models.EditorVersion          `json:"editor_version"`
	TextMappings    *map[string]models.TextMapping `json:"text_mappings"`
	BackgroundImage *string                        `json:"background_image"`
	CanvasWidth     *int                           `json:"canvas_width"`
	CanvasHeight    *int                           `json:"canvas_height"`
}

// Update merges a partial update into a design, bumps its version, and
// drops every cache that might hold renders of the old version.
func (h *Designs) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid design id")
		return
	}

	var req designPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	updated, err := h.designs.Update(id, &store.DesignPatch{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Tags:            req.Tags,
		IsPremium:       req.IsPremium,
		PriceCents:      req.PriceCents,
		Template:        req.Template,
		Styles:          req.Styles,
		Variables:       req.Variables,
		Components:      req.Components,
		FabricData:      req.FabricData,
		EditorVersion:   req.EditorVersion,
		TextMappings:    req.TextMappings,
		BackgroundImage: req.BackgroundImage,
		CanvasWidth:     req.CanvasWidth,
		CanvasHeight:    req.CanvasHeight,
	})
	if err != nil {
		respondStoreError(w, err, "update design failed")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "design not found")
		return
	}

	// The compiled-render cache keys on id+version so the bump alone
	// makes it stale, but dropping the entry frees the memory now.
	// Published invitation pages may embed the old render, so the L2
	// cache is cleared wholesale.
	h.engine.InvalidateDesign(updated.ID.String())
	if h.pageCache != nil {
		h.pageCache.InvalidateAll(r.Context())
	}

	respondJSON(w, http.StatusOK, map[string]any{"design": updated})
}

// Delete removes a design, or archives it if invitations still use it.
func (h *Designs) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid design id")
		return
	}

	archived, err := h.designs.Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrDesignNotFound) {
			respondError(w, http.StatusNotFound, "design not found")
			return
		}
		respondStoreError(w, err, "delete design failed")
		return
	}

	h.engine.InvalidateDesign(id.String())
	if h.pageCache != nil {
		h.pageCache.InvalidateAll(r.Context())
	}

	status := "deleted"
	if archived {
		status = "archived"
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Preview renders a design as HTML with canned example data, so the
// frontend can show it before the user fills in real event details.
func (h *Designs) Preview(w http.ResponseWriter, r *http.Request) {
	design, ok := h.findDesign(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	key := cache.PreviewKey(design.ID, design.Version)
	if h.pageCache != nil {
		if cached, hit := h.pageCache.Get(ctx, key); hit {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	html := h.engine.Render(design, models.ExampleDataContext())
	if h.pageCache != nil {
		h.pageCache.Set(ctx, key, html)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// EditorDocument returns the canvas-editor document for a design:
// fabric data passed through for canvas designs, a reconstructed
// document for mapped legacy designs, and 422 for designs that cannot
// be edited visually.
func (h *Designs) EditorDocument(w http.ResponseWriter, r *http.Request) {
	design, ok := h.findDesign(w, r)
	if !ok {
		return
	}

	doc, err := canvas.LoadEditableDocument(design)
	if err != nil {
		slog.Error("load editable document failed", "error", err, "design", design.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if doc == nil {
		respondError(w, http.StatusUnprocessableEntity, "design cannot be opened in the editor")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// CheckAccess reports whether the session user may use this design.
// Evaluated fresh on every call; the answer is never cached because
// subscriptions change independently of designs.
func (h *Designs) CheckAccess(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid design id")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	var userID uuid.UUID
	if sess != nil {
		userID = sess.UserID
	}

	allowed, err := h.policy.CanUserAccessDesign(userID, id)
	if err != nil {
		slog.Error("design access check failed", "error", err, "design", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

// findDesign parses the id URL param and loads the design, writing the
// error response on failure.
func (h *Designs) findDesign(w http.ResponseWriter, r *http.Request) (*models.Design, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid design id")
		return nil, false
	}

	design, err := h.designs.FindByID(id)
	if err != nil {
		respondStoreError(w, err, "find design failed")
		return nil, false
	}
	if design == nil {
		respondError(w, http.StatusNotFound, "design not found")
		return nil, false
	}
	return design, true
}

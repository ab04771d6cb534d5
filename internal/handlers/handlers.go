// Package handlers implements the JSON HTTP API consumed by the Kawepla
// web frontend, plus the public invitation pages rendered server-side.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kawepla/internal/models"
)

// maxBodyBytes caps request bodies. Design documents (fabric canvases in
// particular) can be large, but nothing legitimate approaches this.
const maxBodyBytes = 2 << 20 // 2 MiB

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("json encode failed", "error", err)
		}
	}
}

// respondError writes a JSON error body: {"error": "..."}.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondStoreError maps a store failure onto the right HTTP response.
// Validation errors surface as 422 with the offending field; everything
// else is a logged 500.
func respondStoreError(w http.ResponseWriter, err error, op string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": verr.Reason,
			"field": verr.Field,
		})
		return
	}
	slog.Error(op, "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a size-limited JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return err
	}
	return nil
}

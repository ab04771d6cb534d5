// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EditorVersion distinguishes designs authored in the legacy
// template/styles editor from designs authored in the canvas editor.
type EditorVersion string

const (
	EditorLegacy EditorVersion = "legacy"
	EditorCanvas EditorVersion = "canvas"
)

// Default canvas geometry: A4 portrait at 96 DPI. Legacy designs that
// predate explicit geometry are assumed to use these dimensions.
const (
	DefaultCanvasWidth  = 794
	DefaultCanvasHeight = 1123
)

// PositionableComponentKey is the styles.components entry holding
// absolute positioning rules for legacy text elements, keyed as
// ".element-<elementId>".
const PositionableComponentKey = "positionable-elements"

// Design is a reusable visual template for rendering an invitation.
// The template, styles, and variables sub-documents are stored as JSONB
// and validated on every write, never on read.
type Design struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	IsActive    bool      `json:"is_active"`
	IsPremium   bool      `json:"is_premium"`
	PriceCents  int       `json:"price_cents"`
	Version     string    `json:"version"` // semantic version MAJOR.MINOR.PATCH

	Template  TemplateDoc `json:"template"`
	Styles    StyleDoc    `json:"styles"`
	Variables VariableDoc `json:"variables"`

	// Components holds free-form structured extension data.
	Components map[string]json.RawMessage `json:"components,omitempty"`

	// FabricData is the canvas-editor document. Opaque to the backend:
	// when present it is the authoritative editable representation and
	// is passed through unchanged.
	FabricData json.RawMessage `json:"fabric_data,omitempty"`

	EditorVersion EditorVersion `json:"editor_version"`

	// TextMappings binds each positioned legacy element to the
	// invitation field it displays. Only meaningful for legacy designs.
	TextMappings map[string]TextMapping `json:"text_mappings,omitempty"`

	BackgroundImage *string `json:"background_image,omitempty"`
	CanvasWidth     int     `json:"canvas_width"`
	CanvasHeight    int     `json:"canvas_height"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateDoc is the structural skeleton of a design: a layout
// identifier plus named sections of placeholder HTML.
type TemplateDoc struct {
	Layout   string             `json:"layout"`
	Sections map[string]Section `json:"sections"`
}

// Section is one fragment of a design template. HTML may contain
// {{variableName}} placeholders filled at render time; Position selects
// the slot in the layout skeleton the section is assembled into.
type Section struct {
	HTML     string `json:"html"`
	Position string `json:"position"`
}

// StyleDoc is the CSS-like rule set of a design. Base maps selectors to
// property→value pairs. Components maps a component key to its own
// selector→(property→value) rules; the "positionable-elements" entry
// carries absolute positioning for legacy text elements. Animations
// holds keyframe definitions by animation name.
type StyleDoc struct {
	Base       map[string]map[string]string            `json:"base"`
	Components map[string]map[string]map[string]string `json:"components"`
	Animations map[string]map[string]map[string]string `json:"animations,omitempty"`
}

// VariableDoc holds the theme tokens of a design. The three sub-objects
// must be present; their internal shape is free-form.
type VariableDoc struct {
	Colors     map[string]any `json:"colors"`
	Typography map[string]any `json:"typography"`
	Spacing    map[string]any `json:"spacing"`
}

// TextMapping binds a positioned legacy element to the invitation
// variable it displays and, when known, its canvas object id.
type TextMapping struct {
	ElementType        string `json:"element_type"`
	InvitationVariable string `json:"invitation_variable"`
	FabricObjectID     string `json:"fabric_object_id,omitempty"`
}

// ValidationError reports the first structural invariant violated by a
// design write. Field names the offending sub-document path so the
// authoring UI can surface it inline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid design: %s: %s", e.Field, e.Reason)
}

// ValidateTemplate checks the template sub-document invariants:
// a non-empty layout and a present sections map.
func ValidateTemplate(t *TemplateDoc) error {
	if strings.TrimSpace(t.Layout) == "" {
		return &ValidationError{Field: "template.layout", Reason: "must be a non-empty string"}
	}
	if t.Sections == nil {
		return &ValidationError{Field: "template.sections", Reason: "is required"}
	}
	return nil
}

// ValidateStyles checks the styles sub-document invariants: base and
// components must be present (empty maps are fine).
func ValidateStyles(s *StyleDoc) error {
	if s.Base == nil {
		return &ValidationError{Field: "styles.base", Reason: "is required"}
	}
	if s.Components == nil {
		return &ValidationError{Field: "styles.components", Reason: "is required"}
	}
	return nil
}

// ValidateVariables checks that all three theme token groups are present.
func ValidateVariables(v *VariableDoc) error {
	if v.Colors == nil {
		return &ValidationError{Field: "variables.colors", Reason: "is required"}
	}
	if v.Typography == nil {
		return &ValidationError{Field: "variables.typography", Reason: "is required"}
	}
	if v.Spacing == nil {
		return &ValidationError{Field: "variables.spacing", Reason: "is required"}
	}
	return nil
}

// Validate checks every structural invariant of a design, returning the
// first violation as a *ValidationError.
func (d *Design) Validate() error {
	if err := ValidateTemplate(&d.Template); err != nil {
		return err
	}
	if err := ValidateStyles(&d.Styles); err != nil {
		return err
	}
	return ValidateVariables(&d.Variables)
}

// HasTag reports whether the design carries any of the given tags.
// Tags form a set: order is irrelevant and comparison is exact.
func (d *Design) HasTag(tags ...string) bool {
	for _, want := range tags {
		for _, have := range d.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// BumpPatch increments the patch component of a MAJOR.MINOR.PATCH
// version string. Malformed versions reset to "1.0.0" rather than
// failing the update that triggered the bump.
func BumpPatch(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "1.0.0"
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "1.0.0"
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package canvas reconstructs editable canvas documents from invitation
// designs. Canvas-native designs carry their document verbatim in
// fabricData and pass through untouched; legacy designs are rebuilt
// best-effort from their positioned style rules and text mappings.
//
// Legacy reconstruction is approximate and lossy: elements without a
// text mapping are dropped, and a design exported back out of the
// canvas editor will not round-trip bit-for-bit. The path exists as a
// one-time upgrade aid, not as a storage format.
package canvas

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"kawepla/internal/models"
)

// elementSelectorPrefix is how positionable elements are keyed inside
// styles.components["positionable-elements"].
const elementSelectorPrefix = ".element-"

// Document is the canvas-editor object model: a background plus a flat
// list of positioned objects on a fixed-size canvas.
type Document struct {
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Background string   `json:"background"`
	Objects    []Object `json:"objects"`
}

// Object is one positioned text element. Coordinates and sizes are in
// pixels. Text holds the {{variable}} placeholder form, never live
// invitation data — the editor always works with placeholders.
type Object struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Left          float64 `json:"left"`
	Top           float64 `json:"top"`
	Width         float64 `json:"width"`
	Text          string  `json:"text"`
	IsPlaceholder bool    `json:"isPlaceholder"`
	FontSize      float64 `json:"fontSize"`
	FontFamily    string  `json:"fontFamily"`
	Fill          string  `json:"fill"`
	TextAlign     string  `json:"textAlign"`
	FontWeight    string  `json:"fontWeight"`
	FontStyle     string  `json:"fontStyle"`
	LineHeight    float64 `json:"lineHeight"`
	CharSpacing   float64 `json:"charSpacing"`
	Opacity       float64 `json:"opacity"`
}

// sourceKind is the closed classification of a design's editable
// representation, replacing scattered presence checks.
type sourceKind int

const (
	sourceCanvasNative sourceKind = iota // fabricData is authoritative
	sourceLegacyMapped                   // reconstructable from styles + textMappings
	sourceUnsupported                    // nothing to edit
)

func classify(d *models.Design) sourceKind {
	switch {
	case len(d.FabricData) > 0:
		return sourceCanvasNative
	case d.EditorVersion == models.EditorLegacy && len(d.TextMappings) > 0:
		return sourceLegacyMapped
	default:
		return sourceUnsupported
	}
}

// CanLoadInEditor reports whether LoadEditableDocument can produce a
// document for this design. Callers check it to distinguish "nothing to
// show" from "go ahead and reconstruct".
func CanLoadInEditor(d *models.Design) bool {
	return classify(d) != sourceUnsupported
}

// LoadEditableDocument returns the canvas document for a design:
// fabricData unchanged for canvas-native designs, a reconstruction for
// legacy designs, nil when the design cannot be edited.
func LoadEditableDocument(d *models.Design) (json.RawMessage, error) {
	switch classify(d) {
	case sourceCanvasNative:
		return d.FabricData, nil
	case sourceLegacyMapped:
		doc := Reconstruct(d)
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal reconstructed document: %w", err)
		}
		return raw, nil
	default:
		return nil, nil
	}
}

// Reconstruct rebuilds a canvas document from a legacy design's
// positioned style rules and text mappings. Elements with a position
// but no mapping cannot be rebuilt and are dropped. Selectors are
// visited in sorted order so synthetic ids and object order are stable.
func Reconstruct(d *models.Design) *Document {
	width := d.CanvasWidth
	if width <= 0 {
		width = models.DefaultCanvasWidth
	}
	height := d.CanvasHeight
	if height <= 0 {
		height = models.DefaultCanvasHeight
	}

	doc := &Document{
		Width:      width,
		Height:     height,
		Background: "#ffffff",
	}
	if d.BackgroundImage != nil && *d.BackgroundImage != "" {
		doc.Background = *d.BackgroundImage
	}

	positioned := d.Styles.Components[models.PositionableComponentKey]
	selectors := make([]string, 0, len(positioned))
	for sel := range positioned {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)

	for _, sel := range selectors {
		elementID, ok := strings.CutPrefix(sel, elementSelectorPrefix)
		if !ok || elementID == "" {
			continue
		}
		mapping, ok := d.TextMappings[elementID]
		if !ok {
			continue // position without a variable binding — dropped
		}

		props := positioned[sel]

		obj := Object{
			Type:          textDefaults.objectType,
			Left:          percentToPixels(props["left"], width, 0),
			Top:           percentToPixels(props["top"], height, 0),
			Width:         percentToPixels(props["width"], width, textDefaults.width),
			Text:          "{{" + mapping.InvitationVariable + "}}",
			IsPlaceholder: true,
			FontSize:      pixelsOr(props["font-size"], textDefaults.fontSize),
			FontFamily:    stringOr(props["font-family"], textDefaults.fontFamily),
			Fill:          stringOr(props["color"], textDefaults.fill),
			TextAlign:     stringOr(props["text-align"], textDefaults.textAlign),
			FontWeight:    stringOr(props["font-weight"], textDefaults.fontWeight),
			FontStyle:     stringOr(props["font-style"], textDefaults.fontStyle),
			LineHeight:    floatOr(props["line-height"], textDefaults.lineHeight),
			CharSpacing:   pixelsOr(props["letter-spacing"], textDefaults.charSpacing),
			Opacity:       floatOr(props["opacity"], textDefaults.opacity),
		}

		if mapping.ElementType != "" {
			obj.Type = mapping.ElementType
		}
		if mapping.FabricObjectID != "" {
			obj.ID = mapping.FabricObjectID
		} else {
			obj.ID = fmt.Sprintf("legacy-%d", len(doc.Objects))
		}

		doc.Objects = append(doc.Objects, obj)
	}

	return doc
}

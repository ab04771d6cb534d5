// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

import (
	"strconv"
	"strings"
)

// textDefaults is the single fallback table for every text attribute a
// positioned element can carry. Any malformed or missing style value
// resolves here instead of producing NaN or aborting reconstruction.
var textDefaults = struct {
	objectType  string
	fontFamily  string
	fill        string
	textAlign   string
	fontWeight  string
	fontStyle   string
	lineHeight  float64
	charSpacing float64
	opacity     float64
	fontSize    float64
	width       float64
}{
	objectType:  "textbox",
	fontFamily:  "Montserrat, sans-serif",
	fill:        "#000000",
	textAlign:   "center",
	fontWeight:  "normal",
	fontStyle:   "normal",
	lineHeight:  1.5,
	charSpacing: 0,
	opacity:     1,
	fontSize:    16,
	width:       200,
}

// percentToPixels converts a percentage style value ("50%") into
// absolute pixels against the given canvas dimension. Values without a
// percent sign are treated as percentages too, since legacy rules were
// written both ways. Malformed values fall back to the default.
func percentToPixels(value string, dimension int, fallback float64) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "%")
	if trimmed == "" {
		return fallback
	}
	percent, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return percent * float64(dimension) / 100
}

// pixelsOr parses a px-suffixed numeric value, falling back on any
// malformed input.
func pixelsOr(value string, fallback float64) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "px")
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return n
}

// floatOr parses a bare numeric value, falling back on any malformed input.
func floatOr(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return n
}

// stringOr returns the value or the fallback when empty.
func stringOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

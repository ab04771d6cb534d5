// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders invitation designs to self-contained HTML.
// A design's template sections are assembled according to its layout
// skeleton, {{placeholders}} are substituted from a flat data context,
// and the design's style rules are inlined ahead of the markup so the
// result can be injected into a host page without extra stylesheets.
//
// Rendering is deterministic (sorted map iteration, no timestamps or
// random ids) and never fails on public paths: unknown layouts fall
// back to a minimal wrapper and missing variables substitute as empty
// strings.
package engine

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"kawepla/internal/models"
)

// layoutSkeletons maps a template's layout identifier to the document
// order of its section positions. Sections are assembled position by
// position; positions not listed here are appended at the end.
var layoutSkeletons = map[string][]string{
	"classic": {"header", "body", "details", "rsvp", "footer"},
	"modern":  {"hero", "header", "body", "details", "footer"},
	"elegant": {"cover", "header", "body", "details", "rsvp", "footer"},
	"minimal": {"body"},
}

// placeholderRe matches {{variableName}} placeholders in section HTML.
// Whitespace inside the braces is tolerated.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Engine renders designs to HTML. It keeps an in-memory cache (L1) of
// compiled designs keyed by id+version, so repeated renders skip the
// style flattening and section ordering work. Substitution itself is
// always performed per call since it depends on the data context.
type Engine struct {
	cache *renderCache
}

// New creates a rendering engine with an empty L1 cache.
func New() *Engine {
	return &Engine{cache: newRenderCache()}
}

// InvalidateDesign removes all cached compilations for a design.
// Called by admin handlers after update or delete; version-keyed
// entries also age out naturally since updates bump the version.
func (e *Engine) InvalidateDesign(id string) {
	e.cache.invalidate(id)
}

// Render produces the HTML for a design filled with the given data
// context. It never returns an error: missing variables render empty
// and unknown layouts use the fallback skeleton. Same design and same
// context always yield byte-identical output.
func (e *Engine) Render(design *models.Design, data map[string]string) []byte {
	var compiled *compiledDesign

	id := design.ID.String()
	if design.ID != uuid.Nil {
		compiled = e.cache.get(id, design.Version)
	}
	if compiled == nil {
		compiled = compile(design)
		if design.ID != uuid.Nil {
			e.cache.put(id, design.Version, compiled)
		}
	}

	var b strings.Builder
	b.Grow(len(compiled.styleCSS) + 256)

	if compiled.styleCSS != "" {
		b.WriteString("<style>")
		b.WriteString(compiled.styleCSS)
		b.WriteString("</style>")
	}

	b.WriteString(`<div class="invitation invitation-layout-`)
	b.WriteString(cssToken(compiled.layout))
	b.WriteString(`">`)
	for _, s := range compiled.sections {
		b.WriteString(`<div class="invitation-section invitation-section-`)
		b.WriteString(cssToken(s.name))
		b.WriteString(`">`)
		b.WriteString(substitute(s.html, data))
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)

	return []byte(b.String())
}

// compiledDesign is the design-dependent (data-independent) part of a
// render: flattened CSS plus sections in final document order.
type compiledDesign struct {
	layout   string
	styleCSS string
	sections []compiledSection
}

type compiledSection struct {
	name string
	html string
}

// compile flattens a design's styles and orders its sections by the
// layout skeleton. Pure over the design.
func compile(design *models.Design) *compiledDesign {
	return &compiledDesign{
		layout:   design.Template.Layout,
		styleCSS: flattenStyles(&design.Styles),
		sections: orderSections(&design.Template),
	}
}

// substitute replaces every {{variable}} placeholder with the
// HTML-escaped context value. Unresolved placeholders render as empty
// strings rather than leaking the literal braces; invitation data is
// user-supplied, so escaping is not optional.
func substitute(sectionHTML string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(sectionHTML, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := data[name]
		if !ok {
			return ""
		}
		return html.EscapeString(value)
	})
}

// orderSections arranges template sections by their position's slot in
// the layout skeleton. Within one position, sections sort by name.
// Positions the skeleton does not mention (and every section of an
// unknown layout) are appended afterwards, ordered by position then
// name, so rendering degrades instead of failing.
func orderSections(t *models.TemplateDoc) []compiledSection {
	skeleton := layoutSkeletons[t.Layout]

	known := make(map[string]int, len(skeleton))
	for i, pos := range skeleton {
		known[pos] = i
	}

	type entry struct {
		name     string
		position string
		slot     int // index in skeleton, or len(skeleton) for strays
	}

	entries := make([]entry, 0, len(t.Sections))
	for name, sec := range t.Sections {
		slot, ok := known[sec.Position]
		if !ok {
			slot = len(skeleton)
		}
		entries = append(entries, entry{name: name, position: sec.Position, slot: slot})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].slot != entries[j].slot {
			return entries[i].slot < entries[j].slot
		}
		if entries[i].position != entries[j].position {
			return entries[i].position < entries[j].position
		}
		return entries[i].name < entries[j].name
	})

	sections := make([]compiledSection, 0, len(entries))
	for _, e := range entries {
		sections = append(sections, compiledSection{name: e.name, html: t.Sections[e.name].HTML})
	}
	return sections
}

// flattenStyles serializes base rules, component rules, and animations
// into one CSS string with fully sorted iteration order.
func flattenStyles(s *models.StyleDoc) string {
	var b strings.Builder

	writeRules(&b, s.Base)

	for _, component := range sortedKeys(s.Components) {
		writeRules(&b, s.Components[component])
	}

	for _, animation := range sortedKeys(s.Animations) {
		b.WriteString("@keyframes ")
		b.WriteString(cssToken(animation))
		b.WriteString("{")
		writeRules(&b, s.Animations[animation])
		b.WriteString("}")
	}

	return b.String()
}

// writeRules appends selector blocks with sorted selectors and
// properties: "sel{prop:val;...}".
func writeRules(b *strings.Builder, rules map[string]map[string]string) {
	for _, selector := range sortedKeys(rules) {
		props := rules[selector]
		b.WriteString(selector)
		b.WriteString("{")
		for _, prop := range sortedKeys(props) {
			b.WriteString(prop)
			b.WriteString(":")
			b.WriteString(props[prop])
			b.WriteString(";")
		}
		b.WriteString("}")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cssToken strips characters that are unsafe inside a class or
// keyframes name. Layout and section names are admin-authored, but the
// output lands in raw HTML so they are constrained anyway.
func cssToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

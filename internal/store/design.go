// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"kawepla/internal/models"
)

// ErrDesignNotFound is returned by Delete when no design exists with
// the given id. Read paths signal absence with (nil, nil) instead;
// Delete needs a distinct value because its result is (bool, error).
var ErrDesignNotFound = errors.New("design not found")

// DesignStore handles all design-related database operations. The
// template, styles, variables, components, fabric_data, and
// text_mappings sub-documents are stored as JSONB and validated before
// every write, never on read.
type DesignStore struct {
	db *sql.DB
}

// NewDesignStore creates a new DesignStore with the given database connection.
func NewDesignStore(db *sql.DB) *DesignStore {
	return &DesignStore{db: db}
}

// designColumns lists the columns selected in design queries.
const designColumns = `id, name, description, category, tags, is_active, is_premium,
	price_cents, version, template, styles, variables, components, fabric_data,
	editor_version, text_mappings, background_image, canvas_width, canvas_height,
	created_by, created_at, updated_at`

// ListFilter narrows List results. Zero values mean "no filter"; Tags
// matches designs whose tag set intersects the requested set.
type ListFilter struct {
	Category string
	Tags     []string
}

// List returns designs ordered newest-first. Inactive (archived)
// designs are excluded unless includeInactive is set. The category
// filter runs in SQL; tag intersection is applied in Go since the tag
// sets are small and stored as JSONB arrays.
func (s *DesignStore) List(includeInactive bool, filter ListFilter) ([]models.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs`
	var args []any
	where := ""

	if !includeInactive {
		where = ` WHERE is_active = TRUE`
	}
	if filter.Category != "" {
		if where == "" {
			where = ` WHERE category = $1`
		} else {
			where += ` AND category = $1`
		}
		args = append(args, filter.Category)
	}

	rows, err := s.db.Query(query+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()

	var designs []models.Design
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		if len(filter.Tags) > 0 && !d.HasTag(filter.Tags...) {
			continue
		}
		designs = append(designs, *d)
	}
	return designs, rows.Err()
}

// FindByID retrieves a design by its UUID. Returns nil if not found.
func (s *DesignStore) FindByID(id uuid.UUID) (*models.Design, error) {
	row := s.db.QueryRow(`SELECT `+designColumns+` FROM designs WHERE id = $1`, id)
	d, err := scanDesign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find design by id: %w", err)
	}
	return d, nil
}

// Create validates and inserts a new design authored by the given
// admin. Structural violations surface as *models.ValidationError.
func (s *DesignStore) Create(d *models.Design, authorID uuid.UUID) (*models.Design, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if d.Version == "" {
		d.Version = "1.0.0"
	}
	if d.EditorVersion == "" {
		d.EditorVersion = models.EditorLegacy
	}
	if d.CanvasWidth <= 0 {
		d.CanvasWidth = models.DefaultCanvasWidth
	}
	if d.CanvasHeight <= 0 {
		d.CanvasHeight = models.DefaultCanvasHeight
	}

	docs, err := marshalDesignDocs(d)
	if err != nil {
		return nil, err
	}

	result := &models.Design{}
	err = s.db.QueryRow(`
		INSERT INTO designs (name, description, category, tags, is_active, is_premium,
			price_cents, version, template, styles, variables, components, fabric_data,
			editor_version, text_mappings, background_image, canvas_width, canvas_height,
			created_by)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+designColumns,
		d.Name, d.Description, d.Category, docs.tags, d.IsPremium,
		d.PriceCents, d.Version, docs.template, docs.styles, docs.variables,
		docs.components, docs.fabricData, d.EditorVersion, docs.textMappings,
		d.BackgroundImage, d.CanvasWidth, d.CanvasHeight, authorID,
	).Scan(scanTargets(result)...)
	if err != nil {
		return nil, fmt.Errorf("create design: %w", err)
	}
	return result, nil
}

// DesignPatch carries a partial update. Nil fields are left untouched;
// supplied sub-documents are re-validated before the merge.
type DesignPatch struct {
	Name            *string
	Description     *string
	Category        *string
	Tags            *[]string
	IsPremium       *bool
	PriceCents      *int
	Template        *models.TemplateDoc
	Styles          *models.StyleDoc
	Variables       *models.VariableDoc
	Components      *map[string]json.RawMessage
	FabricData      json.RawMessage
	EditorVersion   *models.EditorVersion
	TextMappings    *map[string]models.TextMapping
	BackgroundImage *string
	CanvasWidth     *int
	CanvasHeight    *int
}

// Update merges a patch into the stored design inside one transaction
// and bumps the patch version, which invalidates cached renders keyed
// by id+version. Returns nil if the design does not exist.
func (s *DesignStore) Update(id uuid.UUID, patch *DesignPatch) (*models.Design, error) {
	// Validate supplied sub-documents before touching the database.
	if patch.Template != nil {
		if err := models.ValidateTemplate(patch.Template); err != nil {
			return nil, err
		}
	}
	if patch.Styles != nil {
		if err := models.ValidateStyles(patch.Styles); err != nil {
			return nil, err
		}
	}
	if patch.Variables != nil {
		if err := models.ValidateVariables(patch.Variables); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+designColumns+` FROM designs WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDesign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock design for update: %w", err)
	}

	applyPatch(d, patch)
	d.Version = models.BumpPatch(d.Version)

	docs, err := marshalDesignDocs(d)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE designs SET
			name = $1, description = $2, category = $3, tags = $4, is_premium = $5,
			price_cents = $6, version = $7, template = $8, styles = $9, variables = $10,
			components = $11, fabric_data = $12, editor_version = $13, text_mappings = $14,
			background_image = $15, canvas_width = $16, canvas_height = $17, updated_at = NOW()
		WHERE id = $18`,
		d.Name, d.Description, d.Category, docs.tags, d.IsPremium,
		d.PriceCents, d.Version, docs.template, docs.styles, docs.variables,
		docs.components, docs.fabricData, d.EditorVersion, docs.textMappings,
		d.BackgroundImage, d.CanvasWidth, d.CanvasHeight, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update design: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit design update: %w", err)
	}
	return d, nil
}

// Delete removes a design, or archives it when any invitation still
// references it. The reference check and the delete (or archive) run in
// one transaction so an invitation created concurrently cannot orphan
// itself. Returns archived=true when the design was soft-deleted.
func (s *DesignStore) Delete(id uuid.UUID) (archived bool, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var refs int
	err = tx.QueryRow(`SELECT COUNT(*) FROM invitations WHERE design_id = $1`, id).Scan(&refs)
	if err != nil {
		return false, fmt.Errorf("count design references: %w", err)
	}

	if refs > 0 {
		result, err := tx.Exec(`UPDATE designs SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return false, fmt.Errorf("archive design: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return false, ErrDesignNotFound
		}
		return true, tx.Commit()
	}

	result, err := tx.Exec(`DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete design: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return false, ErrDesignNotFound
	}
	return false, tx.Commit()
}

// Count returns the total number of designs.
func (s *DesignStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM designs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count designs: %w", err)
	}
	return count, nil
}

// applyPatch copies every supplied patch field onto the design.
func applyPatch(d *models.Design, p *DesignPatch) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Tags != nil {
		d.Tags = *p.Tags
	}
	if p.IsPremium != nil {
		d.IsPremium = *p.IsPremium
	}
	if p.PriceCents != nil {
		d.PriceCents = *p.PriceCents
	}
	if p.Template != nil {
		d.Template = *p.Template
	}
	if p.Styles != nil {
		d.Styles = *p.Styles
	}
	if p.Variables != nil {
		d.Variables = *p.Variables
	}
	if p.Components != nil {
		d.Components = *p.Components
	}
	if p.FabricData != nil {
		d.FabricData = p.FabricData
	}
	if p.EditorVersion != nil {
		d.EditorVersion = *p.EditorVersion
	}
	if p.TextMappings != nil {
		d.TextMappings = *p.TextMappings
	}
	if p.BackgroundImage != nil {
		d.BackgroundImage = p.BackgroundImage
	}
	if p.CanvasWidth != nil {
		d.CanvasWidth = *p.CanvasWidth
	}
	if p.CanvasHeight != nil {
		d.CanvasHeight = *p.CanvasHeight
	}
}

// designDocs holds the JSONB payloads of a design ready for the driver.
// Optional documents are nil so they store as SQL NULL.
type designDocs struct {
	tags         []byte
	template     []byte
	styles       []byte
	variables    []byte
	components   []byte
	fabricData   []byte
	textMappings []byte
}

func marshalDesignDocs(d *models.Design) (*designDocs, error) {
	docs := &designDocs{}
	var err error

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	if docs.tags, err = json.Marshal(tags); err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	if docs.template, err = json.Marshal(d.Template); err != nil {
		return nil, fmt.Errorf("marshal template: %w", err)
	}
	if docs.styles, err = json.Marshal(d.Styles); err != nil {
		return nil, fmt.Errorf("marshal styles: %w", err)
	}
	if docs.variables, err = json.Marshal(d.Variables); err != nil {
		return nil, fmt.Errorf("marshal variables: %w", err)
	}
	if d.Components != nil {
		if docs.components, err = json.Marshal(d.Components); err != nil {
			return nil, fmt.Errorf("marshal components: %w", err)
		}
	}
	if len(d.FabricData) > 0 {
		docs.fabricData = d.FabricData
	}
	if d.TextMappings != nil {
		if docs.textMappings, err = json.Marshal(d.TextMappings); err != nil {
			return nil, fmt.Errorf("marshal text mappings: %w", err)
		}
	}
	return docs, nil
}

// scanTargets returns scan destinations in designColumns order. JSONB
// columns scan through deferred decode wrappers.
func scanTargets(d *models.Design) []any {
	return []any{
		&d.ID, &d.Name, &d.Description, &d.Category,
		&jsonScanner{into: &d.Tags}, &d.IsActive, &d.IsPremium,
		&d.PriceCents, &d.Version,
		&jsonScanner{into: &d.Template}, &jsonScanner{into: &d.Styles},
		&jsonScanner{into: &d.Variables}, &jsonScanner{into: &d.Components},
		&rawScanner{into: &d.FabricData},
		&d.EditorVersion, &jsonScanner{into: &d.TextMappings},
		&d.BackgroundImage, &d.CanvasWidth, &d.CanvasHeight,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	}
}

// scanDesign scans a design row from the result set.
func scanDesign(scanner interface{ Scan(...any) error }) (*models.Design, error) {
	d := &models.Design{}
	if err := scanner.Scan(scanTargets(d)...); err != nil {
		return nil, err
	}
	return d, nil
}

// jsonScanner decodes a JSONB column into the wrapped destination.
// NULL leaves the destination at its zero value.
type jsonScanner struct {
	into any
}

func (j *jsonScanner) Scan(src any) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
	return json.Unmarshal(data, j.into)
}

// rawScanner keeps a JSONB column as its raw bytes without decoding.
// Used for fabric_data, which is opaque to the backend.
type rawScanner struct {
	into *json.RawMessage
}

func (r *rawScanner) Scan(src any) error {
	if src == nil {
		*r.into = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		buf := make([]byte, len(v))
		copy(buf, v)
		*r.into = buf
	case string:
		*r.into = json.RawMessage(v)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a pair of starter designs. The admin will be prompted
// to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@kawepla.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Starter designs so the catalogue is not empty in development.
	seedDesigns := []struct {
		name      string
		category  string
		tags      string
		isPremium bool
		template  string
		styles    string
		variables string
	}{
		{
			name:      "Jardin Romantique",
			category:  "wedding",
			tags:      `["romantic", "floral"]`,
			isPremium: false,
			template: `{
				"layout": "classic",
				"sections": {
					"hero": {"html": "<h1>{{coupleName}}</h1><p>{{date}}</p>", "position": "header"},
					"details": {"html": "<p>{{venue}}</p><p>{{venueAddress}}</p>", "position": "details"},
					"note": {"html": "<p>{{message}}</p>", "position": "body"}
				}
			}`,
			styles: `{
				"base": {
					".invitation": {"background": "#fff8f5", "font-family": "Georgia, serif"},
					".invitation h1": {"color": "#b76e79"}
				},
				"components": {}
			}`,
			variables: `{
				"colors": {"primary": "#b76e79", "background": "#fff8f5"},
				"typography": {"heading": "Georgia, serif"},
				"spacing": {"section": "2rem"}
			}`,
		},
		{
			name:      "Minuit Doré",
			category:  "wedding",
			tags:      `["elegant", "dark"]`,
			isPremium: true,
			template: `{
				"layout": "elegant",
				"sections": {
					"hero": {"html": "<h1>{{coupleName}}</h1>", "position": "header"},
					"details": {"html": "<p>{{date}} — {{venue}}</p>", "position": "details"},
					"rsvp": {"html": "<p>RSVP before {{rsvpDeadline}}</p>", "position": "rsvp"}
				}
			}`,
			styles: `{
				"base": {
					".invitation": {"background": "#1a1a2e", "color": "#e8c872"},
					".invitation h1": {"font-family": "Playfair Display, serif"}
				},
				"components": {}
			}`,
			variables: `{
				"colors": {"primary": "#e8c872", "background": "#1a1a2e"},
				"typography": {"heading": "Playfair Display, serif"},
				"spacing": {"section": "2rem"}
			}`,
		},
	}

	for _, d := range seedDesigns {
		_, err = db.Exec(`
			INSERT INTO designs (name, category, tags, is_premium, template, styles, variables, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, d.name, d.category, d.tags, d.isPremium, d.template, d.styles, d.variables, adminID)
		if err != nil {
			return fmt.Errorf("seed insert design %q: %w", d.name, err)
		}
	}

	slog.Info("database seeded with default admin user and starter designs",
		"email", "admin@kawepla.local",
		"password", "admin",
		"designs", len(seedDesigns),
	)

	return nil
}

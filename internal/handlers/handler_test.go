// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"kawepla/internal/access"
	"kawepla/internal/cache"
	"kawepla/internal/database"
	"kawepla/internal/engine"
	"kawepla/internal/middleware"
	"kawepla/internal/models"
	"kawepla/internal/session"
	"kawepla/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "kawepla")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "kawepla")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Sessions    *session.Store
	Users       *store.UserStore
	DesignStore *store.DesignStore
	Invitations *store.InvitationStore
	GuestStore  *store.GuestStore
	Engine      *engine.Engine
	PageCache   *cache.PageCache
	Policy      *access.Policy
	Auth        *Auth
	Designs     *Designs
	Hosts       *Invitations
	Public      *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	designs := store.NewDesignStore(db)
	invitations := store.NewInvitationStore(db)
	guests := store.NewGuestStore(db)
	eng := engine.New()
	pageCache := cache.NewPageCache(vk, 1*time.Minute)
	policy := access.NewPolicy(users, designs)

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Sessions:    sessions,
		Users:       users,
		DesignStore: designs,
		Invitations: invitations,
		GuestStore:  guests,
		Engine:      eng,
		PageCache:   pageCache,
		Policy:      policy,
		Auth:        NewAuth(sessions, users),
		Designs:     NewDesigns(designs, eng, pageCache, policy),
		Hosts:       NewInvitations(invitations, guests, policy, pageCache),
		Public:      NewPublic(invitations, guests, designs, eng, pageCache),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// createTestUser inserts a user with a unique email and schedules cleanup.
func createTestUser(t *testing.T, env *testEnv, role string) *models.User {
	t.Helper()

	email := fmt.Sprintf("handler-test-%d@example.test", rand.Int63())
	user, err := env.Users.Create(email, "s3cret-pass", "Handler Test", models.Role(role))
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", user.ID) })
	return user
}

// createTestDesign inserts a minimal valid design and schedules cleanup.
func createTestDesign(t *testing.T, env *testEnv, name string, premium bool) *models.Design {
	t.Helper()

	admin := createTestUser(t, env, "admin")
	design, err := env.DesignStore.Create(&models.Design{
		Name:      name,
		Category:  "wedding",
		IsPremium: premium,
		Template: models.TemplateDoc{
			Layout: "classic",
			Sections: map[string]models.Section{
				"hero": {HTML: "<h1>{{coupleName}}</h1><p>{{date}} at {{venue}}</p>", Position: "header"},
			},
		},
		Styles: models.StyleDoc{
			Base:       map[string]map[string]string{".invitation": {"background": "#ffffff"}},
			Components: map[string]map[string]map[string]string{},
		},
		Variables: models.VariableDoc{
			Colors:     map[string]any{"primary": "#b76e79"},
			Typography: map[string]any{"heading": "Georgia, serif"},
			Spacing:    map[string]any{"section": "2rem"},
		},
	}, admin.ID)
	if err != nil {
		t.Fatalf("create test design: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM designs WHERE id = $1", design.ID) })
	return design
}

// createTestInvitation inserts an invitation owned by user and schedules cleanup.
func createTestInvitation(t *testing.T, env *testEnv, userID, designID uuid.UUID, slug string) *models.Invitation {
	t.Helper()

	inv, err := env.Invitations.Create(&models.Invitation{
		UserID:     userID,
		DesignID:   designID,
		Slug:       slug,
		CoupleName: "Marie & Thomas",
		VenueName:  "Château de Chantilly",
	})
	if err != nil {
		t.Fatalf("create test invitation: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM invitations WHERE id = $1", inv.ID) })
	return inv
}

// public_page_test.go contains handler integration tests for the Public
// handler group: the rendered invitation page and the guest RSVP endpoints.
// Tests exercise real database and Valkey connections; they are skipped when
// those services are unavailable.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"kawepla/internal/cache"
	"kawepla/internal/models"
)

// publishedInvitation creates an invitation and flips it to published.
func publishedInvitation(t *testing.T, env *testEnv, slug string) *models.Invitation {
	t.Helper()

	user := createTestUser(t, env, "user")
	design := createTestDesign(t, env, "__test_public_"+slug, false)
	inv := createTestInvitation(t, env, user.ID, design.ID, slug)
	if err := env.Invitations.SetStatus(inv.ID, models.InvitationStatusPublished); err != nil {
		t.Fatalf("publish invitation: %v", err)
	}
	t.Cleanup(func() { env.PageCache.Invalidate(context.Background(), cache.InvitationKey(slug)) })
	return inv
}

func TestInvitationPage_Published(t *testing.T) {
	env := newTestEnv(t)
	slug := "public-page-" + uuid.NewString()[:8]
	publishedInvitation(t, env, slug)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/i/"+slug, nil), "slug", slug)
	rec := httptest.NewRecorder()

	env.Public.InvitationPage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	// Event data is substituted and HTML-escaped.
	if !strings.Contains(rec.Body.String(), "Marie &amp; Thomas") {
		t.Error("page should contain the escaped couple name")
	}

	// Second request is served from the page cache.
	if _, hit := env.PageCache.Get(context.Background(), cache.InvitationKey(slug)); !hit {
		t.Error("rendered page should be cached after the first request")
	}
	rec2 := httptest.NewRecorder()
	env.Public.InvitationPage(rec2, withChiURLParam(httptest.NewRequest(http.MethodGet, "/i/"+slug, nil), "slug", slug))
	if rec2.Body.String() != rec.Body.String() {
		t.Error("cached page should match the first render")
	}
}

func TestInvitationPage_DraftHidden(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, "user")
	design := createTestDesign(t, env, "__test_public_draft", false)
	slug := "draft-page-" + uuid.NewString()[:8]
	createTestInvitation(t, env, user.ID, design.ID, slug)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/i/"+slug, nil), "slug", slug)
	rec := httptest.NewRecorder()

	env.Public.InvitationPage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInvitationPage_UnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/i/nope", nil), "slug", "no-such-slug")
	rec := httptest.NewRecorder()

	env.Public.InvitationPage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInvitationPage_UnpublishEvictsCache(t *testing.T) {
	env := newTestEnv(t)
	slug := "evict-page-" + uuid.NewString()[:8]
	inv := publishedInvitation(t, env, slug)

	// Prime the cache.
	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/i/"+slug, nil), "slug", slug)
	env.Public.InvitationPage(httptest.NewRecorder(), req)

	// Unpublish through the owner handler, which evicts the page.
	owner, err := env.Users.FindByID(inv.UserID)
	if err != nil || owner == nil {
		t.Fatalf("load owner: %v", err)
	}
	unpub := httptest.NewRequest(http.MethodPost, "/api/invitations/x/unpublish", nil)
	unpub = withChiURLParamAndSession(unpub, "id", inv.ID.String(), userSession(owner))
	env.Hosts.Unpublish(httptest.NewRecorder(), unpub)

	rec := httptest.NewRecorder()
	env.Public.InvitationPage(rec, withChiURLParam(httptest.NewRequest(http.MethodGet, "/i/"+slug, nil), "slug", slug))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status after unpublish: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRSVPInfo(t *testing.T) {
	env := newTestEnv(t)
	slug := "rsvp-info-" + uuid.NewString()[:8]
	inv := publishedInvitation(t, env, slug)

	guest, err := env.GuestStore.Create(inv.ID, "Antoine Dupont", nil)
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/rsvp/x", nil), "token", guest.RSVPToken.String())
	rec := httptest.NewRecorder()

	env.Public.RSVPInfo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Antoine Dupont") {
		t.Error("response should contain the guest name")
	}
	if !strings.Contains(body, "Marie & Thomas") {
		t.Error("response should contain the couple name")
	}
}

func TestSubmitRSVP_Attending(t *testing.T) {
	env := newTestEnv(t)
	slug := "rsvp-submit-" + uuid.NewString()[:8]
	inv := publishedInvitation(t, env, slug)

	guest, err := env.GuestStore.Create(inv.ID, "Antoine", nil)
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	body := `{"status": "attending", "plus_ones": 2, "note": "Vegetarian, please."}`
	req := withChiURLParam(postJSON("/rsvp/x", body), "token", guest.RSVPToken.String())
	rec := httptest.NewRecorder()

	env.Public.SubmitRSVP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	stored, err := env.GuestStore.FindByID(guest.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload guest: %v", err)
	}
	if stored.RSVPStatus != models.RSVPAttending {
		t.Errorf("status: got %q, want attending", stored.RSVPStatus)
	}
	if stored.PlusOnes != 2 {
		t.Errorf("plus ones: got %d, want 2", stored.PlusOnes)
	}
	if stored.RespondedAt == nil {
		t.Error("responded_at should be set")
	}
}

func TestSubmitRSVP_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	slug := "rsvp-invalid-" + uuid.NewString()[:8]
	inv := publishedInvitation(t, env, slug)

	guest, err := env.GuestStore.Create(inv.ID, "Antoine", nil)
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	for _, status := range []string{"maybe", "pending", ""} {
		body := fmt.Sprintf(`{"status": %q}`, status)
		req := withChiURLParam(postJSON("/rsvp/x", body), "token", guest.RSVPToken.String())
		rec := httptest.NewRecorder()

		env.Public.SubmitRSVP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status %q: got %d, want %d", status, rec.Code, http.StatusUnprocessableEntity)
		}
	}
}

func TestSubmitRSVP_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	req := withChiURLParam(postJSON("/rsvp/x", `{"status": "attending"}`), "token", uuid.NewString())
	rec := httptest.NewRecorder()

	env.Public.SubmitRSVP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSubmitRSVP_MalformedToken(t *testing.T) {
	env := newTestEnv(t)

	req := withChiURLParam(postJSON("/rsvp/x", `{"status": "attending"}`), "token", "not-a-uuid")
	rec := httptest.NewRecorder()

	env.Public.SubmitRSVP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

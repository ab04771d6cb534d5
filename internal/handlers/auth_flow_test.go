// auth_flow_test.go contains handler integration tests for the Auth handler
// methods: Register, Login, Me, TwoFASetup, TwoFAVerify, and Logout. Tests
// exercise real database and Valkey connections; they are skipped when those
// services are unavailable.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

// postJSON builds a POST request with a JSON body.
func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody unmarshals a recorder's JSON body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body: %v (body: %s)", err, rec.Body.String())
	}
	return out
}

// sessionCookie returns the session cookie set by a response, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "kw_session" && c.Value != "" {
			return c
		}
	}
	return nil
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	env := newTestEnv(t)

	email := fmt.Sprintf("register-%d@example.test", rand.Int63())
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })

	body := fmt.Sprintf(`{"email": %q, "password": "s3cret-pass", "display_name": "New User"}`, email)
	rec := httptest.NewRecorder()
	env.Auth.Register(rec, postJSON("/api/auth/register", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if sessionCookie(rec) == nil {
		t.Error("expected kw_session cookie after registration")
	}

	user, err := env.Users.FindByEmail(email)
	if err != nil || user == nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if string(user.Role) != "user" {
		t.Errorf("role: got %q, want user", user.Role)
	}
}

func TestRegister_RejectsWeakPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.Register(rec, postJSON("/api/auth/register", `{"email": "weak@example.test", "password": "short"}`))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, "user")

	body := fmt.Sprintf(`{"email": %q, "password": "s3cret-pass"}`, user.Email)
	rec := httptest.NewRecorder()
	env.Auth.Register(rec, postJSON("/api/auth/register", body))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLogin_RegularUserIsDone(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, "user")

	body := fmt.Sprintf(`{"email": %q, "password": "s3cret-pass"}`, user.Email)
	rec := httptest.NewRecorder()
	env.Auth.Login(rec, postJSON("/api/auth/login", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := decodeBody(t, rec)["next"]; got != "done" {
		t.Errorf("next: got %v, want done", got)
	}
	if sessionCookie(rec) == nil {
		t.Error("expected kw_session cookie after login")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, "user")

	body := fmt.Sprintf(`{"email": %q, "password": "wrong-password"}`, user.Email)
	rec := httptest.NewRecorder()
	env.Auth.Login(rec, postJSON("/api/auth/login", body))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if sessionCookie(rec) != nil {
		t.Error("no session cookie should be set on failed login")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.Login(rec, postJSON("/api/auth/login", `{"email": "nobody@example.test", "password": "s3cret-pass"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLogin_AdminNeedsTOTPSetup(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestUser(t, env, "admin")

	body := fmt.Sprintf(`{"email": %q, "password": "s3cret-pass"}`, admin.Email)
	rec := httptest.NewRecorder()
	env.Auth.Login(rec, postJSON("/api/auth/login", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := decodeBody(t, rec)["next"]; got != "2fa_setup" {
		t.Errorf("next: got %v, want 2fa_setup", got)
	}
}

func TestLogin_AdminWithTOTPVerifies(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestUser(t, env, "admin")

	if err := env.Users.SetTOTPSecret(admin.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("set totp secret: %v", err)
	}
	if err := env.Users.EnableTOTP(admin.ID); err != nil {
		t.Fatalf("enable totp: %v", err)
	}

	body := fmt.Sprintf(`{"email": %q, "password": "s3cret-pass"}`, admin.Email)
	rec := httptest.NewRecorder()
	env.Auth.Login(rec, postJSON("/api/auth/login", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBody(t, rec)["next"]; got != "2fa_verify" {
		t.Errorf("next: got %v, want 2fa_verify", got)
	}
}

func TestTwoFASetup_ReturnsSecretAndQR(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestUser(t, env, "admin")

	sess := testSession(admin.ID, admin.Email, "admin", false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/setup", nil)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Auth.TwoFASetup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["secret"] == "" || body["secret"] == nil {
		t.Error("expected a TOTP secret in the response")
	}
	if body["qr_png"] == "" || body["qr_png"] == nil {
		t.Error("expected a base64 QR PNG in the response")
	}

	// The secret must be persisted for the later verify step.
	stored, err := env.Users.FindByID(admin.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.TOTPSecret == nil || *stored.TOTPSecret != body["secret"] {
		t.Error("stored TOTP secret should match the returned one")
	}
	if stored.TOTPEnabled {
		t.Error("totp_enabled should stay false until first verification")
	}
}

func TestTwoFAVerify_CompletesEnrollment(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestUser(t, env, "admin")

	const secret = "JBSWY3DPEHPK3PXP"
	if err := env.Users.SetTOTPSecret(admin.ID, secret); err != nil {
		t.Fatalf("set totp secret: %v", err)
	}

	// Create a real session so TwoFAVerify can persist TwoFADone.
	loginRec := httptest.NewRecorder()
	sess := testSession(admin.ID, admin.Email, "admin", false)
	if _, err := env.Sessions.Create(context.Background(), loginRec, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(loginRec)
	if cookie == nil {
		t.Fatal("session cookie missing after Create")
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate totp code: %v", err)
	}

	req := postJSON("/api/auth/2fa/verify", fmt.Sprintf(`{"code": %q}`, code))
	req.AddCookie(cookie)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Auth.TwoFAVerify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	stored, err := env.Users.FindByID(admin.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload user: %v", err)
	}
	if !stored.TOTPEnabled {
		t.Error("totp_enabled should flip true after first successful verification")
	}
}

func TestTwoFAVerify_InvalidCode(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestUser(t, env, "admin")

	if err := env.Users.SetTOTPSecret(admin.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("set totp secret: %v", err)
	}

	sess := testSession(admin.ID, admin.Email, "admin", false)
	req := postJSON("/api/auth/2fa/verify", `{"code": "000000"}`)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Auth.TwoFAVerify(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestTwoFAVerify_WithoutSetup(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestUser(t, env, "admin")

	sess := testSession(admin.ID, admin.Email, "admin", false)
	req := postJSON("/api/auth/2fa/verify", `{"code": "123456"}`)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Auth.TwoFAVerify(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestMe_ReturnsProfile(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, "user")

	sess := testSession(user.ID, user.Email, "user", true)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	env.Auth.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), user.Email) {
		t.Error("response should contain the user's email")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak password material")
	}
}

func TestLogout_DestroysSession(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, "user")

	loginRec := httptest.NewRecorder()
	sess := testSession(user.ID, user.Email, "user", true)
	if _, err := env.Sessions.Create(context.Background(), loginRec, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(loginRec)
	if cookie == nil {
		t.Fatal("session cookie missing after Create")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	env.Auth.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	// The stored session must be gone.
	check := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	check.AddCookie(cookie)
	if data, _ := env.Sessions.Get(context.Background(), check); data != nil {
		t.Error("session should be destroyed after logout")
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/middleware"
)

func sessionWrapped(app *App, h http.HandlerFunc) http.Handler {
	return app.Sessions.LoadAndSave(h)
}

func TestRegisterCreatesAccountWithSignupCredits(t *testing.T) {
	app := newTestApp(t)
	repo := newStubUserRepo()
	app.Users = repo

	rec := httptest.NewRecorder()
	body := `{"name":"Ada","email":"ada@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	sessionWrapped(app, app.Register).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(repo.created))
	}
	user := repo.created[0]
	if user.Credits != domain.SignupCredits {
		t.Fatalf("credits = %d, want %d", user.Credits, domain.SignupCredits)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	app := newTestApp(t)
	repo := newStubUserRepo()
	app.Users = repo

	rec := httptest.NewRecorder()
	body := `{"name":"Ada","email":"  ADA@Example.COM ","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	sessionWrapped(app, app.Register).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if repo.created[0].Email != "ada@example.com" {
		t.Fatalf("email = %q, want normalized", repo.created[0].Email)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.Users = newStubUserRepo(&domain.User{ID: "u1", Email: "ada@example.com"})

	rec := httptest.NewRecorder()
	body := `{"name":"Ada","email":"ada@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	sessionWrapped(app, app.Register).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "User already exists." {
		t.Fatalf("message = %q", got)
	}
}

func TestRegisterRejectsInvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"ada@example.com","password":"hunter22"}`},
		{"missing password", `{"name":"Ada","email":"ada@example.com"}`},
		{"malformed email", `{"name":"Ada","email":"not-an-email","password":"hunter22"}`},
		{"malformed json", `{broken`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tc.body))
			sessionWrapped(app, app.Register).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeMessage(t, rec); got != "Invalid inputs passed." {
				t.Fatalf("message = %q", got)
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	app := newTestApp(t)
	app.Users = newStubUserRepo(&domain.User{
		ID:           "u1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		Credits:      domain.SignupCredits,
	})

	rec := httptest.NewRecorder()
	body := `{"email":"ada@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	sessionWrapped(app, app.Login).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
	var out struct {
		Message string  `json:"message"`
		User    userDTO `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.User.ID != "u1" || out.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user payload: %+v", out.User)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	body := `{"email":"ghost@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	sessionWrapped(app, app.Login).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "User doesn't exist." {
		t.Fatalf("message = %q", got)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	app := newTestApp(t)
	app.Users = newStubUserRepo(&domain.User{ID: "u1", Email: "ada@example.com", PasswordHash: string(hash)})

	rec := httptest.NewRecorder()
	body := `{"email":"ada@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	sessionWrapped(app, app.Login).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Incorrect email or password." {
		t.Fatalf("message = %q", got)
	}
}

func TestLoginRejectsOAuthOnlyAccount(t *testing.T) {
	app := newTestApp(t)
	app.Users = newStubUserRepo(&domain.User{ID: "u1", Email: "ada@example.com"})

	rec := httptest.NewRecorder()
	body := `{"email":"ada@example.com","password":"anything"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	sessionWrapped(app, app.Login).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Invalid login method" {
		t.Fatalf("message = %q", got)
	}
}

func TestVerifyReturnsProfileAndCredits(t *testing.T) {
	app := newTestApp(t)
	app.Users = newStubUserRepo(&domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Credits: 10})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
	app.Verify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		User struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Credits int    `json:"credits"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.User.Credits != 10 || out.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user payload: %+v", out.User)
	}
}

func TestVerifyRejectsDeletedAccount(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "gone"))
	app.Verify(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := decodeMessage(t, rec); got != "Invalid user." {
		t.Fatalf("message = %q", got)
	}
}

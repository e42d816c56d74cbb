package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/middleware"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register creates a password account with the starting credit balance and
// establishes a session.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid inputs passed.")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = domain.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "Invalid inputs passed.")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid inputs passed.")
		return
	}

	if _, err := a.Users.GetByEmail(r.Context(), req.Email); err == nil {
		a.error(w, http.StatusBadRequest, "User already exists.")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		a.Logger.Error().Err(err).Msg("register: lookup user failed")
		a.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("register: hash password failed")
		a.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Credits:      domain.SignupCredits,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.Logger.Error().Err(err).Msg("register: create user failed")
		a.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := a.establishSession(r, user.ID); err != nil {
		a.Logger.Error().Err(err).Msg("register: session error")
		a.error(w, http.StatusInternalServerError, "Session error")
		return
	}

	a.Logger.Info().
		Str("user_id", user.ID).
		Str("country", a.clientCountry(r)).
		Msg("auth: account registered")

	a.json(w, http.StatusOK, map[string]any{
		"message": "Account created successfully",
		"user":    userDTO{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Login authenticates a password account and establishes a session.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid inputs passed.")
		return
	}
	req.Email = domain.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "Invalid inputs passed.")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusBadRequest, "User doesn't exist.")
			return
		}
		a.Logger.Error().Err(err).Msg("login: lookup user failed")
		a.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// OAuth-only accounts have no password hash.
	if !user.HasPassword() {
		a.error(w, http.StatusBadRequest, "Invalid login method")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.error(w, http.StatusBadRequest, "Incorrect email or password.")
		return
	}

	if err := a.establishSession(r, user.ID); err != nil {
		a.Logger.Error().Err(err).Msg("login: session error")
		a.error(w, http.StatusInternalServerError, "Session error")
		return
	}

	a.Logger.Info().
		Str("user_id", user.ID).
		Str("country", a.clientCountry(r)).
		Msg("auth: logged in")

	a.json(w, http.StatusOK, map[string]any{
		"message": "Account logged-in successfully",
		"user":    userDTO{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Logout destroys the current session.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Destroy(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("logout: destroy session failed")
		a.error(w, http.StatusBadRequest, "Failed to logout")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Logout successful."})
}

// Verify confirms the session belongs to a live account and returns the
// profile the SPA needs at boot.
func (a *App) Verify(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, "Invalid user.")
			return
		}
		a.Logger.Error().Err(err).Msg("verify: lookup user failed")
		a.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"message": "User verified",
		"user": map[string]any{
			"name":    user.Name,
			"email":   user.Email,
			"credits": user.Credits,
		},
	})
}

// establishSession rotates the session token and binds it to the user.
// Token rotation on privilege change prevents session fixation.
func (a *App) establishSession(r *http.Request, userID string) error {
	if err := a.Sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	a.Sessions.Put(r.Context(), middleware.SessionUserID, userID)
	return nil
}

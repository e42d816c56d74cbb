package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"server/internal/auth"
	"server/internal/domain"
)

// GoogleLogin starts the OAuth flow by redirecting to Google's consent
// screen with a signed CSRF state token.
func (a *App) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.Google.Configured() {
		a.error(w, http.StatusInternalServerError, "Google sign-in is not configured")
		return
	}
	state := auth.SignState(a.Config.SessionSecret)
	http.Redirect(w, r, a.Google.AuthURL(state), http.StatusFound)
}

// GoogleCallback completes the OAuth flow: verifies the state, exchanges the
// code, upserts the account by email, establishes a session, and redirects
// back to the SPA. Failures redirect with an error query parameter because
// the browser, not the SPA, is driving this request.
func (a *App) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !a.Google.Configured() {
		a.loginRedirect(w, r, "oauth_failed")
		return
	}

	q := r.URL.Query()
	if q.Get("error") != "" {
		a.Logger.Warn().Str("error", q.Get("error")).Msg("oauth: consent denied")
		a.loginRedirect(w, r, "oauth_denied")
		return
	}
	if !auth.VerifyState(a.Config.SessionSecret, q.Get("state")) {
		a.Logger.Warn().Msg("oauth: state verification failed")
		a.loginRedirect(w, r, "invalid_state")
		return
	}

	profile, err := a.Google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		a.Logger.Error().Err(err).Msg("oauth: code exchange failed")
		a.loginRedirect(w, r, "oauth_failed")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), profile.Email)
	if errors.Is(err, domain.ErrNotFound) {
		user = &domain.User{
			ID:      uuid.NewString(),
			Name:    displayName(profile),
			Email:   domain.NormalizeEmail(profile.Email),
			Credits: domain.SignupCredits,
		}
		if err := a.Users.Create(r.Context(), user); err != nil {
			a.Logger.Error().Err(err).Msg("oauth: create user failed")
			a.loginRedirect(w, r, "oauth_failed")
			return
		}
	} else if err != nil {
		a.Logger.Error().Err(err).Msg("oauth: lookup user failed")
		a.loginRedirect(w, r, "oauth_failed")
		return
	}

	if err := a.establishSession(r, user.ID); err != nil {
		a.Logger.Error().Err(err).Msg("oauth: session error")
		a.loginRedirect(w, r, "session_error")
		return
	}

	a.Logger.Info().
		Str("user_id", user.ID).
		Str("country", a.clientCountry(r)).
		Msg("auth: logged in via google")

	http.Redirect(w, r, a.Config.ClientURL, http.StatusFound)
}

func (a *App) loginRedirect(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, a.Config.ClientURL+"/login?error="+reason, http.StatusFound)
}

func displayName(profile *auth.GoogleUser) string {
	if profile.Name != "" {
		return profile.Name
	}
	// Fall back to the local part of the email.
	for i, c := range profile.Email {
		if c == '@' {
			return profile.Email[:i]
		}
	}
	return profile.Email
}

package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/pkg/errors"
)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := loginBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil || validate.Struct(body) != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "login.parse_body", "Login and password are required")
			return
		}

		user, err := auth.VerifyCredentials(r.Context(), app, body.Login, body.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Audit("LOGIN_FAILED", log.Fields{"login": body.Login, "ip": httpx.ClientIP(r)})
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "login.credentials", "Invalid credentials")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "login.credentials", err)
			return
		}

		p := auth.Principal{UserID: user.ID, Role: user.Role}
		if !setTokenCookies(app, w, p, true) {
			return
		}

		log.Audit("LOGIN_SUCCESS", log.Fields{"userId": user.ID, "login": user.Login, "role": user.Role})

		render.JSON(w, r, map[string]any{
			"mustChangePassword": user.MustChangePassword,
			"user": map[string]any{
				"id":    user.ID,
				"login": user.Login,
				"role":  user.Role,
			},
		})
	}
}

// setTokenCookies issues an access token, and a refresh token too when
// withRefresh is set.
func setTokenCookies(app app.App, w http.ResponseWriter, p auth.Principal, withRefresh bool) bool {
	access, err := app.IssueAccess(p)
	if err != nil {
		httpx.LogInternalError(w, "token.issue_access", err)
		return false
	}
	var refresh string
	if withRefresh {
		refresh, err = app.IssueRefresh(p)
		if err != nil {
			httpx.LogInternalError(w, "token.issue_refresh", err)
			return false
		}
	}

	httpx.SetAuthCookie(w, auth.AccessCookie, access, app.Tokens.AccessTTL, app.SecureCookies)
	if withRefresh {
		httpx.SetAuthCookie(w, auth.RefreshCookie, refresh, app.Tokens.RefreshTTL, app.SecureCookies)
	}
	return true
}

// Refresh trades a valid refresh token cookie for a new access token. The
// role is read again from the database.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.RefreshCookie)
		if err != nil || cookie.Value == "" {
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "refresh.cookie", "Refresh token required")
			return
		}

		p, err := app.VerifyRefresh(cookie.Value)
		if err != nil {
			httpx.ClearAuthCookie(w, auth.RefreshCookie, app.SecureCookies)
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "refresh.verify", "Invalid refresh token")
			return
		}

		user, err := auth.FindUserByID(r.Context(), app, p.UserID)
		if errors.Is(err, auth.ErrUserNotFound) {
			httpx.ClearAuthCookie(w, auth.RefreshCookie, app.SecureCookies)
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "refresh.user", "Invalid refresh token")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		if !setTokenCookies(app, w, auth.Principal{UserID: user.ID, Role: user.Role}, false) {
			return
		}

		render.JSON(w, r, map[string]any{"message": "Token refreshed"})
	}
}

func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.ClearAuthCookie(w, auth.AccessCookie, app.SecureCookies)
		httpx.ClearAuthCookie(w, auth.RefreshCookie, app.SecureCookies)
		render.JSON(w, r, map[string]any{"message": "Logged out successfully"})
	}
}

func ChangePassword(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		body := changePasswordBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		if body.CurrentPassword == "" || body.NewPassword == "" {
			log.Audit("CHANGE_PASSWORD_FAILED", log.Fields{"userId": p.UserID, "reason": "Missing passwords"})
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "change_password.validate", "Current and new passwords are required")
			return
		}
		if err = validate.Struct(body); err != nil {
			log.Audit("CHANGE_PASSWORD_FAILED", log.Fields{"userId": p.UserID, "reason": "Invalid new password format"})
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "change_password.validate", "%s", auth.PasswordPolicy)
			return
		}

		user, err := auth.FindUserByID(r.Context(), app, p.UserID)
		if errors.Is(err, auth.ErrUserNotFound) {
			log.Audit("CHANGE_PASSWORD_FAILED", log.Fields{"userId": p.UserID, "reason": "User not found"})
			httpx.LogNotFound(w, "change_password.user", p.UserID, "User not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		if !auth.VerifyPassword(body.CurrentPassword, user.PasswordHash) {
			log.Audit("CHANGE_PASSWORD_FAILED", log.Fields{"userId": p.UserID, "reason": "Current password incorrect"})
			httpx.LogStatusMsg(w, http.StatusUnauthorized, log.DebugLevel, "change_password.verify", "Current password is incorrect")
			return
		}

		hash, err := auth.HashPassword(body.NewPassword)
		if err != nil {
			httpx.LogInternalError(w, "change_password.hash", err)
			return
		}
		_, err = app.ExecContext(r.Context(), `
			UPDATE user
			SET password_hash = ?, must_change_password = 0, updated_at = ?
			WHERE id = ?`,
			hash, time.Now().UTC(), user.ID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_password", err)
			return
		}

		log.Audit("CHANGE_PASSWORD_SUCCESS", log.Fields{"userId": user.ID, "login": user.Login})

		render.JSON(w, r, map[string]any{"message": "Password changed successfully"})
	}
}

func Me(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		user, err := auth.FindUserByID(r.Context(), app, p.UserID)
		if errors.Is(err, auth.ErrUserNotFound) {
			httpx.LogNotFound(w, "me.user", p.UserID, "User not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_user", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"id":                 user.ID,
			"login":              user.Login,
			"role":               user.Role,
			"mustChangePassword": user.MustChangePassword,
		})
	}
}

package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

func CreateUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		body := createUserBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		if err = validate.Struct(body); err != nil {
			details := problems(err)
			log.Audit("CREATE_USER_FAILED", log.Fields{"createdBy": p.UserID, "login": body.Login, "reason": details})
			httpx.LogInvalid(w, "create_user.validate", "Invalid user", details)
			return
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			httpx.LogInternalError(w, "create_user.hash", err)
			return
		}
		id, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "create_user.id", err)
			return
		}

		u := model.User{
			ID:        id.String(),
			Login:     body.Login,
			Role:      body.Role,
			CreatedAt: time.Now().UTC(),
		}
		u.UpdatedAt = u.CreatedAt

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO user (id, login, password_hash, role, must_change_password, created_at, updated_at)
			VALUES (?, ?, ?, ?, 0, ?, ?)`,
			u.ID, u.Login, hash, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			log.Audit("CREATE_USER_FAILED", log.Fields{"createdBy": p.UserID, "login": body.Login, "reason": "Login already exists"})
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "create_user.unique", "Login already exists")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_user", err)
			return
		}

		log.Audit("CREATE_USER", log.Fields{"createdBy": p.UserID, "userId": u.ID, "login": u.Login, "role": u.Role})

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, u)
	}
}

func ListUsers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, login, role, must_change_password, created_at, updated_at
			FROM user
			ORDER BY created_at, login`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_users", err)
			return
		}
		defer rows.Close()

		users := []model.User{}
		for rows.Next() {
			u := model.User{}
			err = rows.Scan(&u.ID, &u.Login, &u.Role, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_users.scan", err)
				return
			}
			users = append(users, u)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_users.rows", err)
			return
		}

		render.JSON(w, r, users)
	}
}

// userParam loads the user named by the id URL parameter. On failure the
// response is already written.
func userParam(app app.App, w http.ResponseWriter, r *http.Request, code string) (model.User, bool) {
	userId := chi.URLParam(r, "id")

	u, err := auth.FindUserByID(r.Context(), app, userId)
	if errors.Is(err, auth.ErrUserNotFound) {
		httpx.LogNotFound(w, code, userId, "User not found")
		return u, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_user", err)
		return u, false
	}
	return u, true
}

func GetUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := userParam(app, w, r, "get_user")
		if !ok {
			return
		}
		render.JSON(w, r, u)
	}
}

// UpdateUser changes a user's role.
func UpdateUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		body := updateUserBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		if err = validate.Struct(body); err != nil {
			details := problems(err)
			log.Audit("UPDATE_USER_FAILED", log.Fields{"updatedBy": p.UserID, "reason": details})
			httpx.LogInvalid(w, "update_user.validate", "Invalid user", details)
			return
		}

		u, ok := userParam(app, w, r, "update_user")
		if !ok {
			return
		}

		if body.Role != "" {
			u.Role = body.Role
		}
		u.UpdatedAt = time.Now().UTC()

		_, err = app.ExecContext(r.Context(), `
			UPDATE user SET role = ?, updated_at = ?
			WHERE id = ?`,
			u.Role, u.UpdatedAt, u.ID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_user", err)
			return
		}

		log.Audit("UPDATE_USER", log.Fields{"updatedBy": p.UserID, "userId": u.ID, "role": u.Role})

		render.JSON(w, r, u)
	}
}

// DeleteUser removes an admin account with all its surveys. Superadmins and
// the caller's own account cannot be deleted.
func DeleteUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())

		if chi.URLParam(r, "id") == p.UserID {
			log.Audit("DELETE_USER_FAILED", log.Fields{"deletedBy": p.UserID, "reason": "Cannot delete own account"})
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "delete_user.self", "Cannot delete your own account")
			return
		}

		u, ok := userParam(app, w, r, "delete_user")
		if !ok {
			return
		}
		if u.Role == model.RoleSuperAdmin {
			log.Audit("DELETE_USER_FAILED", log.Fields{"deletedBy": p.UserID, "userId": u.ID, "reason": "Cannot delete superadmin"})
			httpx.LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, "delete_user.superadmin", "Cannot delete superadmin account")
			return
		}

		_, err := app.ExecContext(r.Context(), `DELETE FROM user WHERE id = ?`, u.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_user", err)
			return
		}

		log.Audit("DELETE_USER", log.Fields{"deletedBy": p.UserID, "userId": u.ID})

		render.JSON(w, r, map[string]any{"message": "User deleted successfully"})
	}
}

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

const SuperAdminLogin = "admin"

// EnsureSuperAdmin creates the initial superadmin account unless a user
// with its login already exists. The account must change its password at
// first login.
func EnsureSuperAdmin(ctx context.Context, db *sql.DB, password string) error {
	_, err := auth.FindUserByLogin(ctx, db, SuperAdminLogin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return errors.Wrap(err, "db.find_superadmin")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return errors.Wrap(err, "db.superadmin.id")
	}

	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, `
		INSERT INTO user (id, login, password_hash, role, must_change_password, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		id.String(), SuperAdminLogin, hash, model.RoleSuperAdmin, now, now,
	)
	if err != nil {
		return errors.Wrap(err, "db.insert_superadmin")
	}

	log.Warnf("created superadmin %q: change its password at first login", SuperAdminLogin)
	return nil
}

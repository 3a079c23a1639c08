package auth

import (
	"context"
	"database/sql"

	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, login, password_hash, role, must_change_password, created_at, updated_at`

func FindUserByLogin(ctx context.Context, db Querier, login string) (model.User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE login = ?`, login))
}

func FindUserByID(ctx context.Context, db Querier, id string) (model.User, error) {
	return scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE id = ?`, id))
}

func scanUser(row *sql.Row) (u model.User, err error) {
	err = row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrUserNotFound
	}
	return
}

// VerifyCredentials returns the user owning login if password matches.
// Unknown logins and wrong passwords are indistinguishable to the caller.
func VerifyCredentials(ctx context.Context, db Querier, login, password string) (model.User, error) {
	u, err := FindUserByLogin(ctx, db, login)
	if errors.Is(err, ErrUserNotFound) {
		return u, ErrInvalidCredentials
	}
	if err != nil {
		return u, errors.Wrap(err, "auth.find_user")
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

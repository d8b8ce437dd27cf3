package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classroom/core/user"
	"github.com/trezcool/classroom/storage/database"
)

const userColumns = `id, username, email, role, password_hash, created_at`

type userRow struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// uniqueError maps a unique violation on "user" to the matching domain error.
func (repo *userRepository) uniqueError(err error) error {
	if !database.IsUniqueViolation(err) {
		return err
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Constraint == "user_email_key" {
		return user.ErrEmailExists
	}
	return user.ErrUsernameExists
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error {
	w := new(where)
	w.add("(username = ? OR email = ?)", username, email)
	if len(excludedIDs) > 0 {
		cond, args, err := sqlx.In("id NOT IN (?)", excludedIDs)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		w.add(cond, args...)
	}

	var rows []userRow
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM "user"` + w.String() + ` LIMIT 2`)
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if r.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO "user" (username, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		usr.Username, usr.Email, usr.Role, usr.PasswordHash, usr.CreatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(repo.uniqueError(err), "inserting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	w := new(where)
	if filter.ID != 0 {
		w.add("id = ?", filter.ID)
	}
	if filter.UsernameOrEmail != "" {
		w.add("(username = ? OR email = ?)", filter.UsernameOrEmail, filter.UsernameOrEmail)
	}

	var row userRow
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM "user"` + w.String() + ` ORDER BY id LIMIT 1`)
	if err := repo.db.GetContext(ctx, &row, q, w.args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	w := new(where)
	if filter.Roles != nil {
		if len(filter.Roles) == 0 {
			return []user.User{}, nil
		}
		cond, args, err := sqlx.In("role IN (?)", filter.Roles)
		if err != nil {
			return nil, errors.Wrap(err, "building users query")
		}
		w.add(cond, args...)
	}
	if filter.IDs != nil {
		if err := w.in("id", filter.IDs); err != nil {
			return nil, errors.Wrap(err, "building users query")
		}
	}

	var rows []userRow
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM "user"` + w.String() + ` ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE "user" SET username = $2, email = $3, role = $4, password_hash = COALESCE($5, password_hash)
		WHERE id = $1
		RETURNING `+userColumns,
		usr.ID, usr.Username, usr.Email, usr.Role, null.NewBytes(usr.PasswordHash, usr.PasswordHash != nil),
	)
	switch {
	case err == sql.ErrNoRows:
		return user.User{}, user.ErrNotFound
	case err != nil:
		return user.User{}, errors.Wrap(repo.uniqueError(err), "updating user")
	}
	return row.toUser(), nil
}

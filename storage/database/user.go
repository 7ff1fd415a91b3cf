package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// dbUser is the "user" table row.
type dbUser struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	SchoolName   null.String    `db:"school_name"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (repo userRepository) row(usr user.User) dbUser {
	return dbUser{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		SchoolName:   null.NewString(usr.SchoolName, usr.SchoolName != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unrow(row dbUser) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		SchoolName:   row.SchoolName.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += ` AND NOT (id = ANY($3))`
		args = append(args, pq.Array(ids))
	}

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if row.Username.String == username {
			return user.ErrUsernameExists
		}
		if row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.row(usr)
	q := `
INSERT INTO "user" (id, name, username, email, school_name, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :school_name, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		switch {
		case isUniqueViolation(err, "user_username_key"):
			return user.User{}, user.ErrUsernameExists
		case isUniqueViolation(err, "user_email_key"):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := `SELECT * FROM "user"`
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			clauses = append(clauses, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
		}
		if filter.Roles != nil {
			clauses = append(clauses, fmt.Sprintf("roles && %s", arg(pq.Array(filter.Roles))))
		}
		if filter.IsActive != nil {
			clauses = append(clauses, fmt.Sprintf("is_active = %s", arg(*filter.IsActive)))
		}
		if !filter.CreatedFrom.IsZero() {
			clauses = append(clauses, fmt.Sprintf("created_at >= %s", arg(filter.CreatedFrom)))
		}
		if !filter.CreatedTo.IsZero() {
			clauses = append(clauses, fmt.Sprintf("created_at <= %s", arg(filter.CreatedTo)))
		}
	}
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += orderBy(ordering, "created_at DESC")

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unrow(row))
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var clause string
	var arg interface{}
	switch {
	case filter.ID != "":
		clause, arg = "id = $1", filter.ID
	case filter.Username != "":
		clause, arg = "username = $1", filter.Username
	case filter.Email != "":
		clause, arg = "email = $1", filter.Email
	case filter.UsernameOrEmail != "":
		clause, arg = "(username = $1 OR email = $1)", filter.UsernameOrEmail
	default:
		return user.User{}, user.ErrNotFound
	}

	var row dbUser
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE `+clause, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.UpdatedAt = time.Now().UTC()
	row := repo.row(usr)
	q := `
UPDATE "user"
SET name          = :name,
    username      = :username,
    email         = :email,
    school_name   = :school_name,
    is_active     = :is_active,
    roles         = :roles,
    password_hash = :password_hash,
    updated_at    = :updated_at,
    last_login    = :last_login
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		switch {
		case isUniqueViolation(err, "user_username_key"):
			return user.User{}, user.ErrUsernameExists
		case isUniqueViolation(err, "user_email_key"):
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

// orderBy renders an ORDER BY clause from the given ordering, falling back to
// dflt when none is provided. Field names come from application code, never
// user input.
func orderBy(ordering []core.DBOrdering, dflt string) string {
	if len(ordering) == 0 {
		if dflt == "" {
			return ""
		}
		return " ORDER BY " + dflt
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

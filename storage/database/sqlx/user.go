// Package sqlxrepos implements the repositories over Postgres with sqlx,
// mirroring the document repositories' semantics.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/bukhari/academy/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Role         string      `db:"role"`
	GroupID      null.String `db:"group_id"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
	usr.SetActive(r.IsActive)
	if r.GroupID.Valid {
		usr.GroupID = &r.GroupID.String
	}
	return usr
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, len(rows))
	for i, r := range rows {
		users[i] = r.toUser()
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

var _ user.Repository = (*userRepository)(nil)

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := `SELECT COUNT(*) FROM profile WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, usr.ID)
		}
		q += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return err
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `
	INSERT INTO profile (id, email, first_name, last_name, role, group_id, is_active, password_hash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Email, usr.FirstName, usr.LastName, usr.Role,
		null.StringFromPtr(usr.GroupID), usr.Active(), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	return usr, err
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	q := `SELECT * FROM profile ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	q := `SELECT * FROM profile WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	q := `SELECT * FROM profile WHERE email = $1`
	if err := repo.db.GetContext(ctx, &row, q, email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := `SELECT * FROM profile WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + strings.ToLower(filter.Search) + "%")
		q += fmt.Sprintf(" AND (LOWER(first_name) LIKE %[1]s OR LOWER(last_name) LIKE %[1]s OR LOWER(email) LIKE %[1]s)", p)
	}
	if filter.Role != "" {
		q += " AND role = " + arg(filter.Role)
	}
	if filter.GroupID != "" {
		q += " AND group_id = " + arg(filter.GroupID)
	}
	if filter.IsActive != nil {
		q += " AND is_active = " + arg(*filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		q += " AND created_at >= " + arg(filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		q += " AND created_at <= " + arg(filter.CreatedTo)
	}
	q += " ORDER BY created_at DESC"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	q := `
	UPDATE profile SET
		email      = COALESCE(NULLIF($2, ''), email),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name  = COALESCE(NULLIF($4, ''), last_name),
		role       = COALESCE(NULLIF($5, ''), role),
		group_id   = COALESCE($6, group_id),
		is_active  = COALESCE($7, is_active),
		password_hash = CASE WHEN length($8) > 0 THEN $8 ELSE password_hash END,
		updated_at = $9
	WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Email, usr.FirstName, usr.LastName, usr.Role,
		null.StringFromPtr(usr.GroupID), null.BoolFromPtr(isActive), usr.PasswordHash, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE profile SET last_login = $2 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, usr.ID, usr.LastLogin); err != nil {
		return user.User{}, err
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM profile WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return err
}

func trapNoRowsErr(err, alt error) error {
	if err == sql.ErrNoRows {
		return alt
	}
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/platform/logger"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// userColumns maps exposed field names to users table columns for
// filtering and sorting.
var userColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

const userSelectColumns = "id, name, email, photo, role, hashed_password, " +
	"password_changed_at, password_reset_token, password_reset_expires, " +
	"active, created_at, updated_at"

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a PostgreSQL-backed UserStore. The connection
// is initialized and managed by the caller.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password must be hashed before storage", store.ErrInvalidEntity)
	}

	sqlStr, args, err := psql.Insert("users").
		Columns("id", "name", "email", "photo", "role", "hashed_password", "active", "created_at", "updated_at").
		Values(user.ID, user.Name, user.Email, user.Photo, user.Role, user.HashedPassword, user.Active, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		logger.FromContext(ctx).Error("failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, sq.Eq{"id": id, "active": true})
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, sq.Eq{"email": email, "active": true})
}

// GetByResetToken implements store.UserStore.GetByResetToken.
func (s *UserStore) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return s.getOne(ctx, sq.And{
		sq.Eq{"password_reset_token": tokenHash, "active": true},
		sq.Gt{"password_reset_expires": time.Now().UTC()},
	})
}

func (s *UserStore) getOne(ctx context.Context, pred sq.Sqlizer) (*domain.User, error) {
	sqlStr, args, err := psql.Select(userSelectColumns).
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List implements store.UserStore.List. Inactive users are excluded
// explicitly; there is no hidden query interception.
func (s *UserStore) List(ctx context.Context, opts *query.Options) ([]*domain.User, int, error) {
	active := sq.Eq{"active": true}

	total, err := countMatching(ctx, s.db, "users", active, opts.Filter, userColumns)
	if err != nil {
		return nil, 0, err
	}
	if err := checkPage(opts, total); err != nil {
		return nil, 0, err
	}

	b := psql.Select(userSelectColumns).From("users").Where(active)
	if b, err = applyFilter(b, opts.Filter, userColumns); err != nil {
		return nil, 0, err
	}
	if b, err = applySort(b, opts.Sort, userColumns, "created_at DESC"); err != nil {
		return nil, 0, err
	}
	b = applyPagination(b, opts)

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Update implements store.UserStore.Update.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	user.UpdatedAt = time.Now().UTC()

	sqlStr, args, err := psql.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("photo", user.Photo).
		Set("role", user.Role).
		Set("hashed_password", user.HashedPassword).
		Set("password_changed_at", nullTime(user.PasswordChangedAt)).
		Set("password_reset_token", nullString(user.PasswordResetToken)).
		Set("password_reset_expires", nullTime(user.PasswordResetExpires)).
		Set("active", user.Active).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		logger.FromContext(ctx).Error("failed to update user", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// Deactivate implements store.UserStore.Deactivate.
func (s *UserStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	sqlStr, args, err := psql.Update("users").
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	sqlStr, args, err := psql.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res, store.ErrUserNotFound)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user         domain.User
		photo        sql.NullString
		changedAt    sql.NullTime
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &photo, &user.Role, &user.HashedPassword,
		&changedAt, &resetToken, &resetExpires,
		&user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Photo = photo.String
	user.PasswordChangedAt = changedAt.Time
	user.PasswordResetToken = resetToken.String
	user.PasswordResetExpires = resetExpires.Time
	return &user, nil
}

// requireAffected converts a zero-row write into the given not-found error.
func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

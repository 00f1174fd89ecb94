package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, username, email, password_hash, display_name, bio, avatar_url,
	is_private, created_at, updated_at, deleted_at`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u         domain.User
		isPrivate int
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.Bio,
		&u.AvatarURL,
		&isPrivate,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsPrivate = isPrivate != 0
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the id, username or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, username_lower, email, email_lower, password_hash,
			display_name, bio, avatar_url, is_private, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		strings.ToLower(user.Username),
		user.Email,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.PasswordHash,
		user.DisplayName,
		user.Bio,
		user.AvatarURL,
		boolToInt(user.IsPrivate),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		nullTimeString(user.DeletedAt),
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID, excluding soft-deleted records.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// GetUserByLogin retrieves a user by email or username, excluding soft-deleted records.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	key := strings.ToLower(strings.TrimSpace(login))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE (email_lower = ? OR username_lower = ?) AND deleted_at IS NULL`, key, key)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *Store) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate, now time.Time) (*domain.User, error) {
	var (
		sets []string
		args []any
	)
	if update.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *update.DisplayName)
	}
	if update.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *update.Bio)
	}
	if update.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *update.AvatarURL)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(now), userID)

	return s.updateUser(ctx, userID, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`, args...)
}

// SetPrivacy sets the private flag.
func (s *Store) SetPrivacy(ctx context.Context, userID string, isPrivate bool, now time.Time) (*domain.User, error) {
	return s.updateUser(ctx, userID,
		`UPDATE users SET is_private = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		boolToInt(isPrivate), formatTime(now), userID)
}

func (s *Store) updateUser(ctx context.Context, userID, query string, args ...any) (*domain.User, error) {
	var updated *domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound.WithMessage("user not found")
		}
		updated, err = scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListUsers returns every active user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusconnect/entity"
	"campusconnect/lib/clock"
)

const userColumns = `id, email, name, role, phone, guest_code, password_hash, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *entity.User) error {
	if user.Id == "" {
		user.Id = uuid.New().String()
	}
	user.Email = entity.NormalizeEmail(user.Email)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Id, user.Email, user.Name, string(user.Role), user.Phone,
		nullable(user.GuestCode), user.PasswordHash,
		clock.Format(user.CreatedAt), clock.Format(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			if user.GuestCode != "" {
				if existing, lookupErr := s.GetUserByEmail(ctx, user.Email); lookupErr == nil && existing != nil {
					return entity.ErrEmailTaken
				}
				return entity.ErrGuestCodeTaken
			}
			return entity.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*entity.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, entity.NormalizeEmail(email))
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]*entity.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser applies an admin-side update; role and guest code are
// writable here, unlike UpdateProfile.
func (s *Store) UpdateUser(ctx context.Context, id string, req *entity.UserUpdateRequest) (*entity.User, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, role = ?, phone = ?, guest_code = ?, updated_at = ? WHERE id = ?`,
		req.Name, string(req.Role), req.Phone, nullable(req.GuestCode), clock.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrGuestCodeTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if _, err := s.GetUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

// UpdateProfile applies the self-service fields only.
func (s *Store) UpdateProfile(ctx context.Context, id string, req *entity.ProfileUpdateRequest) (*entity.User, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ?, updated_at = ? WHERE id = ?`,
		req.Name, req.Phone, clock.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the user and, in the same transaction, all
// registrations the user holds.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete user registrations: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return entity.ErrNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	var role string
	var guestCode sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&user.Id, &user.Email, &user.Name, &role, &user.Phone,
		&guestCode, &user.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = entity.Role(role)
	user.GuestCode = guestCode.String
	if user.CreatedAt, err = clock.Parse(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = clock.Parse(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

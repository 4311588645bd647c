package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// EnsureUser creates an admin user, or resets its password.
func (s *Store) EnsureUser(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO app_user (username, password_hash) VALUES (?, ?)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`),
		username, hash,
	)
	return err
}

// CheckPassword verifies the credentials of a user.
func (s *Store) CheckPassword(ctx context.Context, username, password string) error {
	var hash []byte
	err := s.db.
		QueryRowContext(ctx, s.q("SELECT password_hash FROM app_user WHERE username = ?"), username).
		Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return err
	}

	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

func (s *Store) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)`),
		username,
		tokenID,
		refreshTokenID,
		expiration,
	)
	return err
}

// ConsumeToken deletes a refresh token pair and returns its expiration.
func (s *Store) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) (time.Time, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, err
	}
	defer tx.Rollback()

	var expiration time.Time
	err = tx.
		QueryRowContext(ctx, s.q(`
			SELECT expiration FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?`),
			username,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("token of %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return time.Time{}, err
	}

	_, err = tx.ExecContext(ctx, s.q(`
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`),
		username,
		tokenID,
		refreshTokenID,
	)
	if err != nil {
		return time.Time{}, err
	}
	return expiration, tx.Commit()
}

func (s *Store) Now() time.Time {
	return s.clock.Now()
}

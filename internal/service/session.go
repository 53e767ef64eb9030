package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Snape93/nutrition-sub008/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim without verifying the signature; the
// client never holds the signing key. Opaque tokens yield nil.
func TokenExpiry(token string) *time.Time {
	if strings.Count(token, ".") != 2 {
		return nil
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}

func SaveSession(db *sql.DB, username, token string, now time.Time) (model.Session, error) {
	username = strings.TrimSpace(username)
	token = strings.TrimSpace(token)
	if username == "" {
		return model.Session{}, fmt.Errorf("session username is required")
	}
	s := model.Session{Username: username, Token: token, ExpiresAt: TokenExpiry(token), CreatedAt: now.UTC()}
	var expires any
	if s.ExpiresAt != nil {
		expires = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	_, err := db.Exec(`
INSERT INTO session(id, username, token, expires_at, created_at)
VALUES(1, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  username=excluded.username,
  token=excluded.token,
  expires_at=excluded.expires_at,
  created_at=excluded.created_at
`, s.Username, s.Token, expires, s.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// LoadSession returns nil when nobody is logged in.
func LoadSession(db *sql.DB) (*model.Session, error) {
	var s model.Session
	var expires sql.NullString
	var created string
	err := db.QueryRow(`SELECT username, token, expires_at, created_at FROM session WHERE id = 1`).Scan(&s.Username, &s.Token, &expires, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if expires.Valid && expires.String != "" {
		t, err := time.Parse(time.RFC3339, expires.String)
		if err != nil {
			return nil, fmt.Errorf("parse session expiry: %w", err)
		}
		s.ExpiresAt = &t
	}
	s.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	return &s, nil
}

func ClearSession(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

package models

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrPostNotFound      = errors.New("post not found")
)

func CreateUser(db *sql.DB, email, username, passwordHash string) error {
	_, err := db.Exec(`INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)`, email, username, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return ErrDuplicateEmail
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return ErrDuplicateUsername
		}
	}
	return err
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	row := db.QueryRow(`SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	row := db.QueryRow(`SELECT id, email, username, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateSession(db *sql.DB, userID int64, sessionID string, expires time.Time) error {
	// revoke existing
	_, err := db.Exec(`UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP WHERE user_id = ? AND revoked_at IS NULL`, userID)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`, sessionID, userID, expires)
	return err
}

func GetSession(db *sql.DB, id string) (*Session, error) {
	row := db.QueryRow(`SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id)
	var s Session
	var revoked sql.NullTime
	if err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revoked); err != nil {
		return nil, err
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return &s, nil
}

func RevokeSession(db *sql.DB, id string) error {
	_, err := db.Exec(`UPDATE sessions SET revoked_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// InsertGeneratedPost stores one generation for userID and returns the
// assigned id. Platform and prompt may be empty; they are stored as NULL.
func InsertGeneratedPost(ctx context.Context, db *sql.DB, userID int64, content, platform, prompt string) (string, error) {
	id := uuid.NewString()
	// created_at is assigned here with full precision; the table default
	// only has second resolution, which breaks newest-first ordering for
	// rapid successive saves.
	_, err := db.ExecContext(ctx,
		`INSERT INTO generated_posts (id, user_id, content, platform, prompt, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, content, nullable(platform), nullable(prompt), time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListGeneratedPosts returns all of userID's saved posts, newest first.
// The id tie-break keeps the order stable when timestamps collide.
func ListGeneratedPosts(ctx context.Context, db *sql.DB, userID int64) ([]GeneratedPost, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, content, platform, prompt, created_at
         FROM generated_posts WHERE user_id = ?
         ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []GeneratedPost
	for rows.Next() {
		var p GeneratedPost
		var platform, prompt sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &platform, &prompt, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Platform = platform.String
		p.Prompt = prompt.String
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeleteGeneratedPost removes the post only when it belongs to userID;
// ownership is enforced here, never by client-side filtering.
func DeleteGeneratedPost(ctx context.Context, db *sql.DB, id string, userID int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM generated_posts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// SQLRepository is the database/sql implementation of Repository. Queries
// are written with "?" placeholders and rebound for the dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

// Create inserts the user row and its note references. A clash on the
// username index is reported as common.ErrUsernameTaken.
func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, password_hash, email, fullname)
		 VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.q(query),
		user.ID, user.UserName, user.PasswordHash, user.Email, user.FullName)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, noteID := range user.Notes {
		if err := r.AddNote(ctx, user.ID, noteID); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// GetByID returns the full user document, note references included.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, email, fullname FROM users
		 WHERE id = ?`

	user, err := r.scanOne(ctx, query, id)
	if err != nil {
		return nil, err
	}

	user.Notes, err = r.ListNoteIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByLogin looks a user up by (already normalized) username. Note
// references are not loaded.
func (r *SQLRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, email, fullname FROM users
		 WHERE username = ?`

	return r.scanOne(ctx, query, userName)
}

func (r *SQLRepository) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.q(query), arg).
		Scan(&user.ID, &user.UserName, &user.PasswordHash, &user.Email, &user.FullName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Update overwrites the account row. Note references are managed through
// AddNote and RemoveNote.
func (r *SQLRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET username = ?, password_hash = ?, email = ?, fullname = ?
		 WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.q(query),
		user.UserName, user.PasswordHash, user.Email, user.FullName, user.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

// Delete removes the user row and the user's note references. Notes that
// still list the user are left alone.
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM user_notes WHERE user_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// AddNote adds noteID to the user's note set. Adding an id that is already
// present is a no-op.
func (r *SQLRepository) AddNote(ctx context.Context, userID, noteID string) error {
	query :=
		`INSERT INTO user_notes (user_id, note_id)
		 VALUES (?, ?)
		 ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, r.q(query), userID, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RemoveNote drops noteID from the user's note set. Removing an absent id
// is a no-op.
func (r *SQLRepository) RemoveNote(ctx context.Context, userID, noteID string) error {
	query := `DELETE FROM user_notes WHERE user_id = ? AND note_id = ?`

	if _, err := r.db.ExecContext(ctx, r.q(query), userID, noteID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListNoteIDs(ctx context.Context, userID string) ([]string, error) {
	query :=
		`SELECT note_id FROM user_notes
		 WHERE user_id = ?
		 ORDER BY note_id`

	rows, err := r.db.QueryContext(ctx, r.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

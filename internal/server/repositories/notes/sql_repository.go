package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

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

// Create inserts the note row followed by its authorized users, keeping
// their order.
func (r *SQLRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO notes (id, text, image_url)
		 VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.q(query), note.ID, note.Text, imageURL(note.Image))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.AppendUsers(ctx, note.ID, note.AuthorizedUsers...); err != nil {
		return nil, err
	}

	return note, nil
}

// GetByID returns the note with its authorized users in list order.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query :=
		`SELECT id, text, image_url FROM notes
		 WHERE id = ?`

	note := &models.Note{}
	var url sql.NullString

	err := r.db.QueryRowContext(ctx, r.q(query), id).Scan(&note.ID, &note.Text, &url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if url.Valid {
		note.Image = &models.Image{URL: url.String}
	}

	note.AuthorizedUsers, err = r.listUsers(ctx, id)
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (r *SQLRepository) listUsers(ctx context.Context, noteID string) ([]string, error) {
	query :=
		`SELECT user_id FROM note_users
		 WHERE note_id = ?
		 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, r.q(query), noteID)
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

// Update overwrites text and image. The authorized list is managed through
// AppendUsers and RemoveUser.
func (r *SQLRepository) Update(ctx context.Context, note *models.Note) error {
	query :=
		`UPDATE notes SET text = ?, image_url = ?
		 WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.q(query), note.Text, imageURL(note.Image), note.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

// Delete removes the note and its authorized list. User-side references
// are not touched.
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM notes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM note_users WHERE note_id = ?`), id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// AppendUsers adds userIDs to the end of the note's authorized list.
// Ids already on the list are appended again. Positions come from the
// store's sequence, so concurrent appends to one note never collide.
func (r *SQLRepository) AppendUsers(ctx context.Context, noteID string, userIDs ...string) error {
	query :=
		`INSERT INTO note_users (note_id, user_id)
		 VALUES (?, ?)`

	for _, userID := range userIDs {
		if _, err := r.db.ExecContext(ctx, r.q(query), noteID, userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// RemoveUser drops every occurrence of userID from the note's authorized
// list.
func (r *SQLRepository) RemoveUser(ctx context.Context, noteID, userID string) error {
	query := `DELETE FROM note_users WHERE note_id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, r.q(query), noteID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func imageURL(img *models.Image) any {
	if img == nil {
		return nil
	}
	return img.URL
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

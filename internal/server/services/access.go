package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// AccessGate decides whether a user may read or change a note.
type AccessGate struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAccessGate(db *sql.DB, m repomanager.RepositoryManager) *AccessGate {
	return &AccessGate{db: db, repomanager: m}
}

// Authorize returns the note when userID is on its authorized list.
// A malformed id and a missing note both give common.ErrNoteNotFound.
func (g *AccessGate) Authorize(ctx context.Context, userID, noteID string) (*models.Note, error) {
	return authorize(ctx, g.repomanager.Notes(g.db), userID, noteID)
}

func authorize(ctx context.Context, repo notes.Repository, userID, noteID string) (*models.Note, error) {
	if !common.IsObjectID(noteID) {
		return nil, common.ErrNoteNotFound
	}

	note, err := repo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoteNotFound
		}
		return nil, fmt.Errorf("error loading note: %w", err)
	}

	if !note.HasUser(userID) {
		return nil, common.ErrNoteAccessDenied
	}

	return note, nil
}

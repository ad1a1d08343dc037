package users

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository persists user documents: the account row and the set of note
// ids referenced by the user.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	AddNote(ctx context.Context, userID, noteID string) error
	RemoveNote(ctx context.Context, userID, noteID string) error
	ListNoteIDs(ctx context.Context, userID string) ([]string, error)
}

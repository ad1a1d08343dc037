package notes

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository persists note documents: the note row and its ordered list of
// authorized user ids.
type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	GetByID(ctx context.Context, id string) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error

	AppendUsers(ctx context.Context, noteID string, userIDs ...string) error
	RemoveUser(ctx context.Context, noteID, userID string) error
}

package client

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, username, password, email, fullName string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	SetToken(token string)
	ListNotes(ctx context.Context) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	CreateNote(ctx context.Context, text string, image *models.Image) (string, error)
	UpdateNote(ctx context.Context, id string, text *string, image *models.Image) error
	DeleteNote(ctx context.Context, id string) error
	ShareNote(ctx context.Context, id, userID string) error
	UnshareNote(ctx context.Context, id, userID string) error
}

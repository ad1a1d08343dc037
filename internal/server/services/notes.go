package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/images"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// Notifier receives an event after each successful note mutation, together
// with the users it concerns.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, ev models.NoteEvent)
}

// ImageSaver stores an uploaded image for a note and returns the reference
// to persist, or nil when the payload carries nothing to store.
type ImageSaver interface {
	Save(ctx context.Context, noteID string, payload *images.Payload) (*models.Image, error)
}

// NoteUpdate lists the fields a caller wants changed. Nil means untouched.
type NoteUpdate struct {
	Text  *string
	Image *images.Payload
}

// NoteService runs the note lifecycle. Every operation touches the note
// document and the user documents separately, each in its own transaction;
// a failure between the two writes is not rolled back.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gate        *AccessGate
	images      ImageSaver
	notifier    Notifier
	logger      logging.Logger
}

// NewNoteService wires the service. notifier may be nil.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, gate *AccessGate, img ImageSaver, notifier Notifier, logger logging.Logger) *NoteService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &NoteService{
		db:          db,
		repomanager: m,
		gate:        gate,
		images:      img,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create stores a new note owned by userID and adds it to the user's notes.
func (s *NoteService) Create(ctx context.Context, userID, text string, image *images.Payload) (*models.Note, error) {
	if text == "" {
		return nil, common.ErrTextRequired
	}

	id, err := common.NewObjectID()
	if err != nil {
		return nil, fmt.Errorf("error generating id: %w", err)
	}

	note := &models.Note{
		ID:              id,
		Text:            text,
		AuthorizedUsers: []string{userID},
	}

	note.Image, err = s.images.Save(ctx, id, image)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Notes(tx).Create(ctx, note)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	if err := s.addReference(ctx, userID, id); err != nil {
		return nil, err
	}

	s.notify(ctx, note.AuthorizedUsers, models.NoteEvent{Type: models.EventNoteCreated, NoteID: id, ActorID: userID})

	return note, nil
}

// Update replaces the provided fields of a note userID may access.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, upd NoteUpdate) (*models.Note, error) {
	note, err := s.gate.Authorize(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if upd.Text != nil {
		if *upd.Text == "" {
			return nil, common.ErrTextRequired
		}
		note.Text = *upd.Text
	}

	if upd.Image != nil {
		img, err := s.images.Save(ctx, noteID, upd.Image)
		if err != nil {
			return nil, err
		}
		if img != nil {
			note.Image = img
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Notes(tx).Update(ctx, note)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoteNotFound
		}
		return nil, fmt.Errorf("error updating note: %w", err)
	}

	s.notify(ctx, note.AuthorizedUsers, models.NoteEvent{Type: models.EventNoteUpdated, NoteID: noteID, ActorID: userID})

	return note, nil
}

// Delete removes a note userID may access. User-side references to it are
// left in place.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	note, err := s.gate.Authorize(ctx, userID, noteID)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Notes(tx).Delete(ctx, noteID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNoteNotFound
		}
		return fmt.Errorf("error deleting note: %w", err)
	}

	s.notify(ctx, note.AuthorizedUsers, models.NoteEvent{Type: models.EventNoteDeleted, NoteID: noteID, ActorID: userID})

	return nil
}

// Share appends targetUserID to the note's authorized list and adds the
// note to the target's notes. Sharing twice lists the target twice.
func (s *NoteService) Share(ctx context.Context, userID, noteID, targetUserID string) error {
	note, err := s.gate.Authorize(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if targetUserID == "" {
		return common.ErrUserIDRequired
	}
	if !common.IsObjectID(targetUserID) {
		return common.ErrUserNotFound
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Notes(tx).AppendUsers(ctx, noteID, targetUserID)
	})
	if err != nil {
		return fmt.Errorf("error sharing note: %w", err)
	}

	if err := s.addReference(ctx, targetUserID, noteID); err != nil {
		return err
	}

	recipients := append(note.AuthorizedUsers, targetUserID)
	s.notify(ctx, recipients, models.NoteEvent{Type: models.EventNoteShared, NoteID: noteID, ActorID: userID, TargetUserID: targetUserID})

	return nil
}

// Unshare removes every occurrence of targetUserID from the note's
// authorized list and drops the note from the target's notes. A user may
// unshare themselves, even if that leaves nobody with access.
func (s *NoteService) Unshare(ctx context.Context, userID, noteID, targetUserID string) error {
	note, err := s.gate.Authorize(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if targetUserID == "" {
		return common.ErrUserIDRequired
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Notes(tx).RemoveUser(ctx, noteID, targetUserID)
	})
	if err != nil {
		return fmt.Errorf("error unsharing note: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).RemoveNote(ctx, targetUserID, noteID)
	})
	if err != nil {
		return fmt.Errorf("error removing note reference: %w", err)
	}

	s.notify(ctx, note.AuthorizedUsers, models.NoteEvent{Type: models.EventNoteUnshared, NoteID: noteID, ActorID: userID, TargetUserID: targetUserID})

	return nil
}

// Get returns a note userID may access.
func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*models.Note, error) {
	return s.gate.Authorize(ctx, userID, noteID)
}

// List returns the notes referenced by the user's notes set. References to
// deleted notes, and to notes that no longer list the user, are skipped.
func (s *NoteService) List(ctx context.Context, userID string) ([]*models.Note, error) {
	ids, err := s.repomanager.Users(s.db).ListNoteIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}

	repo := s.repomanager.Notes(s.db)
	result := make([]*models.Note, 0, len(ids))

	for _, id := range ids {
		note, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, fmt.Errorf("error loading note: %w", err)
		}
		if !note.HasUser(userID) {
			continue
		}
		result = append(result, note)
	}

	return result, nil
}

func (s *NoteService) addReference(ctx context.Context, userID, noteID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).AddNote(ctx, userID, noteID)
	})
	if err != nil {
		s.logger.Error(ctx, "note stored without user reference", "note_id", noteID, "user_id", userID, "error", err)
		return fmt.Errorf("error adding note reference: %w", err)
	}
	return nil
}

func (s *NoteService) notify(ctx context.Context, recipients []string, ev models.NoteEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, unique(recipients), ev)
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package services

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/images"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/sqlitetest"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordedEvent struct {
	recipients []string
	event      models.NoteEvent
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, recipients []string, ev models.NoteEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{recipients: recipients, event: ev})
}

func (n *recordingNotifier) last() recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type imageSaverFunc func(ctx context.Context, noteID string, p *images.Payload) (*models.Image, error)

func (f imageSaverFunc) Save(ctx context.Context, noteID string, p *images.Payload) (*models.Image, error) {
	return f(ctx, noteID, p)
}

type env struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	users    *UserService
	gate     *AccessGate
	notes    *NoteService
	notifier *recordingNotifier
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		PasswordHashCost:      bcrypt.MinCost,
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := sqlitetest.Open(t)
	rm, err := repomanager.NewSQLRepositoryManager(dbx.SQLite)
	require.NoError(t, err)

	n := &recordingNotifier{}
	gate := NewAccessGate(db, rm)
	saver := images.NewProcessor(newMemImageStore())

	return &env{
		db:       db,
		rm:       rm,
		users:    NewUserService(db, rm, testConfig()),
		gate:     gate,
		notes:    NewNoteService(db, rm, gate, saver, n, logging.Nop{}),
		notifier: n,
	}
}

// addUser inserts a user directly, skipping password hashing.
func (e *env) addUser(t *testing.T, name string) string {
	t.Helper()
	id, err := common.NewObjectID()
	require.NoError(t, err)
	_, err = e.rm.Users(e.db).Create(context.Background(), &models.User{ID: id, UserName: name, PasswordHash: "x"})
	require.NoError(t, err)
	return id
}

type memImageStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemImageStore() *memImageStore {
	return &memImageStore{files: map[string][]byte{}}
}

func (m *memImageStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = b
	return nil
}

func (m *memImageStore) Get(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return nil, "", common.ErrorNotFound
}

// fakeManager hands out the given repositories regardless of the DBTX.
type fakeManager struct {
	users users.Repository
	notes notes.Repository
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Notes(dbx.DBTX) notes.Repository              { return m.notes }

// fakeUsersRepo fails every call with err. Methods not listed panic through
// the embedded nil interface.
type fakeUsersRepo struct {
	users.Repository
	err error
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

type fakeNotesRepo struct {
	notes.Repository
	err error
}

func (f *fakeNotesRepo) GetByID(context.Context, string) (*models.Note, error) {
	return nil, f.err
}

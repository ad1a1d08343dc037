package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// UserService registers and authenticates users and manages their
// accounts.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	passwordHashCost      int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		passwordHashCost:      cfg.PasswordHashCost,
	}
}

// NormalizeUserName is the stored form of a username. Lookups and the
// uniqueness check both go through it.
func NormalizeUserName(userName string) string {
	return strings.ToLower(userName)
}

// Register creates an account. The username is stored lowercased and must
// be unique; the password is kept only as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, userName, password, email, fullName string) (*models.User, error) {
	if userName == "" {
		return nil, common.ErrUsernameRequired
	}
	if password == "" {
		return nil, common.ErrPasswordRequired
	}

	userName = NormalizeUserName(userName)

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetUserByLogin(ctx, userName); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	id, err := common.NewObjectID()
	if err != nil {
		return nil, fmt.Errorf("error generating id: %w", err)
	}

	user := &models.User{
		ID:           id,
		UserName:     userName,
		PasswordHash: hash,
		Email:        email,
		FullName:     fullName,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and returns a signed token for the user.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	if userName == "" || password == "" {
		return "", common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, NormalizeUserName(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	return token, nil
}

// VerifyToken returns the user a token was issued to. A token for a user
// that no longer exists is rejected like a forged one.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	return user, nil
}

// Get returns the user document for id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if !common.IsObjectID(id) {
		return nil, common.ErrUserNotFound
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	return user, nil
}

// Update applies the provided fields. A provided but empty username or
// password is rejected; a new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id string, upd models.UserUpdate) error {
	if !common.IsObjectID(id) {
		return common.ErrUserNotFound
	}
	if upd.UserName != nil && *upd.UserName == "" {
		return common.ErrUsernameRequired
	}
	if upd.Password != nil && *upd.Password == "" {
		return common.ErrPasswordRequired
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error looking up user: %w", err)
		}

		if upd.UserName != nil {
			name := NormalizeUserName(*upd.UserName)
			if name != user.UserName {
				if _, err := repo.GetUserByLogin(ctx, name); err == nil {
					return common.ErrUsernameTaken
				} else if !errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("error looking up user: %w", err)
				}
				user.UserName = name
			}
		}

		if upd.Password != nil {
			hash, err := auth.HashPassword(*upd.Password, s.passwordHashCost)
			if err != nil {
				return fmt.Errorf("error hashing password: %w", err)
			}
			user.PasswordHash = hash
		}

		if upd.Email != nil {
			user.Email = *upd.Email
		}
		if upd.FullName != nil {
			user.FullName = *upd.FullName
		}

		if err := repo.Update(ctx, user); err != nil {
			if errors.Is(err, common.ErrUsernameTaken) {
				return err
			}
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error updating user: %w", err)
		}
		return nil
	})
}

// Delete removes the user and the user's note references. Notes shared
// with the user keep the id in their authorized list.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if !common.IsObjectID(id) {
		return common.ErrUserNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
}

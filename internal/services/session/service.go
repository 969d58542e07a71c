// Package session holds the logged-in identity that scopes remote records.
// There is no authentication protocol here; a login simply names the user.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
	"github.com/ternarybob/creatorlogic/internal/interfaces"
	"github.com/ternarybob/creatorlogic/internal/models"
)

// DevEmail logs in as a throwaway admin without any checks
const DevEmail = "dev@local"

// ErrInvalidEmail is returned by Login for malformed addresses
var ErrInvalidEmail = fmt.Errorf("%w: email", models.ErrInvalidInput)

// Service tracks the current user. The identity is cached in memory so
// CurrentUserID never touches storage.
type Service struct {
	storage  interfaces.SessionStorage
	validate *validator.Validate
	logger   arbor.ILogger
	now      func() time.Time

	mu       sync.RWMutex
	current  *models.User
	onLogout []func()
}

var _ interfaces.IdentityProvider = (*Service)(nil)

// NewService creates the session service and restores a persisted login
func NewService(ctx context.Context, storage interfaces.SessionStorage, logger arbor.ILogger) (*Service, error) {
	s := &Service{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}

	user, err := storage.GetSessionUser(ctx)
	switch {
	case err == nil:
		s.current = user
		logger.Info().Str("user_id", user.ID).Msg("Restored session")
	case errors.Is(err, models.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return s, nil
}

// OnLogout registers a hook run after every logout
func (s *Service) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Login makes email the current user and persists it locally
func (s *Service) Login(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)

	var user *models.User
	if email == DevEmail {
		user = &models.User{
			ID:        fmt.Sprintf("dev_%d", s.now().UnixMilli()),
			Name:      "Developer",
			Email:     email,
			Role:      models.RoleAdmin,
			AvatarURL: "https://ui-avatars.com/api/?name=Dev&background=334155&color=fff",
		}
	} else {
		if err := s.validate.Var(email, "required,email"); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		user = &models.User{
			ID:        "u_" + common.NewShortID(),
			Name:      strings.SplitN(email, "@", 2)[0],
			Email:     email,
			Role:      models.RoleUser,
			AvatarURL: "https://ui-avatars.com/api/?name=" + url.QueryEscape(email) + "&background=6366f1&color=fff",
		}
	}
	user.CreatedAt = s.now()

	if err := s.storage.SaveSessionUser(ctx, user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User logged in")
	cp := *user
	return &cp, nil
}

// CurrentUser returns a copy of the logged-in user or models.ErrNotFound
func (s *Service) CurrentUser() (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, models.ErrNotFound
	}
	cp := *s.current
	return &cp, nil
}

// CurrentUserID returns the logged-in user's id or ""
func (s *Service) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

// Logout clears the stored identity and runs the logout hooks
func (s *Service) Logout(ctx context.Context) error {
	if err := s.storage.ClearSessionUser(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.current
	s.current = nil
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if previous != nil {
		s.logger.Info().Str("user_id", previous.ID).Msg("User logged out")
	}
	return nil
}

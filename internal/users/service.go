// Package users handles accounts, sign-in and per-user settings.
package users

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/models"
)

// TokenIssuer mints a token pair. *auth.Issuer satisfies it.
type TokenIssuer interface {
	Issue(id auth.Identity) (auth.Tokens, error)
}

type Config struct {
	Store  Store
	Issuer TokenIssuer
	Clock  clock.Clock
}

func (c Config) Validate() error {
	if c.Store == nil {
		return errors.NotValidf("nil Store")
	}
	if c.Issuer == nil {
		return errors.NotValidf("nil Issuer")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

type Service struct {
	config Config
	log    logger.Logger
}

func NewService(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{config: config, log: logger.WithField("component", "users")}, nil
}

// Session is returned by signup and login.
type Session struct {
	auth.Tokens
	User *models.User `json:"user"`
}

type SignupParams struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// NormalizeEmail trims and lowercases an address after checking its shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.NotValidf("empty email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.NotValidf("email %q", email)
	}
	return email, nil
}

func (s *Service) Signup(ctx context.Context, params SignupParams) (*Session, error) {
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if len(params.Password) < auth.MinPasswordLength {
		return nil, errors.NotValidf("password shorter than %d characters", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, errors.Trace(err)
	}

	now := s.config.Clock.Now().UTC()
	user := &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		EmailReminders: true,
		WeeklySummary:  true,
		LastLoginAt:    &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.config.Store.Create(ctx, user); err != nil {
		if errors.Is(err, errors.AlreadyExists) {
			return nil, errors.AlreadyExistsf("user with email %s", email)
		}
		return nil, errors.Trace(err)
	}
	s.log.WithField("user_id", user.ID).Info("user signed up")
	return s.session(user)
}

// Login checks the credentials and stamps the login time. Unknown emails
// and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.config.Store.GetByEmail(ctx, email)
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Unauthorizedf("invalid credentials")
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errors.Unauthorizedf("invalid credentials")
	}

	now := s.config.Clock.Now().UTC()
	if err := s.config.Store.Update(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return nil, errors.Trace(err)
	}
	user.LastLoginAt = &now
	return s.session(user)
}

// Refresh issues a new pair for an identity whose account still exists.
func (s *Service) Refresh(ctx context.Context, id auth.Identity) (auth.Tokens, error) {
	user, err := s.config.Store.GetByID(ctx, id.UserID)
	if errors.Is(err, errors.NotFound) {
		return auth.Tokens{}, errors.Unauthorizedf("unknown user")
	}
	if err != nil {
		return auth.Tokens{}, errors.Trace(err)
	}
	tokens, err := s.config.Issuer.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	return tokens, errors.Trace(err)
}

func (s *Service) session(user *models.User) (*Session, error) {
	tokens, err := s.config.Issuer.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Session{Tokens: tokens, User: user}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.config.Store.GetByID(ctx, userID)
	return user, errors.Trace(err)
}

type ProfileParams struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Picture   *string `json:"picture"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, params ProfileParams) (*models.User, error) {
	updates := map[string]interface{}{}
	if params.FirstName != nil {
		updates["first_name"] = *params.FirstName
	}
	if params.LastName != nil {
		updates["last_name"] = *params.LastName
	}
	if params.Picture != nil {
		updates["picture"] = *params.Picture
	}
	return s.update(ctx, userID, updates)
}

type NotificationParams struct {
	EmailReminders *bool `json:"emailReminders"`
	WeeklySummary  *bool `json:"weeklySummary"`
}

func (s *Service) UpdateNotifications(ctx context.Context, userID string, params NotificationParams) (*models.User, error) {
	updates := map[string]interface{}{}
	if params.EmailReminders != nil {
		updates["email_reminders"] = *params.EmailReminders
	}
	if params.WeeklySummary != nil {
		updates["weekly_summary"] = *params.WeeklySummary
	}
	return s.update(ctx, userID, updates)
}

func (s *Service) update(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	if len(updates) == 0 {
		return s.Profile(ctx, userID)
	}
	updates["updated_at"] = s.config.Clock.Now().UTC()
	if err := s.config.Store.Update(ctx, userID, updates); err != nil {
		return nil, errors.Trace(err)
	}
	return s.Profile(ctx, userID)
}

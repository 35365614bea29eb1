package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/satriawb/postboard/internal/domain/entity"
	repo "github.com/satriawb/postboard/internal/domain/repository"
	"github.com/satriawb/postboard/pkg/helpers"
	"github.com/satriawb/postboard/pkg/mailer"
)

// AuthService owns registration and login: it is the only path that touches
// raw passwords, and it never returns or logs them.
type AuthService struct {
	Users       repo.UserRepository
	JWT         *helpers.JWTManager
	Logger      *logrus.Logger
	Pub         *helpers.RabbitPublisher
	AppName     string
	MailEnabled bool
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger, pub *helpers.RabbitPublisher, appName string, mailEnabled bool) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger, Pub: pub, AppName: appName, MailEnabled: mailEnabled}
}

// Register creates a user with a bcrypt-hashed password and issues a token.
// A duplicate email fails with ErrEmailTaken whether it is caught by the
// pre-check or by the unique index on insert.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entity.User, string, time.Time, error) {
	if existing, err := s.Users.GetByEmail(email); err == nil && existing != nil {
		return nil, "", time.Time{}, ErrEmailTaken
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	u := &entity.User{Name: name, Email: email, Password: hash}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			return nil, "", time.Time{}, ErrEmailTaken
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return nil, "", time.Time{}, err
	}

	// Welcome email is best-effort; a broker outage never fails registration.
	if s.Pub != nil && s.MailEnabled {
		job := mailer.WelcomeJob(u.Email, u.Name, s.AppName)
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email publish failed")
		}
	}

	return u, token, exp, nil
}

// Login validates email/password and issues a token. Unknown email and wrong
// password collapse into the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Users.GetByEmail(email)
	if err != nil || u == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

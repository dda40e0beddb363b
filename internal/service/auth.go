package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"webshop/internal/events"
	"webshop/internal/hash"
	"webshop/internal/logging"
	"webshop/internal/models"
	"webshop/internal/repo"
	"webshop/internal/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Producer  *events.Producer
	JWTSecret []byte
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || password == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid registration details", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			// Same message as any other validation failure, so the endpoint
			// does not confirm whether an email is registered.
			return nil, fmt.Errorf("%w: invalid registration details", ErrValidation)
		}
		l.Error("register_error", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	l.Info("user registered", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrAuth)
		}
		l.Error("login_error", "error", err)
		return "", nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrAuth)
	}

	token, err := tokens.NewAccessToken(user.ID.String(), user.Role, s.JWTSecret, time.Now())
	if err != nil {
		l.Error("login_error", "reason", "cannot sign token", "error", err)
		return "", nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID.String(), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	l.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", topic, "error", err)
	}
}

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitclub/internal/auth"
	"fitclub/internal/logger"
	"fitclub/internal/profile"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type ProfileSource interface {
	FindClient(ctx context.Context, userID int) (*profile.ClientProfile, bool, error)
	FindTrainerByUser(ctx context.Context, userID int) (*profile.TrainerProfile, bool, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	Me(ctx context.Context, userID int) (*MeResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
	CreateAdmin(ctx context.Context, name, email, password string) (*User, error)
}

type service struct {
	repo      Repository
	profiles  ProfileSource
	jwtSecret string
}

func NewService(repo Repository, profiles ProfileSource, jwtSecret string) Service {
	return &service{
		repo:      repo,
		profiles:  profiles,
		jwtSecret: jwtSecret,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) create(ctx context.Context, name, email, password, role string) (*User, error) {
	email = normalizeEmail(email)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, strings.TrimSpace(name), email, passwordHash, role)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	user, err := s.create(ctx, req.Name, req.Email, req.Password, auth.RoleMember)
	if err != nil {
		return nil, "", "", err
	}

	access, refresh, err := s.issue(user)
	if err != nil {
		return nil, "", "", err
	}

	logger.Info("user registered", "user_id", user.ID)
	return user, access, refresh, nil
}

// issue signs the token pair for user. Access and refresh tokens share the
// configured secret.
func (s *service) issue(user *User) (string, string, error) {
	return auth.GenerateTokens(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtSecret)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	// Unknown email and wrong password are indistinguishable to the caller.
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.issue(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) Me(ctx context.Context, userID int) (*MeResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &MeResponse{User: *user}

	client, found, err := s.profiles.FindClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", err)
	}
	if found {
		resp.ClientProfile = client
	}

	trainer, found, err := s.profiles.FindTrainerByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trainer profile: %w", err)
	}
	if found {
		resp.TrainerProfile = trainer
	}

	return resp, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	// Issue the token from the stored role so promotions take effect on refresh.
	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.Email, user.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}

// CreateAdmin provisions a staff account. Staff accounts carry no client
// profile.
func (s *service) CreateAdmin(ctx context.Context, name, email, password string) (*User, error) {
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	user, err := s.create(ctx, name, email, password, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	logger.Info("admin account created", "user_id", user.ID)
	return user, nil
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memorabilia-market/internal/auth"
	"memorabilia-market/internal/marketerrors"
	"memorabilia-market/internal/models"
	"memorabilia-market/internal/repository"
	"memorabilia-market/utils"

	"github.com/go-playground/validator/v10"
)

const minPasswordLength = 6

var validate = validator.New()

// Registration is the data needed to open an account
type Registration struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Session is the result of a successful login
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AccountService registers users and issues tokens
type AccountService struct {
	repo   repository.UserStore
	tokens *auth.TokenManager
	now    func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(repo repository.UserStore, tokens *auth.TokenManager) *AccountService {
	return &AccountService{
		repo:   repo,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a non-admin account with a hashed password
func (s *AccountService) Register(ctx context.Context, reg Registration) (models.User, error) {
	return s.create(ctx, reg, false)
}

func (s *AccountService) create(ctx context.Context, reg Registration, isAdmin bool) (models.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	if err := validateRegistration(reg); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to hash password: %w", err)
	}

	user := models.User{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  hash,
		FullName:  strings.TrimSpace(reg.FullName),
		IsAdmin:   isAdmin,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to create user %s: %w", reg.Username, err)
	}
	return user, nil
}

// Login checks credentials and returns a signed token
func (s *AccountService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, marketerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("service: %w", marketerrors.ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("service: failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return Session{}, fmt.Errorf("service: %w", marketerrors.ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("service: failed to issue token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

// GetUser returns a user by id
func (s *AccountService) GetUser(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, fmt.Errorf("service: %w - missing user", marketerrors.ErrUnauthorized)
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %d: %w", id, err)
	}
	return user, nil
}

// EnsureAdmin creates the configured admin account unless that username already exists.
// An empty password disables seeding.
func (s *AccountService) EnsureAdmin(ctx context.Context, reg Registration) (models.User, error) {
	if reg.Password == "" {
		utils.Warn("EnsureAdmin: no admin password configured, skipping", map[string]any{"username": reg.Username})
		return models.User{}, nil
	}

	existing, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(reg.Username))
	if err == nil {
		if !existing.IsAdmin {
			utils.Warn("EnsureAdmin: configured admin username belongs to a regular user", map[string]any{"username": existing.Username})
		}
		return existing, nil
	}
	if !errors.Is(err, marketerrors.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("service: failed to look up admin: %w", err)
	}

	user, err := s.create(ctx, reg, true)
	if err != nil {
		return models.User{}, err
	}
	utils.Info("EnsureAdmin: admin account created", map[string]any{"user_id": user.ID, "username": user.Username})
	return user, nil
}

func validateRegistration(reg Registration) error {
	switch {
	case reg.Username == "":
		return fmt.Errorf("service: %w - username is required", marketerrors.ErrInvalidUser)
	case len(reg.Password) < minPasswordLength:
		return fmt.Errorf("service: %w - password must be at least %d characters", marketerrors.ErrInvalidUser, minPasswordLength)
	}
	if err := validate.Var(reg.Email, "required,email"); err != nil {
		return fmt.Errorf("service: %w - invalid email", marketerrors.ErrInvalidUser)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/manira/api/internal/domain"
	"github.com/manira/api/internal/platform/auth"
	"github.com/manira/api/internal/repositories"
)

const userIDPrefix = "usr_"

var (
	// ErrUserInvalidInput signals the caller provided invalid account data.
	ErrUserInvalidInput = errors.New("user: invalid input")
	// ErrUserNotFound indicates the account could not be located.
	ErrUserNotFound = errors.New("user: not found")
	// ErrUserEmailTaken indicates another account already owns the email address.
	ErrUserEmailTaken = errors.New("user: email already registered")
	// ErrUserBadCredentials covers both unknown emails and wrong passwords so
	// login failures do not reveal which accounts exist.
	ErrUserBadCredentials = errors.New("user: invalid credentials")
)

// UserServiceDeps bundles collaborators required to construct the user service.
type UserServiceDeps struct {
	Users       repositories.UserRepository
	Tokens      *auth.TokenManager
	BcryptCost  int
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type userService struct {
	users      repositories.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	clock      func() time.Time
	newID      func() string
	logger     func(context.Context, string, map[string]any)
}

// NewUserService wires dependencies into a concrete UserService implementation.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service: user repository is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("user service: token manager is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return userIDPrefix + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &userService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		clock:      func() time.Time { return clock().UTC() },
		newID:      newID,
		logger:     logger,
	}, nil
}

func (s *userService) Register(ctx context.Context, cmd RegisterCommand) (AuthSession, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" {
		return AuthSession{}, fmt.Errorf("%w: email is required", ErrUserInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthSession{}, fmt.Errorf("%w: malformed email address", ErrUserInvalidInput)
	}
	fullName := strings.TrimSpace(cmd.FullName)
	if fullName == "" {
		return AuthSession{}, fmt.Errorf("%w: full name is required", ErrUserInvalidInput)
	}

	hash, err := auth.HashPassword(cmd.Password, s.bcryptCost)
	if err != nil {
		return AuthSession{}, fmt.Errorf("%w: %v", ErrUserInvalidInput, err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthSession{}, fmt.Errorf("%w: %s", ErrUserEmailTaken, email)
	} else {
		var repoErr repositories.RepositoryError
		if !(errors.As(err, &repoErr) && repoErr.IsNotFound()) {
			return AuthSession{}, err
		}
	}

	now := s.clock()
	user := domain.User{
		ID:           s.newID(),
		Email:        email,
		Phone:        strings.TrimSpace(cmd.Phone),
		FullName:     fullName,
		Address:      strings.TrimSpace(cmd.Address),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsConflict() {
			return AuthSession{}, fmt.Errorf("%w: %s", ErrUserEmailTaken, email)
		}
		return AuthSession{}, err
	}

	s.logger(ctx, "user.registered", map[string]any{"user_id": user.ID})
	return s.session(user)
}

func (s *userService) Login(ctx context.Context, cmd LoginCommand) (AuthSession, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || cmd.Password == "" {
		return AuthSession{}, fmt.Errorf("%w: email and password are required", ErrUserInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return AuthSession{}, ErrUserBadCredentials
		}
		return AuthSession{}, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, cmd.Password); err != nil {
		s.logger(ctx, "user.login_rejected", map[string]any{"user_id": user.ID})
		return AuthSession{}, ErrUserBadCredentials
	}

	return s.session(user)
}

func (s *userService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: user id is required", ErrUserInvalidInput)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return domain.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (domain.User, error) {
	user, err := s.GetProfile(ctx, cmd.UserID)
	if err != nil {
		return domain.User{}, err
	}

	if fullName := strings.TrimSpace(cmd.FullName); fullName != "" {
		user.FullName = fullName
	}
	if phone := strings.TrimSpace(cmd.Phone); phone != "" {
		user.Phone = phone
	}
	if address := strings.TrimSpace(cmd.Address); address != "" {
		user.Address = address
	}
	user.UpdatedAt = s.clock()

	if err := s.users.Update(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *userService) session(user domain.User) (AuthSession, error) {
	role := auth.RoleUser
	if user.Admin {
		role = auth.RoleAdmin
	}
	token, err := s.tokens.Issue(user.ID, user.Email, role)
	if err != nil {
		return AuthSession{}, err
	}
	user.PasswordHash = ""
	return AuthSession{User: user, Token: token}, nil
}

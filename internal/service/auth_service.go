package service

import (
	"context"
	"fmt"

	"go-remedyflow/internal/model"
	"go-remedyflow/internal/repository"
	"go-remedyflow/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	// Authenticate validates a bearer token against the user's current session.
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
	// EnsureAdmin creates the admin account, or resets its password, and
	// grants it every privilege.
	EnsureAdmin(ctx context.Context, email, password, fullName string) (*model.User, error)
}

type authService struct {
	repo   *repository.Repository
	tokens *jwt.Manager
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{repo: repo, tokens: tokens, log: log}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.repo.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// Single session: a new version invalidates older tokens
	version := uuid.NewString()
	if err := s.repo.Users.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	codes := user.GetPrivilegeCodes()
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, codes, version)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.log.Info("admin logged in", zap.String("user_id", user.ID.String()))
	return &LoginResponse{Token: token, User: user.ToResponse(), Privileges: codes}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.repo.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	// Privileges come from the database so revocations apply immediately
	claims.Privileges = user.GetPrivilegeCodes()
	return claims, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.repo.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password, fullName string) (*model.User, error) {
	if email == "" || len(password) < 8 {
		return nil, invalid("admin email and a password of at least 8 characters are required")
	}

	var admin *model.User
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Privileges.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed privileges: %w", err)
		}
		all, err := tx.Privileges.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("list privileges: %w", err)
		}

		user, err := tx.Users.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if user == nil {
			user = &model.User{Email: email, FullName: fullName, IsActive: true}
			user.CreatedBy = "system"
			if err := user.SetPassword(password); err != nil {
				return err
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
		} else {
			if err := user.SetPassword(password); err != nil {
				return err
			}
			user.IsActive = true
			user.TokenVersion = ""
			if fullName != "" {
				user.FullName = fullName
			}
			if err := tx.Users.Update(ctx, user); err != nil {
				return fmt.Errorf("update admin: %w", err)
			}
		}

		if err := tx.Users.ReplacePrivileges(ctx, user, all); err != nil {
			return fmt.Errorf("grant privileges: %w", err)
		}
		user.Privileges = all
		admin = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

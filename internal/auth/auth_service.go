package auth

import (
	"context"
	"strings"
	"time"

	autherrors "go-lcms/internal/auth/errors"
	"go-lcms/internal/auth/token"
	"go-lcms/internal/employee"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Directory is the employee lookup auth needs; employee.Service satisfies it.
type Directory interface {
	GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo      Repository
	directory Directory
	secret    []byte
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(repo Repository, directory Directory, secret []byte, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, directory: directory, secret: secret, now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		s.logger.Warn("login unknown email", zap.String("email", email))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("login wrong password", zap.String("user_id", user.ID.String()))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrInactiveUser
	}

	return s.issue(ctx, user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := token.Parse(s.secret, refreshToken, token.TypeRefresh)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}
	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrInactiveUser
	}

	return s.issue(ctx, user)
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp, err := s.profile(ctx, u)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates the login for an existing employee; email and role come
// from the directory entry.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	emp, err := s.directory.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return AuthResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	user := &User{
		ID:       uuid.MustParse(emp.ID),
		Email:    emp.Email,
		Password: string(hashed),
		Role:     emp.Role,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Warn("register user failed", zap.String("employee_id", emp.ID), zap.Error(err))
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	s.logger.Info("register user success", zap.String("employee_id", emp.ID))
	return toResponse(emp), nil
}

// issue signs a fresh token pair. The role is re-read from the directory so a
// role change takes effect on the next login or refresh.
func (s *service) issue(ctx context.Context, user *User) (string, string, AuthResponse, error) {
	resp, err := s.profile(ctx, user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	now := s.now()
	access, err := token.Issue(s.secret, resp.ID, resp.Email, resp.Role, token.TypeAccess, token.AccessTTL, now)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refresh, err := token.Issue(s.secret, resp.ID, resp.Email, resp.Role, token.TypeRefresh, token.RefreshTTL, now)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	return access, refresh, resp, nil
}

func (s *service) profile(ctx context.Context, user *User) (AuthResponse, error) {
	emp, err := s.directory.GetByID(ctx, user.ID.String())
	if err != nil {
		s.logger.Error("load profile failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return AuthResponse{}, autherrors.ErrUserNotFound
	}
	return toResponse(emp), nil
}

func toResponse(emp employee.EmployeeResponse) AuthResponse {
	return AuthResponse{
		ID:          emp.ID,
		Email:       emp.Email,
		Name:        emp.Name,
		Department:  emp.Department,
		Designation: emp.Designation,
		Role:        emp.Role,
	}
}

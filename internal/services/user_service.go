package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/auth"
	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// ErrInvalidCredentials indica email o contraseña incorrectos
var ErrInvalidCredentials = errors.New("credenciales inválidas")

// UserService maneja la autenticación y administración de usuarios
type UserService struct {
	userRepo *database.UserRepository
	tokens   *auth.TokenManager
	logger   *logrus.Logger
}

// NewUserService crea una nueva instancia del servicio
func NewUserService(userRepo *database.UserRepository, tokens *auth.TokenManager, logger *logrus.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login valida las credenciales y emite un token de acceso
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("email", user.Email).Info("Usuario autenticado")
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		Email:       user.Email,
	}, nil
}

// CreateUser registra un nuevo usuario administrativo
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"email": user.Email,
		"role":  user.Role,
	}).Info("Usuario creado")

	return &models.UserResponse{
		Email:  user.Email,
		Role:   user.Role,
		Active: user.Active,
	}, nil
}

// ListUsers retorna los usuarios activos
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, models.UserResponse{
			Email:  u.Email,
			Role:   u.Role,
			Active: u.Active,
		})
	}
	return responses, nil
}

// SeedAdmin garantiza el usuario administrador inicial
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("usuario administrador inicial sin email o contraseña")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.userRepo.SeedAdmin(ctx, email, hash)
}

package services

import (
	"errors"

	"gorm.io/gorm"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

type AuthService interface {
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error)
	RefreshToken(db *gorm.DB, token string) (*dto.AuthResponse, error)
	EnsureAdmin(db *gorm.DB, seed AdminSeed) error
}

// AdminSeed - учетные данные первого администратора
type AdminSeed struct {
	Email    string
	Username string
	Password string
}

type authService struct {
	userRepo repositories.UserRepository
	jwt      *auth.JWTManager
}

func NewAuthService(userRepo repositories.UserRepository, jwtManager *auth.JWTManager) AuthService {
	return &authService{
		userRepo: userRepo,
		jwt:      jwtManager,
	}
}

func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByLogin(db, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, handleRepoError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.issue(user)
}

func (s *authService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Nickname: req.Nickname,
		Bio:      req.Bio,
		Role:     models.UserRoleUser,
		IsActive: true,
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.userRepo.CreateUser(tx, user); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return s.issue(user)
}

func (s *authService) GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewUserResponse(user), nil
}

// RefreshToken принимает текущий токен (допускается недавно истекший)
// и выпускает новый для все еще активного пользователя.
func (s *authService) RefreshToken(db *gorm.DB, token string) (*dto.AuthResponse, error) {
	refreshed, err := s.jwt.RefreshToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}
	claims, err := s.jwt.ValidateToken(refreshed)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}

	user, err := s.userRepo.FindByID(db, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, handleRepoError(err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.issue(user)
}

// EnsureAdmin создает администратора из конфигурации, если в базе нет ни одного.
func (s *authService) EnsureAdmin(db *gorm.DB, seed AdminSeed) error {
	count, err := s.userRepo.CountAdmins(db)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if seed.Password == "" || seed.Email == "" {
		logger.Warn("No admin user exists and no admin credentials are configured")
		return nil
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	username := seed.Username
	if username == "" {
		username = "admin"
	}

	admin := &models.User{
		Username: username,
		Email:    seed.Email,
		Password: hash,
		Nickname: username,
		Role:     models.UserRoleAdmin,
		IsActive: true,
	}
	if err := s.userRepo.CreateUser(db, admin); err != nil {
		return err
	}

	logger.Info("Admin user created", "user_id", admin.ID, "username", admin.Username)
	return nil
}

func (s *authService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TokenDuration().Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

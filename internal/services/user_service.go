package services

import (
	"gorm.io/gorm"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

// UserService - администрирование пользователей
type UserService interface {
	ListUsers(db *gorm.DB, query *dto.UserListQuery) (*dto.ListResponse[*dto.UserResponse], error)
	GetStats(db *gorm.DB) (*repositories.UserStats, error)
	GetUser(db *gorm.DB, id string) (*dto.UserResponse, error)
	CreateUser(db *gorm.DB, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(db *gorm.DB, actorID, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ToggleActive(db *gorm.DB, actorID, id string) (*dto.UserResponse, error)
	DeleteUser(db *gorm.DB, actorID, id string) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(db *gorm.DB, query *dto.UserListQuery) (*dto.ListResponse[*dto.UserResponse], error) {
	params := query.Params()
	users, total, err := s.userRepo.FindUsers(db, repositories.UserFilter{
		ListParams: params,
		Role:       models.UserRole(query.Role),
		IsActive:   query.IsActive,
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return dto.NewListResponse(items, total, params), nil
}

func (s *userService) GetStats(db *gorm.DB) (*repositories.UserStats, error) {
	stats, err := s.userRepo.GetStats(db)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return stats, nil
}

func (s *userService) GetUser(db *gorm.DB, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) CreateUser(db *gorm.DB, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleUser
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Nickname: req.Nickname,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Role:     role,
		IsActive: true,
	}
	if err := s.userRepo.CreateUser(db, user); err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateUser(db *gorm.DB, actorID, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}

	if req.Username != nil || req.Email != nil {
		username, email := user.Username, user.Email
		if req.Username != nil {
			username = *req.Username
		}
		if req.Email != nil {
			email = *req.Email
		}
		exists, err := s.userRepo.ExistsByUsernameOrEmail(tx, username, email, user.ID)
		if err != nil {
			return nil, handleRepoError(err)
		}
		if exists {
			return nil, apperrors.ErrAlreadyExists(repositories.ErrUserAlreadyExists)
		}
		user.Username, user.Email = username, email
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.Password = hash
	}
	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	demoting := req.Role != nil && models.UserRole(*req.Role) != user.Role && user.IsAdmin()
	deactivating := req.IsActive != nil && !*req.IsActive && user.IsActive
	if id == actorID && (demoting || deactivating) {
		return nil, apperrors.ErrCannotModifySelf
	}
	if user.IsAdmin() && (demoting || deactivating) {
		if err := s.ensureNotLastAdmin(tx); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.UpdateUser(tx, user); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) ToggleActive(db *gorm.DB, actorID, id string) (*dto.UserResponse, error) {
	if id == actorID {
		return nil, apperrors.ErrCannotModifySelf
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, id)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if user.IsAdmin() && user.IsActive {
		if err := s.ensureNotLastAdmin(tx); err != nil {
			return nil, err
		}
	}

	user.IsActive = !user.IsActive
	if err := s.userRepo.UpdateUser(tx, user); err != nil {
		return nil, handleRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) DeleteUser(db *gorm.DB, actorID, id string) error {
	if id == actorID {
		return apperrors.ErrCannotModifySelf
	}

	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, id)
	if err != nil {
		return handleRepoError(err)
	}
	if user.IsAdmin() {
		if err := s.ensureNotLastAdmin(tx); err != nil {
			return err
		}
	}
	if err := s.userRepo.DeleteUser(tx, id); err != nil {
		return handleRepoError(err)
	}
	return commitTx(tx)
}

func (s *userService) ensureNotLastAdmin(db *gorm.DB) error {
	count, err := s.userRepo.CountAdmins(db)
	if err != nil {
		return handleRepoError(err)
	}
	if count <= 1 {
		return apperrors.ErrInvalidOperation("user", "The last administrator cannot be removed or disabled")
	}
	return nil
}

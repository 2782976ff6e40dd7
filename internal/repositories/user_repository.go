package repositories

import (
	"errors"

	"gorm.io/gorm"

	"miaoyou_backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this username or email already exists")
)

type UserFilter struct {
	ListParams
	Role     models.UserRole
	IsActive *bool
}

type UserStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Admins   int64 `json:"admins"`
}

type UserRepository interface {
	CreateUser(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByLogin(db *gorm.DB, login string) (*models.User, error)
	ExistsByUsernameOrEmail(db *gorm.DB, username, email, excludeID string) (bool, error)
	UpdateUser(db *gorm.DB, user *models.User) error
	DeleteUser(db *gorm.DB, id string) error
	FindUsers(db *gorm.DB, filter UserFilter) ([]models.User, int64, error)
	CountAdmins(db *gorm.DB) (int64, error)
	GetStats(db *gorm.DB) (*UserStats, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) CreateUser(db *gorm.DB, user *models.User) error {
	exists, err := r.ExistsByUsernameOrEmail(db, user.Username, user.Email, "")
	if err != nil {
		return err
	}
	if exists {
		return ErrUserAlreadyExists
	}
	return db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByLogin ищет по username или email.
func (r *UserRepositoryImpl) FindByLogin(db *gorm.DB, login string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByUsernameOrEmail(db *gorm.DB, username, email, excludeID string) (bool, error) {
	var count int64
	q := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepositoryImpl) UpdateUser(db *gorm.DB, user *models.User) error {
	result := db.Model(user).Select("*").Omit("created_at").Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) DeleteUser(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindUsers(db *gorm.DB, filter UserFilter) ([]models.User, int64, error) {
	p := filter.Normalize()

	q := db.Model(&models.User{})
	q = searchLike(q, p.Search, "username", "email", "nickname")
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	sortable := map[string]string{"created_at": "created_at", "username": "username", "email": "email"}
	if err := paginate(q, p, sortable, "created_at").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) CountAdmins(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) GetStats(db *gorm.DB) (*UserStats, error) {
	stats := &UserStats{}
	if err := db.Model(&models.User{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	admins, err := r.CountAdmins(db)
	if err != nil {
		return nil, err
	}
	stats.Admins = admins
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}

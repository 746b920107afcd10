package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"kumatter/internal/cache"
	"kumatter/internal/models"

	"gorm.io/gorm"
)

// SearchLimit caps user search results.
const SearchLimit = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByID is served through the user cache; the returned user has no password hash.
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByLoginIDOrEmail(ctx context.Context, identifier string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, userName, bio string, now time.Time) error
	SearchByLoginIDOrName(ctx context.Context, query string) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

// GetByLoginIDOrEmail returns (nil, nil) when no account matches.
func (r *userRepository) GetByLoginIDOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	ident := strings.ToLower(strings.TrimSpace(identifier))
	if err := r.db.WithContext(ctx).
		Where("login_id = ? OR LOWER(email) = ?", ident, ident).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	return r.exists(ctx, "login_id = ?", loginID)
}

func (r *userRepository) exists(ctx context.Context, cond string, arg interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateProfile writes only the editable columns so a cached copy (which has
// no password hash) can never overwrite credentials.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, userName, bio string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_name":  userName,
			"bio":        bio,
			"updated_at": now,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// SearchByLoginIDOrName does a case-insensitive substring match on login id and
// display name, ordered by login id.
func (r *userRepository) SearchByLoginIDOrName(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	if err := readDB(r.db).WithContext(ctx).
		Where(`LOWER(login_id) LIKE ? ESCAPE '\' OR LOWER(user_name) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("login_id ASC").
		Limit(SearchLimit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/pkg/metrics"
)

// GormUserRepository stores users in the users table.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_email", time.Now())

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translate(err)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_id", time.Now())

	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, translate(err)
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveDBQuery("users.create", time.Now())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ? OR id = ?", user.Email, user.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
		}
		return translate(tx.Create(user).Error)
	})
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	defer metrics.ObserveDBQuery("users.update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":       user.Name,
		"email":      user.Email,
		"phone":      user.Phone,
		"address":    user.Address,
		"password":   user.Password,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps GORM errors onto the repository sentinels. It relies on
// gorm.Config.TranslateError for duplicate keys.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

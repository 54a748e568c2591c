package seeders

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
)

func init() {
	Register("users", SeedUsers)
	Register("orders", SeedOrders)
}

// SeedUsers inserts the demo account unless it already exists.
func SeedUsers(db *gorm.DB) error {
	var existing models.User
	err := db.Where("id = ?", repositories.DemoUserID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	u, err := repositories.DemoUser()
	if err != nil {
		return err
	}
	return db.Create(&u).Error
}

// SeedOrders inserts the demo order history, skipping orders already present.
func SeedOrders(db *gorm.DB) error {
	for _, o := range repositories.DemoOrders() {
		var n int64
		if err := db.Model(&models.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := db.Create(&o).Error; err != nil {
			return err
		}
	}
	return nil
}

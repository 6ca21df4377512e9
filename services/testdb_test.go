package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/coolerogenous/WoWoKitchen/config"
	"github.com/coolerogenous/WoWoKitchen/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// setupTestDB points config.DB at a fresh in-memory sqlite database for
// the duration of the test. cache=shared keeps all pooled connections
// on the same database.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "x", Nickname: "host"}
	if err := config.DB.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestIngredient(t *testing.T, userID uint, name string, price float64, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{UserID: userID, Name: name, UnitPrice: price, Unit: unit}
	if err := config.DB.Create(ing).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return ing
}

func createTestDish(t *testing.T, userID uint, name string, items ...DishItemRequest) *models.Dish {
	t.Helper()
	dish, err := NewDishService().Create(userID, DishRequest{Name: name, Items: items})
	if err != nil {
		t.Fatalf("create dish %q: %v", name, err)
	}
	return dish
}

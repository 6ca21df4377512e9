package config

import (
	"fmt"
	"os"

	"github.com/coolerogenous/WoWoKitchen/models"
	"github.com/coolerogenous/WoWoKitchen/utils"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Warnw("no .env file found, relying on environment", "err", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		utils.Logger.Fatalw("failed to connect to database", "err", err)
	}

	if err := AutoMigrate(DB); err != nil {
		utils.Logger.Fatalw("auto-migrate failed", "err", err)
	}
}

// AutoMigrate is shared between InitDB and the test harness.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Dish{},
		&models.DishIngredient{},
		&models.Menu{},
		&models.MenuDish{},
		&models.Party{},
		&models.PartyDish{},
		&models.PartyGuest{},
		&models.GuestSelection{},
		&models.ShareToken{},
	)
}

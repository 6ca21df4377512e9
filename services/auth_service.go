// services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolerogenous/WoWoKitchen/config"
	"github.com/coolerogenous/WoWoKitchen/models"
	"github.com/coolerogenous/WoWoKitchen/utils"

	"gorm.io/gorm"
)

func RegisterUser(email, password, nickname string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", utils.ErrValidation)
	}

	var count int64
	if err := config.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("email already registered: %w", utils.ErrValidation)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Nickname: strings.TrimSpace(nickname),
	}
	if err := config.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func AuthenticateUser(email, password string) (string, error) {
	var user models.User
	err := config.DB.Where("email = ?", strings.TrimSpace(strings.ToLower(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("invalid email or password: %w", utils.ErrAuth)
		}
		return "", err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", fmt.Errorf("invalid email or password: %w", utils.ErrAuth)
	}
	return utils.GenerateJWT(user.ID, user.Email)
}

func FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func UpdateNickname(id uint, nickname string) (*models.User, error) {
	user, err := FindUserByID(id)
	if err != nil {
		return nil, err
	}
	user.Nickname = strings.TrimSpace(nickname)
	if err := config.DB.Model(user).UpdateColumn("nickname", user.Nickname).Error; err != nil {
		return nil, err
	}
	return user, nil
}

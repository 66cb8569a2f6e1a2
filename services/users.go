package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"vkconnect/db"
	"vkconnect/models"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

// Register creates a user, hashing the plaintext password in user.Password.
func (us *UserService) Register(ctx context.Context, user *models.User) (int64, error) {
	if user.Nickname == "" || user.Password == "" {
		return 0, errors.New("nickname and password are required")
	}

	var alreadyExists int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("nickname = ?", user.Nickname).
		Count(&alreadyExists).Error
	if err != nil {
		return 0, fmt.Errorf("failed to check nickname: %w", err)
	}
	if alreadyExists > 0 {
		return 0, ErrUserExists
	}

	hashed, err := hashPassword(user.Password)
	if err != nil {
		return 0, err
	}
	user.Password = hashed

	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return user.ID, nil
}

// Login verifies credentials and rotates the user's token.
func (us *UserService) Login(ctx context.Context, nickname, password string) (string, *models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).Where("nickname = ?", nickname).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !verifyPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	// Drop old tokens before issuing a new one
	err = db.GetWriteDB(ctx).Where("user_id = ?", user.ID).Delete(&models.UserTokens{}).Error
	if err != nil {
		return "", nil, fmt.Errorf("failed to clear tokens: %w", err)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserTokens{
		UserID: user.ID,
		Token:  token,
	}).Error
	if err != nil {
		return "", nil, fmt.Errorf("failed to store token: %w", err)
	}
	return token, &user, nil
}

func (us *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return db.GetWriteDB(ctx).Where("token = ?", token).Delete(&models.UserTokens{}).Error
}

// UserByToken resolves a bearer token to its user; used by the auth
// middleware.
func (us *UserService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var row models.UserTokens
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	var user models.User
	err = db.GetReadOnlyDB(ctx).First(&user, row.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(hash) == parts[1]
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carrental-backend/models"
)

var ErrInvalidCredentials = errors.New("invalid_credentials")

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// HashPassword always hashes s, even when s looks like a bcrypt hash.
// Only the seeded admin (ADMIN_PASSWORD_HASH) is stored as given.
func HashPassword(s string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminService manages back-office operators.
type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// Authenticate checks username and password against the stored bcrypt hash.
// Unknown users and wrong passwords yield the same error.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Admin{}, ErrInvalidCredentials
	}

	var admin models.Admin
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Admin{}, ErrInvalidCredentials
		}
		return models.Admin{}, fmt.Errorf("find admin: %w", err)
	}
	if !isBcryptHash(admin.Password) ||
		bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return models.Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

func (s *AdminService) Create(ctx context.Context, fullName, username, password string) (models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Admin{}, fmt.Errorf("%w: username and password required", ErrInvalidAdmin)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return models.Admin{}, fmt.Errorf("hash password: %w", err)
	}
	admin := models.Admin{FullName: strings.TrimSpace(fullName), Username: username, Password: hash}
	if err := s.DB.WithContext(ctx).Create(&admin).Error; err != nil {
		if isDuplicateKey(err) {
			return models.Admin{}, fmt.Errorf("%w: username %q", ErrDuplicate, username)
		}
		return models.Admin{}, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

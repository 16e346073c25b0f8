package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

// AuthorizedAdmin is proof that the session user was checked to be an admin.
// Only AdminService.Authorize creates one.
type AuthorizedAdmin struct {
	userID uuid.UUID
	email  string
}

func (a AuthorizedAdmin) UserID() uuid.UUID { return a.userID }
func (a AuthorizedAdmin) Email() string     { return a.email }

// AdminStats are catalog-wide counts.
type AdminStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalIngredients    int64 `json:"totalIngredients"`
	VerifiedIngredients int64 `json:"verifiedIngredients"`
	PendingIngredients  int64 `json:"pendingIngredients"`
}

// AdminService manages users and reports on the catalog.
type AdminService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAdminService(db *gorm.DB, logger *zap.Logger) *AdminService {
	return &AdminService{db: db, logger: logger.Named("admin")}
}

// Authorize checks the user's catalog record and returns the admin capability.
// A missing or non-admin user is ErrForbidden.
func (s *AdminService) Authorize(ctx context.Context, userID uuid.UUID) (AuthorizedAdmin, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "email", "is_admin").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthorizedAdmin{}, ErrForbidden
	}
	if err != nil {
		return AuthorizedAdmin{}, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsAdmin {
		return AuthorizedAdmin{}, ErrForbidden
	}
	return AuthorizedAdmin{userID: user.ID, email: user.Email}, nil
}

// ListUsers lists users, newest first, optionally filtered by name or email.
func (s *AdminService) ListUsers(ctx context.Context, admin AuthorizedAdmin, search string) ([]models.User, error) {
	tx := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); utf8.RuneCountInString(search) >= minSearchRunes {
		p := likePattern(search)
		tx = tx.Where(`(LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\')`, p, p, p)
	}

	users := []models.User{}
	if err := tx.Order("created_at DESC").Limit(adminListLimit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetAdmin grants or revokes the admin flag. Admins cannot change their own.
func (s *AdminService) SetAdmin(ctx context.Context, admin AuthorizedAdmin, userID uuid.UUID, isAdmin bool) (*models.User, error) {
	if userID == admin.UserID() {
		return nil, ErrSelfAdminChange
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_admin", isAdmin)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update admin status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	s.logger.Info("Admin status changed",
		zap.String("user_id", userID.String()),
		zap.Bool("is_admin", isAdmin),
		zap.String("by", admin.UserID().String()))

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return &user, nil
}

// Stats counts users and catalog entries.
func (s *AdminService) Stats(ctx context.Context, admin AuthorizedAdmin) (*AdminStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminStats{}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&models.Ingredient{}).Count(&stats.TotalIngredients).Error; err != nil {
		return nil, fmt.Errorf("failed to count ingredients: %w", err)
	}
	if err := db.Model(&models.Ingredient{}).Where("verified = ?", true).Count(&stats.VerifiedIngredients).Error; err != nil {
		return nil, fmt.Errorf("failed to count verified ingredients: %w", err)
	}
	stats.PendingIngredients = stats.TotalIngredients - stats.VerifiedIngredients
	return stats, nil
}

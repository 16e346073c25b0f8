package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/internal/models"
)

const (
	defaultTemplateLimit = 20
	maxTemplateLimit     = 100
	matchCandidateLimit  = 50
)

// TemplateMatcher asks the model which template a description refers to.
type TemplateMatcher interface {
	MatchDishTemplate(ctx context.Context, input string, candidates []TemplateCandidate) (*TemplateMatch, error)
}

// TemplateMatchResult is a matched public template.
type TemplateMatchResult struct {
	Template   models.DishTemplate `json:"template"`
	Confidence float64             `json:"confidence"`
}

// TemplateService serves precomposed dishes.
type TemplateService struct {
	db      *gorm.DB
	matcher TemplateMatcher
	logger  *zap.Logger
}

func NewTemplateService(db *gorm.DB, matcher TemplateMatcher, logger *zap.Logger) *TemplateService {
	return &TemplateService{db: db, matcher: matcher, logger: logger.Named("templates")}
}

// ListPublic returns public templates by popularity.
func (s *TemplateService) ListPublic(ctx context.Context, category string, limit int) ([]models.DishTemplate, error) {
	if limit <= 0 {
		limit = defaultTemplateLimit
	}
	if limit > maxTemplateLimit {
		limit = maxTemplateLimit
	}

	tx := s.db.WithContext(ctx).Where("is_public = ?", true)
	if category = strings.TrimSpace(category); category != "" {
		tx = tx.Where("category = ?", category)
	}

	templates := []models.DishTemplate{}
	if err := tx.Order("popularity_score DESC").Limit(limit).Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Match finds the public template the text describes, or nil.
func (s *TemplateService) Match(ctx context.Context, text string) (*TemplateMatchResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidInput("text is required")
	}

	templates, err := s.ListPublic(ctx, "", matchCandidateLimit)
	if err != nil {
		return nil, err
	}
	candidates := make([]TemplateCandidate, len(templates))
	for i, t := range templates {
		candidates[i] = TemplateCandidate{ID: t.ID, NameMM: t.NameMyanmar, NameEN: t.NameEnglish, Category: t.Category}
	}

	m, err := s.matcher.MatchDishTemplate(ctx, text, candidates)
	if err != nil {
		var extErr *ExtractionError
		if errors.As(err, &extErr) {
			s.logger.Warn("Template match unavailable", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	for _, t := range templates {
		if t.ID == m.TemplateID {
			return &TemplateMatchResult{Template: t, Confidence: m.Confidence}, nil
		}
	}
	return nil, nil
}

// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	// BrowseLimit caps the directory listing returned for a blank query.
	BrowseLimit = 50
	// SearchLimit caps the results returned for a non-blank query.
	SearchLimit = 10
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string) ([]models.User, error)
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
		if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
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
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("email already registered", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueViolation checks if a DB error is a unique constraint violation.
// TranslateError maps most of these to gorm.ErrDuplicatedKey; the pgconn
// check covers errors surfaced from raw Exec paths.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Search returns directory results. A blank query is a browse of the whole
// directory capped at BrowseLimit in id order; a non-blank query is a
// case-insensitive substring match against name or email capped at
// SearchLimit.
func (r *userRepository) Search(ctx context.Context, query string) ([]models.User, error) {
	defer observability.TrackQuery("search", "users")()

	var users []models.User

	trimmed := strings.TrimSpace(query)
	db := r.db.WithContext(ctx)

	if trimmed == "" {
		if err := db.Order("id ASC").Limit(BrowseLimit).Find(&users).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		return users, nil
	}

	// LOWER(...) LIKE instead of ILIKE so the same query runs on the
	// sqlite databases used in tests.
	like := "%" + strings.ToLower(trimmed) + "%"
	if err := db.
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like).
		Order("id ASC").
		Limit(SearchLimit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

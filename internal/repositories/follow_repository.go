package repositories

import (
	"github.com/anonto42/microblog/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(userID, authorID uint) error
	IsFollowing(userID, authorID uint) (bool, error)
	GetFollowedAuthorIDs(userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

// DeleteFollow removes the (user, author) pair. Deleting a pair that does
// not exist is not an error.
func (r *PostgresFollowRepository) DeleteFollow(userID, authorID uint) error {
	return r.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) IsFollowing(userID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowedAuthorIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("user_id = ?", userID).Pluck("author_id", &ids).Error
	return ids, err
}

package repositories

import (
	"github.com/anonto42/microblog/backend/internal/models"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	CreateGroup(group *models.Group) error
	GetGroupByID(id uint) (*models.Group, error)
	GetGroupBySlug(slug string) (*models.Group, error)
	GetGroups() ([]models.Group, error)
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// CreateGroup creates a new group in PostgreSQL
func (r *PostgresGroupRepository) CreateGroup(group *models.Group) error {
	return r.db.Create(group).Error
}

// GetGroupByID retrieves a group by ID from PostgreSQL
func (r *PostgresGroupRepository) GetGroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroupBySlug retrieves a group by its URL slug from PostgreSQL
func (r *PostgresGroupRepository) GetGroupBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroups retrieves all groups from PostgreSQL
func (r *PostgresGroupRepository) GetGroups() ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

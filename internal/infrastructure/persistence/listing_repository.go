package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/domain/shared"
	"github.com/estate/listings/internal/infrastructure/persistence/models"
)

// GormListingRepository implements listing.Repository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindAll returns every listing in insertion order
func (r *GormListingRepository) FindAll(ctx context.Context) ([]listing.Listing, error) {
	var rows []models.ListingModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	out := make([]listing.Listing, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id string) (*listing.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	var row models.ListingModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("query card %s: %w", id, err)
	}
	l := row.ToDomain()
	return &l, nil
}

// Create inserts l and assigns its ID
func (r *GormListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	row := models.ListingModelFromDomain(l)
	row.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	l.ID = row.ID
	return nil
}

// UpdateComment overwrites the comment column of one listing
func (r *GormListingRepository) UpdateComment(ctx context.Context, id, comment string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.ErrNotFound
	}
	result := r.db.WithContext(ctx).
		Model(&models.ListingModel{}).
		Where("id = ?", id).
		Update("comment", comment)
	if result.Error != nil {
		return fmt.Errorf("update card %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a listing by ID
func (r *GormListingRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.ErrNotFound
	}
	result := r.db.WithContext(ctx).Delete(&models.ListingModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete card %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ping checks the database connection
func (r *GormListingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ listing.Repository = (*GormListingRepository)(nil)

package repositories

import (
	"errors"
	"fmt"
	"strings"

	"sweetshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSweetRepository is a GORM implementation of SweetRepository.
type GORMSweetRepository struct {
	db *gorm.DB
}

// NewGORMSweetRepository creates a new instance of GORMSweetRepository.
func NewGORMSweetRepository(db *gorm.DB) *GORMSweetRepository {
	return &GORMSweetRepository{
		db: db,
	}
}

// GetAll retrieves all sweets, newest first.
func (r *GORMSweetRepository) GetAll() ([]models.Sweet, error) {
	var sweets []models.Sweet
	if err := r.db.Order("created_at DESC").Find(&sweets).Error; err != nil {
		return nil, fmt.Errorf("failed to get all sweets: %w", err)
	}
	return sweets, nil
}

// Search retrieves the sweets matching the given filters, newest first.
// Filters left at their zero value are not applied.
func (r *GORMSweetRepository) Search(filter SweetFilter) ([]models.Sweet, error) {
	query := r.db.Model(&models.Sweet{})
	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var sweets []models.Sweet
	if err := query.Order("created_at DESC").Find(&sweets).Error; err != nil {
		return nil, fmt.Errorf("failed to search sweets: %w", err)
	}
	return sweets, nil
}

// GetByID retrieves a single sweet by its ID.
func (r *GORMSweetRepository) GetByID(id string) (*models.Sweet, error) {
	var sweet models.Sweet
	if err := r.db.First(&sweet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sweet by ID %s: %w", id, err)
	}
	return &sweet, nil
}

// Create creates a new sweet, generating an ID if one is not provided.
func (r *GORMSweetRepository) Create(sweet *models.Sweet) error {
	if sweet.ID == "" {
		sweet.ID = uuid.New().String()
	}
	if err := r.db.Create(sweet).Error; err != nil {
		return fmt.Errorf("failed to create sweet: %w", err)
	}
	return nil
}

// Update saves an existing sweet.
func (r *GORMSweetRepository) Update(sweet *models.Sweet) error {
	res := r.db.Save(sweet) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update sweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound when no rows match,
		// so we check RowsAffected.
		return ErrNotFound
	}
	return nil
}

// AdjustQuantity applies a signed delta to the stored quantity in one
// guarded UPDATE, so concurrent adjustments on the same sweet cannot lose
// updates or drive the quantity negative.
func (r *GORMSweetRepository) AdjustQuantity(id string, delta int) (*models.Sweet, error) {
	query := r.db.Model(&models.Sweet{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}
	res := query.Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to adjust quantity for sweet %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the sweet does not exist or the quantity guard rejected
		// the decrement; a read disambiguates.
		if _, err := r.GetByID(id); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientStock
	}
	return r.GetByID(id)
}

// Delete deletes a sweet by its ID.
func (r *GORMSweetRepository) Delete(id string) error {
	res := r.db.Delete(&models.Sweet{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete sweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

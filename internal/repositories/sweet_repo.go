package repositories

import (
	"errors"

	"sweetshop/internal/models"
)

// Sentinel errors returned by repositories so callers can dispatch with
// errors.Is instead of matching message text.
var (
	// ErrNotFound is returned when no record exists for the given ID.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned by AdjustQuantity when a decrement
	// would drive the stored quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SweetFilter holds the optional, composable search filters.
// Zero values mean "no constraint" for Name and Category; the price
// bounds are pointers so that zero is a usable bound.
type SweetFilter struct {
	Name     string   // case-insensitive substring match
	Category string   // exact match
	MinPrice *float64 // inclusive lower bound
	MaxPrice *float64 // inclusive upper bound
}

// SweetRepository defines the interface for sweet data access.
// Results of GetAll and Search are ordered newest-created first.
type SweetRepository interface {
	GetAll() ([]models.Sweet, error)
	Search(filter SweetFilter) ([]models.Sweet, error)
	GetByID(id string) (*models.Sweet, error)
	Create(sweet *models.Sweet) error
	Update(sweet *models.Sweet) error
	// AdjustQuantity applies a signed delta to the stored quantity as a
	// single atomic update. A negative delta that would take the quantity
	// below zero fails with ErrInsufficientStock and leaves the record
	// unchanged. Returns the updated record.
	AdjustQuantity(id string, delta int) (*models.Sweet, error)
	Delete(id string) error
}

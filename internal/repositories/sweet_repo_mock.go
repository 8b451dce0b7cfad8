package repositories

import (
	"strings"
	"sync"
	"time"

	"sweetshop/internal/models"

	"github.com/google/uuid"
)

// MockSweetRepository is an in-memory implementation of SweetRepository.
// The mutex serializes quantity adjustments, standing in for the guarded
// UPDATE the GORM repository issues.
type MockSweetRepository struct {
	sweets map[string]models.Sweet
	order  []string // creation order of IDs; listings return newest first
	mu     sync.RWMutex
}

// NewMockSweetRepository creates a new instance of MockSweetRepository.
func NewMockSweetRepository() *MockSweetRepository {
	return &MockSweetRepository{
		sweets: make(map[string]models.Sweet),
	}
}

// GetAll returns all sweets, newest first.
func (r *MockSweetRepository) GetAll() ([]models.Sweet, error) {
	return r.Search(SweetFilter{})
}

// Search returns the sweets matching the filters, newest first.
func (r *MockSweetRepository) Search(filter SweetFilter) ([]models.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sweetList := make([]models.Sweet, 0, len(r.sweets))
	for i := len(r.order) - 1; i >= 0; i-- {
		s, ok := r.sweets[r.order[i]]
		if !ok {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && s.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && s.Price > *filter.MaxPrice {
			continue
		}
		sweetList = append(sweetList, s)
	}
	return sweetList, nil
}

// GetByID returns a sweet by its ID.
func (r *MockSweetRepository) GetByID(id string) (*models.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sweet, ok := r.sweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sweet, nil
}

// Create adds a new sweet.
func (r *MockSweetRepository) Create(sweet *models.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sweet.ID == "" {
		sweet.ID = uuid.New().String()
	}
	now := time.Now()
	sweet.CreatedAt = now
	sweet.UpdatedAt = now
	r.sweets[sweet.ID] = *sweet
	r.order = append(r.order, sweet.ID)
	return nil
}

// Update modifies an existing sweet.
func (r *MockSweetRepository) Update(sweet *models.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sweets[sweet.ID]
	if !ok {
		return ErrNotFound
	}
	sweet.CreatedAt = stored.CreatedAt
	sweet.UpdatedAt = time.Now()
	r.sweets[sweet.ID] = *sweet
	return nil
}

// AdjustQuantity applies a signed delta to the stored quantity under the
// write lock, refusing decrements that would go below zero.
func (r *MockSweetRepository) AdjustQuantity(id string, delta int) (*models.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sweet, ok := r.sweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sweet.Quantity+delta < 0 {
		return nil, ErrInsufficientStock
	}
	sweet.Quantity += delta
	sweet.UpdatedAt = time.Now()
	r.sweets[id] = sweet
	return &sweet, nil
}

// Delete removes a sweet by its ID.
func (r *MockSweetRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sweets[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.sweets, id)
	return nil
}

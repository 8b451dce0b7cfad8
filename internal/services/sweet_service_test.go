package services_test

import (
	"testing"

	"sweetshop/internal/models"
	"sweetshop/internal/repositories"
	"sweetshop/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSweetRepository is a mock implementation of repositories.SweetRepository
type MockSweetRepository struct {
	mock.Mock
}

func (m *MockSweetRepository) GetAll() ([]models.Sweet, error) {
	args := m.Called()
	return args.Get(0).([]models.Sweet), args.Error(1)
}

func (m *MockSweetRepository) Search(filter repositories.SweetFilter) ([]models.Sweet, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Sweet), args.Error(1)
}

func (m *MockSweetRepository) GetByID(id string) (*models.Sweet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sweet), args.Error(1)
}

func (m *MockSweetRepository) Create(sweet *models.Sweet) error {
	args := m.Called(sweet)
	return args.Error(0)
}

func (m *MockSweetRepository) Update(sweet *models.Sweet) error {
	args := m.Called(sweet)
	return args.Error(0)
}

func (m *MockSweetRepository) AdjustQuantity(id string, delta int) (*models.Sweet, error) {
	args := m.Called(id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sweet), args.Error(1)
}

func (m *MockSweetRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestSweetService_CreateSweet(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	// Name and category are trimmed before validation and persistence
	sweet := &models.Sweet{Name: "  Gulab Jamun  ", Category: " Indian ", Price: 50, Quantity: 100}
	mockRepo.On("Create", sweet).Return(nil).Once()

	err := service.CreateSweet(sweet)

	assert.NoError(t, err)
	assert.Equal(t, "Gulab Jamun", sweet.Name)
	assert.Equal(t, "Indian", sweet.Category)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_CreateSweet_Validation(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	// Whitespace-only name trims to empty and fails validation
	err := service.CreateSweet(&models.Sweet{Name: "   ", Category: "Indian", Price: 50, Quantity: 10})
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "Name")

	// Negative price
	err = service.CreateSweet(&models.Sweet{Name: "Ladoo", Category: "Indian", Price: -1, Quantity: 10})
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "Price")

	// Negative quantity
	err = service.CreateSweet(&models.Sweet{Name: "Ladoo", Category: "Indian", Price: 1, Quantity: -5})
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "Quantity")

	// No invalid record must reach the repository
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSweetService_PurchaseSweet(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	stored := &models.Sweet{ID: "sweet-1", Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 100}
	updated := &models.Sweet{ID: "sweet-1", Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 95}

	mockRepo.On("GetByID", "sweet-1").Return(stored, nil).Once()
	mockRepo.On("AdjustQuantity", "sweet-1", -5).Return(updated, nil).Once()

	sweet, err := service.PurchaseSweet("sweet-1", 5)

	assert.NoError(t, err)
	assert.Equal(t, 95, sweet.Quantity)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_PurchaseSweet_InvalidAmount(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	for _, amount := range []int{0, -3} {
		sweet, err := service.PurchaseSweet("sweet-1", amount)
		assert.ErrorIs(t, err, services.ErrInvalidQuantity)
		assert.Nil(t, sweet)
	}
	// Ambiguous input is rejected before any repository access
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
	mockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything)
}

func TestSweetService_PurchaseSweet_NotFound(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	mockRepo.On("GetByID", "missing").Return(nil, repositories.ErrNotFound).Once()

	sweet, err := service.PurchaseSweet("missing", 1)

	assert.ErrorIs(t, err, services.ErrSweetNotFound)
	assert.Nil(t, sweet)
	mockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_PurchaseSweet_OutOfStock(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	empty := &models.Sweet{ID: "sweet-1", Name: "Barfi", Category: "Indian", Price: 30, Quantity: 0}
	mockRepo.On("GetByID", "sweet-1").Return(empty, nil)

	// Out of stock wins regardless of the requested amount
	for _, amount := range []int{1, 100} {
		sweet, err := service.PurchaseSweet("sweet-1", amount)
		assert.ErrorIs(t, err, services.ErrOutOfStock)
		assert.Nil(t, sweet)
	}
	mockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything)
}

func TestSweetService_PurchaseSweet_InsufficientQuantity(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	stored := &models.Sweet{ID: "sweet-1", Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 95}
	mockRepo.On("GetByID", "sweet-1").Return(stored, nil).Once()

	sweet, err := service.PurchaseSweet("sweet-1", 200)

	var insufficientErr *services.InsufficientQuantityError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 95, insufficientErr.Available)
	assert.Equal(t, "Insufficient quantity. Available: 95", err.Error())
	assert.Nil(t, sweet)
	mockRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_PurchaseSweet_RetriesOnLostRace(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	// First read sees enough stock, but a concurrent purchase wins the
	// guarded update; the fresh quantity no longer covers the amount.
	before := &models.Sweet{ID: "sweet-1", Name: "Jalebi", Category: "Indian", Price: 20, Quantity: 10}
	after := &models.Sweet{ID: "sweet-1", Name: "Jalebi", Category: "Indian", Price: 20, Quantity: 3}

	mockRepo.On("GetByID", "sweet-1").Return(before, nil).Once()
	mockRepo.On("AdjustQuantity", "sweet-1", -5).Return(nil, repositories.ErrInsufficientStock).Once()
	mockRepo.On("GetByID", "sweet-1").Return(after, nil).Once()

	sweet, err := service.PurchaseSweet("sweet-1", 5)

	var insufficientErr *services.InsufficientQuantityError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 3, insufficientErr.Available)
	assert.Nil(t, sweet)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_RestockSweet(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	updated := &models.Sweet{ID: "sweet-1", Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 145}
	mockRepo.On("AdjustQuantity", "sweet-1", 50).Return(updated, nil).Once()

	sweet, err := service.RestockSweet("sweet-1", 50)

	assert.NoError(t, err)
	assert.Equal(t, 145, sweet.Quantity)
	mockRepo.AssertExpectations(t)

	// Non-positive amounts are rejected before any repository access
	sweet, err = service.RestockSweet("sweet-1", 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)
	assert.Nil(t, sweet)

	// Unknown ID
	mockRepo.On("AdjustQuantity", "missing", 10).Return(nil, repositories.ErrNotFound).Once()
	sweet, err = service.RestockSweet("missing", 10)
	assert.ErrorIs(t, err, services.ErrSweetNotFound)
	assert.Nil(t, sweet)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_UpdateSweet(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	stored := &models.Sweet{ID: "sweet-1", Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 100}
	mockRepo.On("GetByID", "sweet-1").Return(stored, nil).Once()
	mockRepo.On("Update", mock.MatchedBy(func(s *models.Sweet) bool {
		return s.ID == "sweet-1" && s.Price == 60 && s.Name == "Gulab Jamun"
	})).Return(nil).Once()

	newPrice := 60.0
	sweet, err := service.UpdateSweet("sweet-1", services.SweetUpdate{Price: &newPrice})

	assert.NoError(t, err)
	assert.Equal(t, 60.0, sweet.Price)
	assert.Equal(t, "Gulab Jamun", sweet.Name) // untouched fields survive
	mockRepo.AssertExpectations(t)
}

func TestSweetService_UpdateSweet_Validation(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	stored := &models.Sweet{ID: "sweet-1", Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 100}
	mockRepo.On("GetByID", "sweet-1").Return(stored, nil).Once()

	blank := "   "
	sweet, err := service.UpdateSweet("sweet-1", services.SweetUpdate{Name: &blank})

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "Name")
	assert.Nil(t, sweet)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestSweetService_UpdateSweet_NotFound(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	mockRepo.On("GetByID", "missing").Return(nil, repositories.ErrNotFound).Once()

	newPrice := 10.0
	sweet, err := service.UpdateSweet("missing", services.SweetUpdate{Price: &newPrice})

	assert.ErrorIs(t, err, services.ErrSweetNotFound)
	assert.Nil(t, sweet)
	mockRepo.AssertExpectations(t)
}

func TestSweetService_DeleteSweet(t *testing.T) {
	mockRepo := new(MockSweetRepository)
	service := services.NewSweetService(mockRepo, nil)

	mockRepo.On("Delete", "sweet-1").Return(nil).Once()
	assert.NoError(t, service.DeleteSweet("sweet-1"))

	mockRepo.On("Delete", "missing").Return(repositories.ErrNotFound).Once()
	assert.ErrorIs(t, service.DeleteSweet("missing"), services.ErrSweetNotFound)
	mockRepo.AssertExpectations(t)
}

// TestSweetService_StockScenario runs the full purchase/restock flow against
// the in-memory repository so persisted state is verified after every step.
func TestSweetService_StockScenario(t *testing.T) {
	repo := repositories.NewMockSweetRepository()
	service := services.NewSweetService(repo, nil)

	sweet := &models.Sweet{Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 100}
	assert.NoError(t, service.CreateSweet(sweet))
	assert.NotEmpty(t, sweet.ID)

	// Purchase 5 -> 95
	updated, err := service.PurchaseSweet(sweet.ID, 5)
	assert.NoError(t, err)
	assert.Equal(t, 95, updated.Quantity)

	// Purchase 200 -> fails, available 95 reported, state unchanged
	_, err = service.PurchaseSweet(sweet.ID, 200)
	var insufficientErr *services.InsufficientQuantityError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 95, insufficientErr.Available)
	stored, err := service.GetSweetByID(sweet.ID)
	assert.NoError(t, err)
	assert.Equal(t, 95, stored.Quantity)

	// Restock 50 -> 145
	updated, err = service.RestockSweet(sweet.ID, 50)
	assert.NoError(t, err)
	assert.Equal(t, 145, updated.Quantity)
	stored, _ = service.GetSweetByID(sweet.ID)
	assert.Equal(t, 145, stored.Quantity)
}

func TestSweetService_StockScenario_EmptyStock(t *testing.T) {
	repo := repositories.NewMockSweetRepository()
	service := services.NewSweetService(repo, nil)

	sweet := &models.Sweet{Name: "Kaju Katli", Category: "Indian", Price: 80, Quantity: 0}
	assert.NoError(t, service.CreateSweet(sweet))

	_, err := service.PurchaseSweet(sweet.ID, 1)
	assert.ErrorIs(t, err, services.ErrOutOfStock)

	// Restock revives the empty product
	updated, err := service.RestockSweet(sweet.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)

	updated, err = service.PurchaseSweet(sweet.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)
}

func TestSweetService_SearchSweets(t *testing.T) {
	repo := repositories.NewMockSweetRepository()
	service := services.NewSweetService(repo, nil)

	seed := []models.Sweet{
		{Name: "Gulab Jamun", Category: "Indian", Price: 50, Quantity: 100},
		{Name: "Brownie", Category: "Western", Price: 120, Quantity: 20},
		{Name: "Rasgulla", Category: "Indian", Price: 40, Quantity: 30},
	}
	for i := range seed {
		assert.NoError(t, service.CreateSweet(&seed[i]))
	}

	// Exact category match, newest-created first
	indian, err := service.SearchSweets(repositories.SweetFilter{Category: "Indian"})
	assert.NoError(t, err)
	assert.Len(t, indian, 2)
	assert.Equal(t, "Rasgulla", indian[0].Name)
	assert.Equal(t, "Gulab Jamun", indian[1].Name)

	// Case-insensitive substring name match
	byName, err := service.SearchSweets(repositories.SweetFilter{Name: "gulab"})
	assert.NoError(t, err)
	assert.Len(t, byName, 1)
	assert.Equal(t, "Gulab Jamun", byName[0].Name)

	// Inclusive price bounds compose with category
	minPrice, maxPrice := 40.0, 50.0
	priced, err := service.SearchSweets(repositories.SweetFilter{
		Category: "Indian",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})
	assert.NoError(t, err)
	assert.Len(t, priced, 2)

	// No filters returns everything
	all, err := service.GetAllSweets()
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Rasgulla", all[0].Name)
}

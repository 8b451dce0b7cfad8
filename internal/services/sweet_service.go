package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"sweetshop/internal/models"
	"sweetshop/internal/repositories"
	"sweetshop/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
)

// SweetService applies inventory operations to sweet records, preserving
// the invariant that a stored quantity is never negative.
type SweetService struct {
	repo     repositories.SweetRepository
	mqClient *rabbitmq.Client // may be nil; publishing is best-effort
	validate *validator.Validate
}

// NewSweetService creates a new SweetService. mqClient may be nil, in which
// case stock events are not published.
func NewSweetService(repo repositories.SweetRepository, mqClient *rabbitmq.Client) *SweetService {
	return &SweetService{
		repo:     repo,
		mqClient: mqClient,
		validate: validator.New(),
	}
}

// SweetUpdate carries a partial update; nil fields are left unchanged.
type SweetUpdate struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

// GetAllSweets retrieves all sweets, newest first.
func (s *SweetService) GetAllSweets() ([]models.Sweet, error) {
	return s.repo.GetAll()
}

// SearchSweets retrieves the sweets matching the given filters, newest
// first. An empty filter returns everything.
func (s *SweetService) SearchSweets(filter repositories.SweetFilter) ([]models.Sweet, error) {
	return s.repo.Search(filter)
}

// GetSweetByID retrieves a single sweet by its ID.
func (s *SweetService) GetSweetByID(id string) (*models.Sweet, error) {
	sweet, err := s.repo.GetByID(id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return sweet, nil
}

// CreateSweet validates and persists a new sweet. Name and category are
// trimmed before validation; the repository assigns the ID.
func (s *SweetService) CreateSweet(sweet *models.Sweet) error {
	sweet.Name = strings.TrimSpace(sweet.Name)
	sweet.Category = strings.TrimSpace(sweet.Category)

	if err := s.validateSweet(sweet); err != nil {
		return err
	}
	return s.repo.Create(sweet)
}

// UpdateSweet applies the supplied fields to an existing sweet, validating
// the merged record before persisting it.
func (s *SweetService) UpdateSweet(id string, update SweetUpdate) (*models.Sweet, error) {
	sweet, err := s.repo.GetByID(id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if update.Name != nil {
		sweet.Name = strings.TrimSpace(*update.Name)
	}
	if update.Category != nil {
		sweet.Category = strings.TrimSpace(*update.Category)
	}
	if update.Price != nil {
		sweet.Price = *update.Price
	}
	if update.Quantity != nil {
		sweet.Quantity = *update.Quantity
	}

	if err := s.validateSweet(sweet); err != nil {
		return nil, err
	}
	if err := s.repo.Update(sweet); err != nil {
		return nil, s.mapRepoError(err)
	}
	return sweet, nil
}

// DeleteSweet removes a sweet by its ID.
func (s *SweetService) DeleteSweet(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

// PurchaseSweet decrements the quantity of a sweet by amount. The sweet's
// current quantity is checked first so the failure carries the reason the
// purchase cannot proceed: ErrOutOfStock when the quantity is exactly
// zero, InsufficientQuantityError (with the available amount) otherwise.
// On success exactly one persisted mutation occurs; on failure none.
func (s *SweetService) PurchaseSweet(id string, amount int) (*models.Sweet, error) {
	if amount <= 0 {
		return nil, ErrInvalidQuantity
	}

	for {
		sweet, err := s.repo.GetByID(id)
		if err != nil {
			return nil, s.mapRepoError(err)
		}
		if sweet.Quantity == 0 {
			return nil, ErrOutOfStock
		}
		if amount > sweet.Quantity {
			return nil, &InsufficientQuantityError{Available: sweet.Quantity}
		}

		updated, err := s.repo.AdjustQuantity(id, -amount)
		if errors.Is(err, repositories.ErrInsufficientStock) {
			// Lost a race with a concurrent purchase; re-read and
			// re-validate against the fresh quantity.
			continue
		}
		if err != nil {
			return nil, s.mapRepoError(err)
		}

		s.publishStockEvent("sweet.purchased", updated, amount)
		return updated, nil
	}
}

// RestockSweet increments the quantity of a sweet by amount. There is no
// upper bound on the resulting quantity.
func (s *SweetService) RestockSweet(id string, amount int) (*models.Sweet, error) {
	if amount <= 0 {
		return nil, ErrInvalidQuantity
	}

	updated, err := s.repo.AdjustQuantity(id, amount)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.publishStockEvent("sweet.restocked", updated, amount)
	return updated, nil
}

// validateSweet runs struct validation and converts failures into a
// field-level ValidationError.
func (s *SweetService) validateSweet(sweet *models.Sweet) error {
	err := s.validate.Struct(sweet)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}

// mapRepoError translates repository sentinels into the service taxonomy.
func (s *SweetService) mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrSweetNotFound
	}
	return err
}

// publishStockEvent publishes a stock ledger event to RabbitMQ. Publishing
// is best-effort: failures are logged and never fail the operation.
func (s *SweetService) publishStockEvent(routingKey string, sweet *models.Sweet, amount int) {
	if s.mqClient == nil {
		return
	}

	event := map[string]interface{}{
		"sweetID":  sweet.ID,
		"name":     sweet.Name,
		"amount":   amount,
		"quantity": sweet.Quantity,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal stock event for sweet %s: %v", sweet.ID, err)
		return
	}
	if err := s.mqClient.Publish("inventory", routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for sweet %s: %v", routingKey, sweet.ID, err)
	}
}

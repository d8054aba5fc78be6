package query

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// GetDishQuery represents the query to fetch a single dish by id
type GetDishQuery struct {
	ID uint
}

// GetDishHandler handles get dish query
type GetDishHandler struct {
	repo domain.MenuRepository
}

// NewGetDishHandler creates a new get dish handler
func NewGetDishHandler(repo domain.MenuRepository) *GetDishHandler {
	return &GetDishHandler{repo: repo}
}

// Handle executes the get dish query
func (h *GetDishHandler) Handle(q GetDishQuery) (*domain.Dish, error) {
	if q.ID == 0 {
		return nil, fmt.Errorf("invalid dish id")
	}
	return h.repo.FindByID(q.ID)
}

package query

import (
	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// ListOutOfStockQuery represents the query to list unavailable dishes
type ListOutOfStockQuery struct{}

// ListOutOfStockHandler handles the out-of-stock listing query
type ListOutOfStockHandler struct {
	repo domain.MenuRepository
}

// NewListOutOfStockHandler creates a new out-of-stock listing handler
func NewListOutOfStockHandler(repo domain.MenuRepository) *ListOutOfStockHandler {
	return &ListOutOfStockHandler{repo: repo}
}

// Handle executes the out-of-stock listing query
func (h *ListOutOfStockHandler) Handle(ListOutOfStockQuery) ([]domain.Dish, error) {
	return h.repo.FindOutOfStock()
}

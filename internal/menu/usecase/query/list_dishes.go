package query

import (
	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// ListDishesQuery represents the query to list dishes with optional
// category and availability filters
type ListDishesQuery struct {
	CategoryID   *uint
	Availability *bool
}

// ListDishesHandler handles list dishes query
type ListDishesHandler struct {
	repo domain.MenuRepository
}

// NewListDishesHandler creates a new list dishes handler
func NewListDishesHandler(repo domain.MenuRepository) *ListDishesHandler {
	return &ListDishesHandler{repo: repo}
}

// Handle executes the list dishes query
func (h *ListDishesHandler) Handle(q ListDishesQuery) ([]domain.Dish, error) {
	return h.repo.FindAll(domain.DishFilter{
		CategoryID:   q.CategoryID,
		Availability: q.Availability,
	})
}

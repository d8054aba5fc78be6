package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// AddDishCommand represents the command to add a new dish. Stock is
// optional and defaults to zero.
type AddDishCommand struct {
	Name         string
	CategoryID   uint
	Availability bool
	Stock        *int
}

// AddDishHandler handles dish creation command
type AddDishHandler struct {
	repo domain.MenuRepository
}

// NewAddDishHandler creates a new add dish handler
func NewAddDishHandler(repo domain.MenuRepository) *AddDishHandler {
	return &AddDishHandler{repo: repo}
}

// Handle executes the add dish command
func (h *AddDishHandler) Handle(cmd AddDishCommand) (*domain.Dish, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("dish name is required")
	}
	if cmd.CategoryID == 0 {
		return nil, fmt.Errorf("category id is required")
	}

	stock := 0
	if cmd.Stock != nil {
		if *cmd.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative")
		}
		stock = *cmd.Stock
	}

	dish := &domain.Dish{
		Name:         cmd.Name,
		CategoryID:   cmd.CategoryID,
		Availability: cmd.Availability,
		Stock:        stock,
	}

	if err := h.repo.Create(dish); err != nil {
		return nil, err
	}

	return dish, nil
}

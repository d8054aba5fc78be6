package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// UpdateDishCommand represents the command to fully replace a dish's
// mutable fields
type UpdateDishCommand struct {
	ID           uint
	Name         string
	CategoryID   uint
	Availability bool
	Stock        *int
}

// UpdateDishHandler handles dish update command
type UpdateDishHandler struct {
	repo domain.MenuRepository
}

// NewUpdateDishHandler creates a new update dish handler
func NewUpdateDishHandler(repo domain.MenuRepository) *UpdateDishHandler {
	return &UpdateDishHandler{repo: repo}
}

// Handle executes the update dish command
func (h *UpdateDishHandler) Handle(cmd UpdateDishCommand) (*domain.Dish, error) {
	if cmd.ID == 0 {
		return nil, fmt.Errorf("invalid dish id")
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("dish name is required")
	}
	if cmd.CategoryID == 0 {
		return nil, fmt.Errorf("category id is required")
	}

	dish, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		return nil, err
	}

	dish.Name = cmd.Name
	dish.CategoryID = cmd.CategoryID
	dish.Availability = cmd.Availability
	if cmd.Stock != nil {
		if *cmd.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative")
		}
		dish.Stock = *cmd.Stock
	} else {
		dish.Stock = 0
	}

	if err := h.repo.Update(dish); err != nil {
		return nil, err
	}

	return dish, nil
}

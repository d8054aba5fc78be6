package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// UpdateStockCommand represents the command to set a dish's stock quantity
type UpdateStockCommand struct {
	DishID uint
	Stock  int
}

// UpdateStockHandler handles stock update command
type UpdateStockHandler struct {
	repo domain.MenuRepository
}

// NewUpdateStockHandler creates a new update stock handler
func NewUpdateStockHandler(repo domain.MenuRepository) *UpdateStockHandler {
	return &UpdateStockHandler{repo: repo}
}

// Handle executes the update stock command
func (h *UpdateStockHandler) Handle(cmd UpdateStockCommand) error {
	if cmd.DishID == 0 {
		return fmt.Errorf("invalid dish id")
	}
	if cmd.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return h.repo.UpdateStock(cmd.DishID, cmd.Stock)
}

package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// MarkOutOfStockCommand represents the command to mark a dish unavailable
type MarkOutOfStockCommand struct {
	DishID uint
}

// MarkOutOfStockHandler handles the out-of-stock command
type MarkOutOfStockHandler struct {
	repo domain.MenuRepository
}

// NewMarkOutOfStockHandler creates a new mark out-of-stock handler
func NewMarkOutOfStockHandler(repo domain.MenuRepository) *MarkOutOfStockHandler {
	return &MarkOutOfStockHandler{repo: repo}
}

// Handle executes the mark out-of-stock command. Idempotent under
// repetition.
func (h *MarkOutOfStockHandler) Handle(cmd MarkOutOfStockCommand) error {
	if cmd.DishID == 0 {
		return fmt.Errorf("invalid dish id")
	}
	return h.repo.MarkOutOfStock(cmd.DishID)
}

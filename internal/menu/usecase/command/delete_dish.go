package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/menu/domain"
)

// DeleteDishCommand represents the command to delete a dish
type DeleteDishCommand struct {
	ID uint
}

// DeleteDishHandler handles dish deletion command
type DeleteDishHandler struct {
	repo domain.MenuRepository
}

// NewDeleteDishHandler creates a new delete dish handler
func NewDeleteDishHandler(repo domain.MenuRepository) *DeleteDishHandler {
	return &DeleteDishHandler{repo: repo}
}

// Handle executes the delete dish command
func (h *DeleteDishHandler) Handle(cmd DeleteDishCommand) error {
	if cmd.ID == 0 {
		return fmt.Errorf("invalid dish id")
	}
	return h.repo.Delete(cmd.ID)
}

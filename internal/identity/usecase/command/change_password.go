package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/identity/domain"
	"github.com/spicehouse/menu-service/pkg/auth"
)

// ChangePasswordCommand represents the command to change a user's
// password. Username comes from the validated credential, never from the
// request body.
type ChangePasswordCommand struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordHandler handles password change command
type ChangePasswordHandler struct {
	repo domain.UserRepository
}

// NewChangePasswordHandler creates a new change password handler
func NewChangePasswordHandler(repo domain.UserRepository) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo}
}

// Handle executes the change password command
func (h *ChangePasswordHandler) Handle(cmd ChangePasswordCommand) error {
	if cmd.NewPassword == "" {
		return fmt.Errorf("new password is required")
	}

	user, err := h.repo.FindByUsername(cmd.Username)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, cmd.CurrentPassword) {
		return domain.ErrWrongPassword
	}

	hashedPassword, err := auth.HashPassword(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return h.repo.UpdatePassword(cmd.Username, hashedPassword)
}

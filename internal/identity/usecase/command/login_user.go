package command

import (
	"fmt"

	"github.com/spicehouse/menu-service/internal/identity/domain"
	"github.com/spicehouse/menu-service/pkg/auth"
)

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	Username string
	Password string
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	repo   domain.UserRepository
	tokens *auth.Manager
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(repo domain.UserRepository, tokens *auth.Manager) *LoginUserHandler {
	return &LoginUserHandler{repo: repo, tokens: tokens}
}

// Handle executes the login command and mints a signed credential on
// success. Unknown-user and wrong-password produce the same error.
func (h *LoginUserHandler) Handle(cmd LoginUserCommand) (string, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := h.repo.FindByUsername(cmd.Username)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, cmd.Password) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := h.tokens.Generate(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

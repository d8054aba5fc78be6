package domain

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned on a username uniqueness violation
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials is the generic login failure; identical for
	// unknown-user and wrong-password to prevent enumeration
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrWrongPassword is returned when the current password doesn't match
	// during a password change
	ErrWrongPassword = errors.New("incorrect current password")
)

// User represents a registered account. The password field always holds a
// bcrypt hash, never cleartext.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(user *User) error
	FindByUsername(username string) (*User, error)
	UpdatePassword(username, passwordHash string) error
	Count() (int64, error)
}

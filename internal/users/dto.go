package users

import (
	"strings"
	"time"

	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserDTO is the public view of an account. The password hash never leaves
// the package through it.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO is the input of Repository.Create. Accounts start active
// unless Disabled is set.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Disabled     bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := UserDTO{ID: u.ID, Email: u.Email, IsActive: u.IsActive, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if u.LastLoginAt != nil {
		at := u.LastLoginAt.UTC()
		dto.LastLoginAt = &at
	}
	return &dto
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		IsActive:     !c.Disabled,
	}
}

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

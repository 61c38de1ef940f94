package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Account is the application-local mirror of a provisioned principal. The
// IdP stays the source of truth for credentials and roles; this row only
// links the Keycloak subject id to application data.
type Account struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	KeycloakID string         `gorm:"uniqueIndex;not null" json:"keycloak_id"`
	Email      string         `gorm:"uniqueIndex;not null" json:"email"`
	Role       string         `gorm:"not null" json:"role"`
	Attributes datatypes.JSON `gorm:"type:jsonb" json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AddRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type AddClientRoleRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UnverifiedUser is the administrative listing projection of a principal
// whose email has not been verified yet.
type UnverifiedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Enabled  bool   `json:"enabled"`
}

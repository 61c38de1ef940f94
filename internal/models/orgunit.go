package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrgUnit is a node in the organizational-unit tree. Parent/child integrity
// is validated at the service layer before any write.
type OrgUnit struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Code      string     `gorm:"uniqueIndex;not null" json:"code"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent    *OrgUnit   `gorm:"foreignKey:ParentID" json:"-"`
	Children  []OrgUnit  `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u *OrgUnit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type CreateOrgUnitRequest struct {
	Name     string     `json:"name" binding:"required"`
	Code     string     `json:"code" binding:"required,orgcode"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateOrgUnitRequest struct {
	Name     *string    `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public display identity of a seller, one per user.
type Profile struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	FullName     string    `gorm:"column:full_name;not null;default:''"`
	BusinessName string    `gorm:"column:business_name;not null;default:''"`
	Phone        string    `gorm:"column:phone;not null;default:''"`
	DocumentID   string    `gorm:"column:document_id;not null;default:''"`
	About        string    `gorm:"column:about;not null;default:''"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	SKU      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"sku"`
	Category *string   `gorm:"type:varchar(255)" json:"category"`
	Price    float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock    int       `gorm:"not null;default:0" json:"stock"`
	Status   *string   `gorm:"type:varchar(255)" json:"status"`

	// Image is the public URL served to clients. ImagePublicID is the
	// media provider's handle for the asset, kept only for deletion and
	// never serialized.
	Image         *string `gorm:"type:varchar(512)" json:"image"`
	ImagePublicID *string `gorm:"type:varchar(255)" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

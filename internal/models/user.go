package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	PhoneNumber  *string   `gorm:"type:varchar(20)" json:"phone_number"`
	Avatar       *string   `gorm:"type:varchar(512)" json:"avatar,omitempty"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubjectID implements policy.Subject.
func (u *User) SubjectID() uuid.UUID {
	return u.ID
}

// IsAdmin implements policy.Subject.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

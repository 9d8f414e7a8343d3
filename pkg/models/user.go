package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	LastName  string         `gorm:"type:varchar(100)" json:"last_name"`
	Nick      string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"nick"`
	Email     string         `gorm:"uniqueIndex;not null" json:"-"`
	Password  string         `gorm:"not null" json:"-"`
	Role      string         `gorm:"type:varchar(20);default:'role_user'" json:"-"`
	Image     string         `gorm:"type:varchar(500);default:'default.png'" json:"image"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// PublicUserColumns is the owner projection used when publications are loaded.
var PublicUserColumns = []string{"id", "name", "last_name", "nick", "image"}

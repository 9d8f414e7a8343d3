package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Publication struct {
	ID        string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index:idx_publications_user_created,priority:1" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	File      string         `gorm:"type:varchar(500)" json:"file,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_publications_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Publication) TableName() string {
	return "publications"
}

func (p *Publication) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

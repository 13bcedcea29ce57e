package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Token struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CreatorAddress   string    `gorm:"type:varchar(64);not null;index"`
	Name             string    `gorm:"type:varchar(255);not null"`
	Symbol           string    `gorm:"type:varchar(32);not null"`
	Description      string    `gorm:"type:text"`
	IconURL          string    `gorm:"type:varchar(512)"`
	MintAddress      string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Decimals         int       `gorm:"not null;default:0"`
	Supply           int64     `gorm:"not null"`
	Claimed          int64     `gorm:"not null;default:0"`
	ExpiryDate       *time.Time
	WhitelistEnabled bool       `gorm:"not null;default:false"`
	IsCompressed     bool       `gorm:"not null;default:false"`
	EventID          *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

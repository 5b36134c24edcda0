package models

import (
	"time"
)

type User struct {
	ID                      int64      `gorm:"primaryKey;autoIncrement"`
	Email                   string     `gorm:"type:varchar(255);not null"`
	PasswordHash            string     `gorm:"type:varchar(255);not null"`
	FullName                string     `gorm:"type:varchar(255);not null"`
	CompanyName             string     `gorm:"type:varchar(255);not null"`
	Phone                   string     `gorm:"type:varchar(50);not null"`
	IsActive                bool       `gorm:"not null"`
	IsVerified              bool       `gorm:"not null"`
	VerificationStatus      string     `gorm:"type:varchar(20);not null"`
	VerificationSubmittedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (User) TableName() string {
	return "users"
}

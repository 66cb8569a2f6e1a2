package models

import (
	"time"
)

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname   string    `gorm:"size:60;uniqueIndex" json:"nickname"`
	Name       string    `gorm:"size:255" json:"name"`
	Image      string    `gorm:"size:512" json:"image,omitempty"`
	Password   string    `gorm:"size:255" json:"-"`
	Language   string    `gorm:"size:5" json:"language,omitempty"` // ko, vi, en
	IsVerified bool      `json:"isVerified"`
	IsExpert   bool      `json:"isExpert"`
	BadgeType  string    `gorm:"size:40" json:"badgeType,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

type UserTokens struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserTokens) TableName() string {
	return "user_tokens"
}

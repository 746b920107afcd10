// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account in Kumatter.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"userId"`
	UserName  string    `gorm:"size:20;not null" json:"userName"`
	LoginID   string    `gorm:"size:50;uniqueIndex;not null" json:"loginId"`
	Email     string    `gorm:"size:50;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `gorm:"type:text" json:"userBio"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// NewUser builds a user with both timestamps set to now.
func NewUser(userName, loginID, email, passwordHash, bio string, now time.Time) *User {
	return &User{
		UserName:  userName,
		LoginID:   loginID,
		Email:     email,
		Password:  passwordHash,
		Bio:       bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a profile update.
func (u *User) Touch(now time.Time) {
	u.UpdatedAt = now
}

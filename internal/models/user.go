package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered fan. Email is stored lowercased and is
// unique; EmailVerifiedAt is nil until the verification token is
// redeemed, and login is rejected while it is nil.
type User struct {
	BaseModel
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	Offers          []Offer    `json:"offers,omitempty"`
}

// EmailVerification is a single-use token mailed at registration.
// It is deleted on redemption, and any previous tokens for the same
// user are purged before a new one is issued.
type EmailVerification struct {
	BaseModel
	Token     string    `gorm:"uniqueIndex" json:"token"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordReset mirrors EmailVerification with a shorter lifetime.
type PasswordReset struct {
	BaseModel
	Token     string    `gorm:"uniqueIndex" json:"token"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

package models

import "github.com/google/uuid"

// Offer statuses. Any of the three values may be set from any other;
// anything else is rejected before a write happens.
const (
	OfferStatusPending  = "pending"
	OfferStatusApproved = "approved"
	OfferStatusDeclined = "declined"
)

// Offer is a fan's monetary bid for an athlete experience. Customer
// contact fields are a snapshot captured at submission time and may
// differ from the linked user's profile. Payment fields are
// descriptive only; no money moves through this system.
type Offer struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User      *User      `json:"user,omitempty"`
	AthleteID uuid.UUID  `gorm:"type:uuid;index" json:"athlete_id"`
	Athlete   *Athlete   `json:"athlete,omitempty"`
	GameID    *uuid.UUID `gorm:"type:uuid" json:"game_id"`
	Game      *Game      `json:"game,omitempty"`

	Status  string  `json:"status"`
	Offered float64 `json:"offered"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	ExpDesc  string `json:"exp_desc"`
	ExpType  string `json:"exp_type"`
	GameDesc string `json:"game_desc"`

	PaymentMethod string `json:"payment_method"`
	PaymentLast4  string `json:"payment_last4"`
}

// IsValidOfferStatus reports whether s is one of the recognized
// offer statuses.
func IsValidOfferStatus(s string) bool {
	switch s {
	case OfferStatusPending, OfferStatusApproved, OfferStatusDeclined:
		return true
	}
	return false
}

// OfferMessage is a note a fan attaches to one of their offers,
// delivered to the ops inbox.
type OfferMessage struct {
	BaseModel
	OfferID uuid.UUID `gorm:"type:uuid;index" json:"offer_id"`
	Offer   *Offer    `json:"offer,omitempty"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
}

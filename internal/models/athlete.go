package models

import (
	"time"

	"github.com/google/uuid"
)

// Athlete is a marketplace profile fans can submit offers against.
// Slug is derived from the name when not supplied and doubles as a
// public identifier: every athlete lookup accepts either the UUID or
// the slug.
type Athlete struct {
	BaseModel
	Slug     string `gorm:"uniqueIndex" json:"slug"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	League   string `json:"league"`
	ImageURL string `json:"image_url"`
	Active   bool   `json:"active"`
	Featured bool   `json:"featured"`
	Games    []Game `json:"games,omitempty"`
}

// Game is one schedule entry owned by an athlete. The whole set is
// bulk-replaced on every schedule sync, so games carry no identity of
// their own beyond (athlete, date, opponent).
type Game struct {
	BaseModel
	AthleteID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_games_athlete_date_opponent" json:"athlete_id"`
	Date      time.Time `gorm:"uniqueIndex:uq_games_athlete_date_opponent" json:"date"`
	Opponent  string    `gorm:"uniqueIndex:uq_games_athlete_date_opponent" json:"opponent"`
	Venue     string    `json:"venue"`
	Source    string    `json:"source"`
}

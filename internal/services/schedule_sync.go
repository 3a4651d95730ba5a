package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/daps/internal/models"
)

// SyncResult reports the outcome of a schedule refresh attempt.
type SyncResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// SyncService keeps athlete schedules populated from the external
// providers. One instance is shared by every trigger path (athlete
// create, team update, stale games read, admin resync) so the refresh
// policy lives in exactly one place.
type SyncService struct {
	db         *gorm.DB
	source     ScheduleSource
	staleBelow int

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewSyncService constructs the sync engine. staleBelow is the stored
// game count under which a schedule is considered stale.
func NewSyncService(db *gorm.DB, source ScheduleSource, staleBelow int) *SyncService {
	return &SyncService{
		db:         db,
		source:     source,
		staleBelow: staleBelow,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// EnsureFreshSchedule refreshes the athlete's games when the stored
// set looks stale. Calling it when the schedule is already fresh is a
// no-op beyond the count check: no network call, no write.
func (s *SyncService) EnsureFreshSchedule(athlete *models.Athlete) SyncResult {
	var count int64
	if err := s.db.Model(&models.Game{}).Where("athlete_id = ?", athlete.ID).Count(&count).Error; err != nil {
		log.Printf("[Sync] count games for %s: %v", athlete.Slug, err)
		return SyncResult{Message: "failed to inspect stored schedule"}
	}

	if int(count) >= s.staleBelow {
		return SyncResult{Success: true, Count: int(count), Message: "schedule already fresh"}
	}

	return s.Refresh(athlete)
}

// Refresh unconditionally refetches the athlete's schedule and
// atomically replaces the stored games when the providers return
// anything. On a provider miss the existing rows are left untouched.
func (s *SyncService) Refresh(athlete *models.Athlete) SyncResult {
	// Concurrent triggers for the same athlete (team update racing a
	// stale read) serialize here instead of double-fetching.
	lock := s.athleteLock(athlete.ID)
	lock.Lock()
	defer lock.Unlock()

	if !s.source.SupportsTeam(athlete.Team) {
		log.Printf("[Sync] team %q not supported for athlete %s", athlete.Team, athlete.Slug)
		return SyncResult{Message: fmt.Sprintf("team %q is not supported by the schedule providers", athlete.Team)}
	}

	fetched := s.source.FetchTeamSchedule(athlete.Team)
	if len(fetched) == 0 {
		log.Printf("[Sync] providers returned no games for %s (%s), keeping existing schedule", athlete.Slug, athlete.Team)
		return SyncResult{Message: "schedule providers returned no games; existing schedule kept"}
	}

	games := make([]models.Game, 0, len(fetched))
	for _, g := range fetched {
		games = append(games, models.Game{
			AthleteID: athlete.ID,
			Date:      g.Date,
			Opponent:  g.Opponent,
			Venue:     g.Venue,
			Source:    g.Source,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("athlete_id = ?", athlete.ID).Delete(&models.Game{}).Error; err != nil {
			return err
		}
		// skip duplicate (athlete, date, opponent) rows within the batch
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&games).Error
	})
	if err != nil {
		log.Printf("[Sync] replace schedule for %s: %v", athlete.Slug, err)
		return SyncResult{Message: "failed to store refreshed schedule"}
	}

	var count int64
	if err := s.db.Model(&models.Game{}).Where("athlete_id = ?", athlete.ID).Count(&count).Error; err != nil {
		log.Printf("[Sync] recount games for %s: %v", athlete.Slug, err)
	}

	log.Printf("[Sync] stored %d games for %s (%s)", count, athlete.Slug, athlete.Team)
	return SyncResult{Success: true, Count: int(count), Message: "schedule refreshed"}
}

func (s *SyncService) athleteLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.locks[id]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[id] = lock
	return lock
}

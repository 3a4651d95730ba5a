package services

import (
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/utils"
)

// RosterSource fetches one franchise's current players.
type RosterSource interface {
	TeamRoster(team string) []PlayerRecord
}

// RosterService maintains the cross-league player directory: a single
// memoized snapshot with a TTL, rebuilt by walking every franchise
// with a pacing delay between calls so the provider is not hammered.
// Concurrent refreshes after expiry may duplicate the fetch; the last
// writer wins, which is wasted work but not a correctness problem.
type RosterService struct {
	db     *gorm.DB
	source RosterSource
	clock  clockwork.Clock
	ttl    time.Duration
	delay  time.Duration

	mu        sync.Mutex
	cached    []PlayerRecord
	fetchedAt time.Time
}

// NewRosterService constructs the directory service. The clock is
// injected so tests control time.
func NewRosterService(db *gorm.DB, source RosterSource, clock clockwork.Clock, ttl, delay time.Duration) *RosterService {
	return &RosterService{
		db:     db,
		source: source,
		clock:  clock,
		ttl:    ttl,
		delay:  delay,
	}
}

// Players returns the cached directory, rebuilding it when the TTL
// has lapsed or nothing has been fetched yet.
func (r *RosterService) Players() []PlayerRecord {
	r.mu.Lock()
	cached, fetchedAt := r.cached, r.fetchedAt
	r.mu.Unlock()

	if cached != nil && r.clock.Since(fetchedAt) < r.ttl {
		return cached
	}

	players := r.fetchAll()
	if players == nil {
		// keep whatever we had rather than caching an outage
		return cached
	}

	r.mu.Lock()
	r.cached = players
	r.fetchedAt = r.clock.Now()
	r.mu.Unlock()

	return players
}

func (r *RosterService) fetchAll() []PlayerRecord {
	teams := AllTeams()
	log.Printf("[Roster] rebuilding player directory across %d teams", len(teams))

	var players []PlayerRecord
	for i, team := range teams {
		if i > 0 && r.delay > 0 {
			// pace per-team calls to stay under provider rate limits
			r.clock.Sleep(r.delay)
		}
		players = append(players, r.source.TeamRoster(team)...)
	}

	if len(players) == 0 {
		log.Printf("[Roster] directory rebuild produced no players")
		return nil
	}

	log.Printf("[Roster] directory rebuilt with %d players", len(players))
	return players
}

// ImportAthletes creates athlete rows for directory players that do
// not exist yet, keyed by the slug derived from the player name.
// Schedules are not fetched here; the reactive read path fills them in
// on first view.
func (r *RosterService) ImportAthletes() (int, error) {
	players := r.Players()

	created := 0
	for _, p := range players {
		slug := utils.Slugify(p.Name)
		if slug == "" {
			continue
		}

		var count int64
		if err := r.db.Model(&models.Athlete{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}

		athlete := models.Athlete{
			Slug:   slug,
			Name:   p.Name,
			Team:   p.Team,
			League: p.League,
			Active: true,
		}
		if err := r.db.Create(&athlete).Error; err != nil {
			return created, err
		}
		created++
	}

	log.Printf("[Roster] imported %d new athletes from the player directory", created)
	return created, nil
}

package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/daps/internal/models"
)

type scriptedRoster struct {
	players map[string][]PlayerRecord
	calls   int
}

func (s *scriptedRoster) TeamRoster(team string) []PlayerRecord {
	s.calls++
	return s.players[team]
}

func rosterWith(players ...PlayerRecord) *scriptedRoster {
	return &scriptedRoster{players: map[string][]PlayerRecord{"Lakers": players}}
}

func TestRosterPlayersMemoizesUntilTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	source := rosterWith(PlayerRecord{Name: "Test Player", Team: "Lakers", League: "NBA"})
	svc := NewRosterService(nil, source, clock, 24*time.Hour, 0)

	first := svc.Players()
	require.Len(t, first, 1)
	assert.Equal(t, len(AllTeams()), source.calls, "a rebuild walks every franchise")

	// within the TTL the snapshot is served without provider calls
	clock.Advance(23 * time.Hour)
	svc.Players()
	assert.Equal(t, len(AllTeams()), source.calls)

	// past the TTL the directory is rebuilt
	clock.Advance(2 * time.Hour)
	svc.Players()
	assert.Equal(t, 2*len(AllTeams()), source.calls)
}

func TestRosterPlayersKeepsCacheThroughOutage(t *testing.T) {
	clock := clockwork.NewFakeClock()
	source := rosterWith(PlayerRecord{Name: "Test Player", Team: "Lakers", League: "NBA"})
	svc := NewRosterService(nil, source, clock, time.Hour, 0)

	require.Len(t, svc.Players(), 1)

	// provider goes dark, TTL lapses
	source.players = nil
	clock.Advance(2 * time.Hour)

	players := svc.Players()
	require.Len(t, players, 1, "an outage must not wipe the previous snapshot")
	assert.Equal(t, "Test Player", players[0].Name)
}

func TestImportAthletes(t *testing.T) {
	db := newTestDB(t)

	// an athlete that already exists under the derived slug
	require.NoError(t, db.Create(&models.Athlete{
		Slug: "existing-player", Name: "Existing Player", Team: "Celtics", League: "NBA", Active: true,
	}).Error)

	clock := clockwork.NewFakeClock()
	source := rosterWith(
		PlayerRecord{Name: "New Player", Team: "Lakers", League: "NBA", Position: "G"},
		PlayerRecord{Name: "Existing Player", Team: "Lakers", League: "NBA"},
	)
	svc := NewRosterService(db, source, clock, time.Hour, 0)

	created, err := svc.ImportAthletes()
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var athlete models.Athlete
	require.NoError(t, db.First(&athlete, "slug = ?", "new-player").Error)
	assert.Equal(t, "New Player", athlete.Name)
	assert.Equal(t, "Lakers", athlete.Team)
	assert.True(t, athlete.Active)

	// re-running the import is a no-op
	created, err = svc.ImportAthletes()
	require.NoError(t, err)
	assert.Zero(t, created)
}

package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonLabel(t *testing.T) {
	cases := []struct {
		name       string
		now        time.Time
		startMonth time.Month
		want       string
	}{
		{"mid season after new year", time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), time.October, "2024-25"},
		{"offseason before start", time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC), time.October, "2024-25"},
		{"opening month", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), time.October, "2025-26"},
		{"late calendar year", time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC), time.October, "2025-26"},
		{"custom start month", time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), time.July, "2025-26"},
		{"century rollover digits", time.Date(1999, time.November, 1, 0, 0, 0, 0, time.UTC), time.October, "1999-00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SeasonLabel(tc.now, tc.startMonth))
		})
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *NBAScheduleProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewNBAScheduleProvider(srv.URL, 2*time.Second, time.October)
	p.now = func() time.Time { return time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) }
	return p
}

const scheduleListBody = `{
	"schedule": [
		{
			"gameDateTimeUTC": "2025-01-20T03:00:00Z",
			"arenaName": "Crypto.com Arena",
			"homeTeam": {"teamTricode": "LAL", "teamName": "Lakers", "teamCity": "Los Angeles"},
			"awayTeam": {"teamTricode": "BOS", "teamName": "Celtics", "teamCity": "Boston"}
		},
		{
			"gameDate": "2025-01-18",
			"homeTeam": {"teamTricode": "DEN", "teamName": "Nuggets", "teamCity": "Denver"},
			"awayTeam": {"teamTricode": "LAL", "teamName": "Lakers", "teamCity": "Los Angeles"}
		}
	]
}`

func TestNBAProviderScheduleListShape(t *testing.T) {
	var requestedPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Write([]byte(scheduleListBody))
	})

	games := p.FetchTeamSchedule("Lakers")
	require.Len(t, games, 2)

	// season derived from the frozen clock, team resolved to its tricode
	assert.Equal(t, "/static/json/liveData/playbyplay/schedule/2024-25_LAL_schedule.json", requestedPath)

	// sorted ascending by date
	assert.True(t, games[0].Date.Before(games[1].Date))

	// away game first
	assert.Equal(t, "Nuggets", games[0].Opponent)
	assert.Equal(t, "Away", games[0].Venue)
	assert.Equal(t, "nba", games[0].Source)

	// home game carries the arena
	assert.Equal(t, "Celtics", games[1].Opponent)
	assert.Equal(t, "Crypto.com Arena", games[1].Venue)
}

func TestNBAProviderLeagueScheduleShape(t *testing.T) {
	body := `{
		"leagueSchedule": {
			"gameDates": [
				{"games": [
					{
						"gameDateTimeUTC": "2025-01-22T00:30:00Z",
						"homeTeam": {"teamTricode": "BOS", "teamName": "Celtics", "teamCity": "Boston"},
						"awayTeam": {"teamTricode": "MIA", "teamName": "Heat", "teamCity": "Miami"}
					}
				]},
				{"games": [
					{
						"gameDateTimeUTC": "2025-01-25T00:30:00Z",
						"homeTeam": {"teamTricode": "NYK", "teamName": "Knicks", "teamCity": "New York"},
						"awayTeam": {"teamTricode": "BOS", "teamName": "Celtics", "teamCity": "Boston"}
					},
					{
						"gameDateTimeUTC": "2025-01-25T02:00:00Z",
						"homeTeam": {"teamTricode": "LAL", "teamName": "Lakers", "teamCity": "Los Angeles"},
						"awayTeam": {"teamTricode": "DEN", "teamName": "Nuggets", "teamCity": "Denver"}
					}
				]}
			]
		}
	}`
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	games := p.FetchTeamSchedule("Celtics")
	require.Len(t, games, 2)

	// the Lakers-Nuggets game does not involve the queried team
	assert.Equal(t, "Heat", games[0].Opponent)
	assert.Equal(t, "Knicks", games[1].Opponent)
	assert.Equal(t, "Away", games[1].Venue)
}

func TestNBAProviderBareArrayShape(t *testing.T) {
	body := `[
		{
			"gameDateTimeUTC": "2025-02-01T00:00:00Z",
			"homeTeam": {"teamTricode": "GSW", "teamName": "Warriors", "teamCity": "Golden State"},
			"awayTeam": {"teamTricode": "PHX", "teamName": "Suns", "teamCity": "Phoenix"}
		}
	]`
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	games := p.FetchTeamSchedule("Warriors")
	require.Len(t, games, 1)
	assert.Equal(t, "Suns", games[0].Opponent)
}

func TestNBAProviderFuzzyTeamMatch(t *testing.T) {
	// no tricodes at all, side resolution falls back to name containment
	body := `{
		"schedule": [
			{
				"gameDateTimeUTC": "2025-02-03T00:00:00Z",
				"homeTeam": {"teamName": "Timberwolves", "teamCity": "Minnesota"},
				"awayTeam": {"teamName": "Jazz", "teamCity": "Utah"}
			}
		]
	}`
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	games := p.FetchTeamSchedule("Timberwolves")
	require.Len(t, games, 1)
	assert.Equal(t, "Jazz", games[0].Opponent)
	assert.Equal(t, "Home", games[0].Venue)
}

func TestNBAProviderFailuresReturnEmpty(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		assert.Empty(t, p.FetchTeamSchedule("Lakers"))
	})

	t.Run("malformed body", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"schedule": not json`))
		})
		assert.Empty(t, p.FetchTeamSchedule("Lakers"))
	})

	t.Run("unrecognized shape", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"events": []}`))
		})
		assert.Empty(t, p.FetchTeamSchedule("Lakers"))
	})

	t.Run("unmapped team skips the network entirely", func(t *testing.T) {
		called := false
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		assert.Empty(t, p.FetchTeamSchedule("Globetrotters"))
		assert.False(t, called)
	})
}

func TestBalldontlieProvider(t *testing.T) {
	body := `{
		"data": [
			{
				"date": "2025-01-19T00:00:00Z",
				"home_team": {"id": 14, "full_name": "Los Angeles Lakers"},
				"visitor_team": {"id": 2, "full_name": "Boston Celtics"}
			},
			{
				"date": "2025-01-17T00:00:00Z",
				"home_team": {"id": 8, "full_name": "Denver Nuggets"},
				"visitor_team": {"id": 14, "full_name": "Los Angeles Lakers"}
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewBalldontlieProvider(srv.URL, 2*time.Second)
	games := p.FetchTeamSchedule("Lakers")
	require.Len(t, games, 2)

	// side resolution via full name, opponent reduced to the short name
	assert.Equal(t, "Nuggets", games[0].Opponent)
	assert.Equal(t, "Away", games[0].Venue)
	assert.Equal(t, "Celtics", games[1].Opponent)
	assert.Equal(t, "Home", games[1].Venue)
	assert.Equal(t, "balldontlie", games[0].Source)
}

type scriptedSource struct {
	games    []ProviderGame
	supports bool
	calls    int
}

func (s *scriptedSource) FetchTeamSchedule(team string) []ProviderGame {
	s.calls++
	return s.games
}

func (s *scriptedSource) SupportsTeam(team string) bool { return s.supports }

func TestChainedScheduleSource(t *testing.T) {
	game := ProviderGame{Date: time.Now(), Opponent: "Celtics", Source: "nba"}

	t.Run("primary wins when it has games", func(t *testing.T) {
		primary := &scriptedSource{games: []ProviderGame{game}, supports: true}
		secondary := &scriptedSource{games: []ProviderGame{{Opponent: "Heat"}}, supports: true}
		chain := &ChainedScheduleSource{Primary: primary, Secondary: secondary}

		games := chain.FetchTeamSchedule("Lakers")
		require.Len(t, games, 1)
		assert.Equal(t, "Celtics", games[0].Opponent)
		assert.Zero(t, secondary.calls)
	})

	t.Run("falls back on an empty primary", func(t *testing.T) {
		primary := &scriptedSource{supports: true}
		secondary := &scriptedSource{games: []ProviderGame{{Opponent: "Heat", Source: "balldontlie"}}, supports: true}
		chain := &ChainedScheduleSource{Primary: primary, Secondary: secondary}

		games := chain.FetchTeamSchedule("Lakers")
		require.Len(t, games, 1)
		assert.Equal(t, "balldontlie", games[0].Source)
		assert.Equal(t, 1, primary.calls)
	})

	t.Run("supports is the union of both legs", func(t *testing.T) {
		chain := &ChainedScheduleSource{
			Primary:   &scriptedSource{supports: false},
			Secondary: &scriptedSource{supports: true},
		}
		assert.True(t, chain.SupportsTeam("Lakers"))

		chain.Secondary = &scriptedSource{supports: false}
		assert.False(t, chain.SupportsTeam("Lakers"))
	})
}

func TestNormalizeTeamName(t *testing.T) {
	cases := []struct {
		in     string
		abbrev string
		ok     bool
	}{
		{"Lakers", "LAL", true},
		{"lakers", "LAL", true},
		{"Los Angeles Lakers", "LAL", true},
		{"GSW", "GSW", true},
		{"trail blazers", "POR", true},
		{"Sonics", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		m, ok := NormalizeTeamName(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.abbrev, m.Abbrev, tc.in)
		}
	}

	assert.Len(t, AllTeams(), 30)
}

package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// BalldontlieProvider is the secondary schedule source, used only when
// the primary produces nothing. Records it returns are tagged with
// their source so cached rows remain traceable.
type BalldontlieProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewBalldontlieProvider builds the fallback provider.
func NewBalldontlieProvider(baseURL string, timeout time.Duration) *BalldontlieProvider {
	return &BalldontlieProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// SupportsTeam reports whether the team name maps to a known franchise.
func (p *BalldontlieProvider) SupportsTeam(team string) bool {
	_, ok := NormalizeTeamName(team)
	return ok
}

type bdlGame struct {
	Date     string `json:"date"`
	HomeTeam struct {
		ID       json.Number `json:"id"`
		FullName string      `json:"full_name"`
	} `json:"home_team"`
	VisitorTeam struct {
		ID       json.Number `json:"id"`
		FullName string      `json:"full_name"`
	} `json:"visitor_team"`
}

// FetchTeamSchedule returns the team's current-season games sorted by
// date, or an empty list on any failure.
func (p *BalldontlieProvider) FetchTeamSchedule(teamName string) []ProviderGame {
	team, ok := NormalizeTeamName(teamName)
	if !ok {
		log.Printf("[BALLDONTLIE] no mapping for team %q", teamName)
		return nil
	}

	url := fmt.Sprintf("%s/api/v1/games?seasons[]=%d&team_ids[]=%s&per_page=100", p.baseURL, p.now().Year(), team.ID)

	body, ok := p.get(url)
	if !ok {
		return nil
	}

	var payload struct {
		Data []bdlGame `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data == nil {
		log.Printf("[BALLDONTLIE] invalid payload structure")
		return nil
	}

	games := make([]ProviderGame, 0, len(payload.Data))
	for _, g := range payload.Data {
		date, ok := parseEventDate(g.Date)
		if !ok {
			continue
		}

		isHome := g.HomeTeam.ID.String() == team.ID ||
			strings.EqualFold(g.HomeTeam.FullName, team.FullName)
		opponentFull := g.HomeTeam.FullName
		venue := "Away"
		if isHome {
			opponentFull = g.VisitorTeam.FullName
			venue = "Home"
		}

		games = append(games, ProviderGame{
			Date:     date,
			Opponent: lastWord(opponentFull),
			Venue:    venue,
			Source:   "balldontlie",
		})
	}

	sort.Slice(games, func(i, j int) bool { return games[i].Date.Before(games[j].Date) })

	log.Printf("[BALLDONTLIE] found %d games for %s", len(games), team.FullName)
	return games
}

// PlayerRecord is one entry of the cross-league player directory.
type PlayerRecord struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	League   string `json:"league"`
	Position string `json:"position"`
}

type bdlPlayer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Team      struct {
		FullName string `json:"full_name"`
	} `json:"team"`
}

// TeamRoster fetches the current players of one franchise. Failures
// degrade to an empty list like every other provider call.
func (p *BalldontlieProvider) TeamRoster(teamName string) []PlayerRecord {
	team, ok := NormalizeTeamName(teamName)
	if !ok {
		return nil
	}

	url := fmt.Sprintf("%s/api/v1/players?team_ids[]=%s&per_page=100", p.baseURL, team.ID)

	body, ok := p.get(url)
	if !ok {
		return nil
	}

	var payload struct {
		Data []bdlPlayer `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data == nil {
		log.Printf("[BALLDONTLIE] invalid roster payload structure")
		return nil
	}

	players := make([]PlayerRecord, 0, len(payload.Data))
	for _, pl := range payload.Data {
		name := strings.TrimSpace(pl.FirstName + " " + pl.LastName)
		if name == "" {
			continue
		}
		teamShort := lastWord(pl.Team.FullName)
		if teamShort == "" {
			teamShort = teamName
		}
		players = append(players, PlayerRecord{
			Name:     name,
			Team:     teamShort,
			League:   "NBA",
			Position: pl.Position,
		})
	}

	return players
}

func (p *BalldontlieProvider) get(url string) ([]byte, bool) {
	resp, err := p.client.Get(url)
	if err != nil {
		log.Printf("[BALLDONTLIE] fetch failed: %v", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[BALLDONTLIE] fetch failed: status %d", resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[BALLDONTLIE] read response: %v", err)
		return nil, false
	}
	return body, true
}

// lastWord extracts a short team name from a full one, e.g.
// "Minnesota Timberwolves" -> "Timberwolves".
func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// ChainedScheduleSource tries the primary provider and falls back to
// the secondary when the primary comes up empty. Either leg may be
// nil; the chain itself never errors.
type ChainedScheduleSource struct {
	Primary   ScheduleSource
	Secondary ScheduleSource
}

// SupportsTeam reports whether any leg of the chain knows the team.
func (c *ChainedScheduleSource) SupportsTeam(team string) bool {
	if c.Primary != nil && c.Primary.SupportsTeam(team) {
		return true
	}
	return c.Secondary != nil && c.Secondary.SupportsTeam(team)
}

// FetchTeamSchedule queries the primary source, then the secondary on
// a total miss.
func (c *ChainedScheduleSource) FetchTeamSchedule(team string) []ProviderGame {
	if c.Primary != nil {
		if games := c.Primary.FetchTeamSchedule(team); len(games) > 0 {
			return games
		}
	}
	if c.Secondary != nil {
		log.Printf("[Schedule] primary source empty for %q, trying fallback", team)
		return c.Secondary.FetchTeamSchedule(team)
	}
	return nil
}

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

// ProviderGame is the canonical schedule record every provider shape
// is normalized into.
type ProviderGame struct {
	Date     time.Time
	Opponent string
	Venue    string
	Source   string
}

// ScheduleSource produces a team's season schedule. Implementations
// never fail loudly: network errors, unmapped teams and malformed
// payloads all degrade to an empty list, logged internally, so callers
// can decide whether to keep stale cached data.
type ScheduleSource interface {
	FetchTeamSchedule(team string) []ProviderGame
	SupportsTeam(team string) bool
}

// NBAScheduleProvider fetches season schedules from the NBA CDN.
type NBAScheduleProvider struct {
	baseURL          string
	client           *http.Client
	seasonStartMonth time.Month
	now              func() time.Time
}

// NewNBAScheduleProvider builds the primary schedule provider. The
// season start month decides which season label is requested and is
// configuration, not a constant; see SeasonLabel.
func NewNBAScheduleProvider(baseURL string, timeout time.Duration, seasonStart time.Month) *NBAScheduleProvider {
	return &NBAScheduleProvider{
		baseURL:          strings.TrimRight(baseURL, "/"),
		client:           &http.Client{Timeout: timeout},
		seasonStartMonth: seasonStart,
		now:              time.Now,
	}
}

// SeasonLabel computes the provider's season identifier ("2025-26")
// for a given instant. The CDN keys seasons by their starting year: on
// or after the start month the season beginning that year is current,
// before it the season that began the previous year is still running.
func SeasonLabel(now time.Time, startMonth time.Month) string {
	startYear := now.Year()
	if now.Month() < startMonth {
		startYear--
	}
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// SupportsTeam reports whether the team name maps to a known franchise.
func (p *NBAScheduleProvider) SupportsTeam(team string) bool {
	_, ok := NormalizeTeamName(team)
	return ok
}

// FetchTeamSchedule returns the team's current-season games sorted by
// date, or an empty list on any failure.
func (p *NBAScheduleProvider) FetchTeamSchedule(teamName string) []ProviderGame {
	team, ok := NormalizeTeamName(teamName)
	if !ok {
		log.Printf("[NBA-API] no mapping for team %q", teamName)
		return nil
	}

	season := SeasonLabel(p.now(), p.seasonStartMonth)
	url := fmt.Sprintf("%s/static/json/liveData/playbyplay/schedule/%s_%s_schedule.json", p.baseURL, season, team.Abbrev)

	log.Printf("[NBA-API] fetching %s schedule, season %s", team.FullName, season)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[NBA-API] build request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("[NBA-API] fetch failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[NBA-API] fetch failed: status %d", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[NBA-API] read response: %v", err)
		return nil
	}

	events, ok := normalizeScheduleEvents(body)
	if !ok {
		log.Printf("[NBA-API] unrecognized schedule payload shape for %s", team.Abbrev)
		return nil
	}

	games := make([]ProviderGame, 0, len(events))
	for _, ev := range events {
		game, ok := ev.toProviderGame(team)
		if !ok {
			continue
		}
		game.Source = "nba"
		games = append(games, game)
	}

	sort.Slice(games, func(i, j int) bool { return games[i].Date.Before(games[j].Date) })

	log.Printf("[NBA-API] found %d games for %s", len(games), team.FullName)
	return games
}

// scheduleEvent is the intermediate form shared by all payload shapes.
type scheduleEvent struct {
	DateRaw string
	Home    eventTeam
	Away    eventTeam
	Arena   string
}

type eventTeam struct {
	Tricode string
	Name    string
	City    string
}

type gamePayload struct {
	GameDateTimeUTC string      `json:"gameDateTimeUTC"`
	GameDate        string      `json:"gameDate"`
	ArenaName       string      `json:"arenaName"`
	HomeTeam        teamPayload `json:"homeTeam"`
	AwayTeam        teamPayload `json:"awayTeam"`
}

type teamPayload struct {
	TeamTricode string `json:"teamTricode"`
	TeamName    string `json:"teamName"`
	TeamCity    string `json:"teamCity"`
}

func (g gamePayload) toEvent() scheduleEvent {
	dateRaw := g.GameDateTimeUTC
	if dateRaw == "" {
		dateRaw = g.GameDate
	}
	return scheduleEvent{
		DateRaw: dateRaw,
		Home:    eventTeam{Tricode: g.HomeTeam.TeamTricode, Name: g.HomeTeam.TeamName, City: g.HomeTeam.TeamCity},
		Away:    eventTeam{Tricode: g.AwayTeam.TeamTricode, Name: g.AwayTeam.TeamName, City: g.AwayTeam.TeamCity},
		Arena:   g.ArenaName,
	}
}

// shapeMatchers is the ordered list of upstream payload shapes the
// adapter recognizes. Each is tried in turn; the first match wins.
// New shapes get a new matcher, the adapter contract stays put.
var shapeMatchers = []func([]byte) ([]scheduleEvent, bool){
	matchScheduleListShape,
	matchLeagueScheduleShape,
	matchBareArrayShape,
}

func normalizeScheduleEvents(body []byte) ([]scheduleEvent, bool) {
	for _, match := range shapeMatchers {
		if events, ok := match(body); ok {
			return events, true
		}
	}
	return nil, false
}

// {"schedule": [ ...games... ]}
func matchScheduleListShape(body []byte) ([]scheduleEvent, bool) {
	var payload struct {
		Schedule []gamePayload `json:"schedule"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Schedule == nil {
		return nil, false
	}
	events := make([]scheduleEvent, 0, len(payload.Schedule))
	for _, g := range payload.Schedule {
		events = append(events, g.toEvent())
	}
	return events, true
}

// {"leagueSchedule": {"gameDates": [{"games": [...]}, ...]}}
func matchLeagueScheduleShape(body []byte) ([]scheduleEvent, bool) {
	var payload struct {
		LeagueSchedule *struct {
			GameDates []struct {
				Games []gamePayload `json:"games"`
			} `json:"gameDates"`
		} `json:"leagueSchedule"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.LeagueSchedule == nil {
		return nil, false
	}
	var events []scheduleEvent
	for _, gd := range payload.LeagueSchedule.GameDates {
		for _, g := range gd.Games {
			events = append(events, g.toEvent())
		}
	}
	return events, true
}

// [ ...games... ]
func matchBareArrayShape(body []byte) ([]scheduleEvent, bool) {
	var games []gamePayload
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, false
	}
	events := make([]scheduleEvent, 0, len(games))
	for _, g := range games {
		events = append(events, g.toEvent())
	}
	return events, true
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
}

func parseEventDate(raw string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toProviderGame decides which side of the event is the queried team
// and extracts the opponent and venue. Provider naming is inconsistent
// (tricodes missing, plural/singular name drift), so after an exact
// tricode match it falls back to fuzzy name containment.
func (ev scheduleEvent) toProviderGame(team TeamMapping) (ProviderGame, bool) {
	date, ok := parseEventDate(ev.DateRaw)
	if !ok {
		return ProviderGame{}, false
	}

	var opponent eventTeam
	var venue string
	switch {
	case ev.Home.matches(team):
		opponent = ev.Away
		venue = ev.Arena
		if venue == "" {
			venue = "Home"
		}
	case ev.Away.matches(team):
		opponent = ev.Home
		venue = "Away"
	default:
		return ProviderGame{}, false
	}

	name := opponent.shortName()
	if name == "" {
		name = "TBD"
	}

	return ProviderGame{Date: date, Opponent: name, Venue: venue}, true
}

func (t eventTeam) matches(m TeamMapping) bool {
	if strings.EqualFold(t.Tricode, m.Abbrev) {
		return true
	}
	if t.Name == "" {
		return false
	}
	full := strings.ToLower(strings.TrimSpace(t.City + " " + t.Name))
	want := strings.ToLower(m.FullName)
	return strings.Contains(full, want) || strings.Contains(want, full)
}

func (t eventTeam) shortName() string {
	if t.Name != "" {
		return t.Name
	}
	if m, ok := NormalizeTeamName(t.Tricode); ok {
		// reverse-map the tricode to the stored short name
		for key, mapping := range teamMappings {
			if mapping.Abbrev == m.Abbrev {
				return key
			}
		}
	}
	return t.Tricode
}

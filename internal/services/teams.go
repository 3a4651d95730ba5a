package services

import "strings"

// TeamMapping resolves a team display name to provider identifiers.
type TeamMapping struct {
	ID       string
	Abbrev   string
	FullName string
}

// teamMappings covers all 30 NBA franchises. Keys are the short names
// athletes are stored with; NormalizeTeamName also accepts full names
// and abbreviations.
var teamMappings = map[string]TeamMapping{
	// Atlantic
	"Celtics": {ID: "1610612738", Abbrev: "BOS", FullName: "Boston Celtics"},
	"Nets":    {ID: "1610612751", Abbrev: "BKN", FullName: "Brooklyn Nets"},
	"Knicks":  {ID: "1610612752", Abbrev: "NYK", FullName: "New York Knicks"},
	"76ers":   {ID: "1610612755", Abbrev: "PHI", FullName: "Philadelphia 76ers"},
	"Raptors": {ID: "1610612761", Abbrev: "TOR", FullName: "Toronto Raptors"},

	// Central
	"Bulls":     {ID: "1610612741", Abbrev: "CHI", FullName: "Chicago Bulls"},
	"Cavaliers": {ID: "1610612739", Abbrev: "CLE", FullName: "Cleveland Cavaliers"},
	"Pistons":   {ID: "1610612765", Abbrev: "DET", FullName: "Detroit Pistons"},
	"Pacers":    {ID: "1610612754", Abbrev: "IND", FullName: "Indiana Pacers"},
	"Bucks":     {ID: "1610612749", Abbrev: "MIL", FullName: "Milwaukee Bucks"},

	// Southeast
	"Hawks":   {ID: "1610612737", Abbrev: "ATL", FullName: "Atlanta Hawks"},
	"Hornets": {ID: "1610612766", Abbrev: "CHA", FullName: "Charlotte Hornets"},
	"Heat":    {ID: "1610612748", Abbrev: "MIA", FullName: "Miami Heat"},
	"Magic":   {ID: "1610612753", Abbrev: "ORL", FullName: "Orlando Magic"},
	"Wizards": {ID: "1610612764", Abbrev: "WAS", FullName: "Washington Wizards"},

	// Northwest
	"Nuggets":       {ID: "1610612743", Abbrev: "DEN", FullName: "Denver Nuggets"},
	"Timberwolves":  {ID: "1610612750", Abbrev: "MIN", FullName: "Minnesota Timberwolves"},
	"Thunder":       {ID: "1610612760", Abbrev: "OKC", FullName: "Oklahoma City Thunder"},
	"Trail Blazers": {ID: "1610612757", Abbrev: "POR", FullName: "Portland Trail Blazers"},
	"Jazz":          {ID: "1610612762", Abbrev: "UTA", FullName: "Utah Jazz"},

	// Pacific
	"Warriors": {ID: "1610612744", Abbrev: "GSW", FullName: "Golden State Warriors"},
	"Clippers": {ID: "1610612746", Abbrev: "LAC", FullName: "Los Angeles Clippers"},
	"Lakers":   {ID: "1610612747", Abbrev: "LAL", FullName: "Los Angeles Lakers"},
	"Suns":     {ID: "1610612756", Abbrev: "PHX", FullName: "Phoenix Suns"},
	"Kings":    {ID: "1610612758", Abbrev: "SAC", FullName: "Sacramento Kings"},

	// Southwest
	"Mavericks": {ID: "1610612742", Abbrev: "DAL", FullName: "Dallas Mavericks"},
	"Rockets":   {ID: "1610612745", Abbrev: "HOU", FullName: "Houston Rockets"},
	"Grizzlies": {ID: "1610612763", Abbrev: "MEM", FullName: "Memphis Grizzlies"},
	"Pelicans":  {ID: "1610612740", Abbrev: "NOP", FullName: "New Orleans Pelicans"},
	"Spurs":     {ID: "1610612759", Abbrev: "SAS", FullName: "San Antonio Spurs"},
}

// NormalizeTeamName resolves a team name variation (short name, full
// name or abbreviation, any case) to its mapping. The second return is
// false when the name matches no franchise.
func NormalizeTeamName(name string) (TeamMapping, bool) {
	if name == "" {
		return TeamMapping{}, false
	}

	if m, ok := teamMappings[name]; ok {
		return m, true
	}

	lower := strings.ToLower(name)
	for key, m := range teamMappings {
		if strings.ToLower(key) == lower ||
			strings.ToLower(m.FullName) == lower ||
			strings.ToLower(m.Abbrev) == lower {
			return m, true
		}
	}

	return TeamMapping{}, false
}

// AllTeams returns the short name of every mapped franchise.
func AllTeams() []string {
	teams := make([]string, 0, len(teamMappings))
	for key := range teamMappings {
		teams = append(teams, key)
	}
	return teams
}

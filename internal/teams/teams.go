// Package teams holds the league's franchise table and the lookups used to
// reconcile team identifiers coming from different sources.
package teams

import "strings"

// Team describes an NBA franchise.
type Team struct {
	Abbreviation string
	FullName     string
	SpotracSlug  string
}

var league = []Team{
	{"ATL", "Atlanta Hawks", "atlanta-hawks"},
	{"BOS", "Boston Celtics", "boston-celtics"},
	{"BKN", "Brooklyn Nets", "brooklyn-nets"},
	{"CHA", "Charlotte Hornets", "charlotte-hornets"},
	{"CHI", "Chicago Bulls", "chicago-bulls"},
	{"CLE", "Cleveland Cavaliers", "cleveland-cavaliers"},
	{"DAL", "Dallas Mavericks", "dallas-mavericks"},
	{"DEN", "Denver Nuggets", "denver-nuggets"},
	{"DET", "Detroit Pistons", "detroit-pistons"},
	{"GSW", "Golden State Warriors", "golden-state-warriors"},
	{"HOU", "Houston Rockets", "houston-rockets"},
	{"IND", "Indiana Pacers", "indiana-pacers"},
	{"LAC", "Los Angeles Clippers", "la-clippers"},
	{"LAL", "Los Angeles Lakers", "los-angeles-lakers"},
	{"MEM", "Memphis Grizzlies", "memphis-grizzlies"},
	{"MIA", "Miami Heat", "miami-heat"},
	{"MIL", "Milwaukee Bucks", "milwaukee-bucks"},
	{"MIN", "Minnesota Timberwolves", "minnesota-timberwolves"},
	{"NOP", "New Orleans Pelicans", "new-orleans-pelicans"},
	{"NYK", "New York Knicks", "new-york-knicks"},
	{"OKC", "Oklahoma City Thunder", "oklahoma-city-thunder"},
	{"ORL", "Orlando Magic", "orlando-magic"},
	{"PHI", "Philadelphia 76ers", "philadelphia-76ers"},
	{"PHX", "Phoenix Suns", "phoenix-suns"},
	{"POR", "Portland Trail Blazers", "portland-trail-blazers"},
	{"SAC", "Sacramento Kings", "sacramento-kings"},
	{"SAS", "San Antonio Spurs", "san-antonio-spurs"},
	{"TOR", "Toronto Raptors", "toronto-raptors"},
	{"UTA", "Utah Jazz", "utah-jazz"},
	{"WAS", "Washington Wizards", "washington-wizards"},
}

// fullNameAliases maps alternate full names to the canonical one.
var fullNameAliases = map[string]string{
	"la clippers": "Los Angeles Clippers",
	"la lakers":   "Los Angeles Lakers",
}

// abbreviationAliases handles the shortened codes some providers emit.
var abbreviationAliases = map[string]string{
	"GS":   "GSW",
	"SA":   "SAS",
	"NO":   "NOP",
	"NY":   "NYK",
	"UTAH": "UTA",
	"WSH":  "WAS",
	"BRK":  "BKN",
	"PHO":  "PHX",
	"CHO":  "CHA",
}

var (
	byAbbreviation = make(map[string]Team, len(league))
	byFullName     = make(map[string]Team, len(league))
)

func init() {
	for _, t := range league {
		byAbbreviation[t.Abbreviation] = t
		byFullName[strings.ToLower(t.FullName)] = t
	}
}

// All returns the 30 franchises ordered by full name.
func All() []Team {
	out := make([]Team, len(league))
	copy(out, league)
	return out
}

// AbbreviationForName maps a franchise full name (as shown on salary sites)
// to its abbreviation. The second result is false for unknown names.
func AbbreviationForName(fullName string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(fullName))
	if canonical, ok := fullNameAliases[key]; ok {
		key = strings.ToLower(canonical)
	}
	t, ok := byFullName[key]
	if !ok {
		return "", false
	}
	return t.Abbreviation, true
}

// NormalizeAbbreviation upper-cases a team code and resolves provider aliases.
func NormalizeAbbreviation(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if canonical, ok := abbreviationAliases[abbr]; ok {
		return canonical
	}
	return abbr
}

// IsLeagueTeam reports whether abbr is one of the 30 franchises.
func IsLeagueTeam(abbr string) bool {
	_, ok := byAbbreviation[NormalizeAbbreviation(abbr)]
	return ok
}

// ByAbbreviation looks up a franchise by (possibly aliased) abbreviation.
func ByAbbreviation(abbr string) (Team, bool) {
	t, ok := byAbbreviation[NormalizeAbbreviation(abbr)]
	return t, ok
}

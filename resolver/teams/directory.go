package teams

import (
	"strings"

	"clipfinder/internal/models"
)

type team struct {
	id       int
	abbr     string
	fullName string
	nickname string
	city     string
}

// The league's 30 franchises with their stats-service identifiers.
var nbaTeams = []team{
	{1610612737, "ATL", "Atlanta Hawks", "Hawks", "Atlanta"},
	{1610612738, "BOS", "Boston Celtics", "Celtics", "Boston"},
	{1610612739, "CLE", "Cleveland Cavaliers", "Cavaliers", "Cleveland"},
	{1610612740, "NOP", "New Orleans Pelicans", "Pelicans", "New Orleans"},
	{1610612741, "CHI", "Chicago Bulls", "Bulls", "Chicago"},
	{1610612742, "DAL", "Dallas Mavericks", "Mavericks", "Dallas"},
	{1610612743, "DEN", "Denver Nuggets", "Nuggets", "Denver"},
	{1610612744, "GSW", "Golden State Warriors", "Warriors", "Golden State"},
	{1610612745, "HOU", "Houston Rockets", "Rockets", "Houston"},
	{1610612746, "LAC", "Los Angeles Clippers", "Clippers", "Los Angeles"},
	{1610612747, "LAL", "Los Angeles Lakers", "Lakers", "Los Angeles"},
	{1610612748, "MIA", "Miami Heat", "Heat", "Miami"},
	{1610612749, "MIL", "Milwaukee Bucks", "Bucks", "Milwaukee"},
	{1610612750, "MIN", "Minnesota Timberwolves", "Timberwolves", "Minnesota"},
	{1610612751, "BKN", "Brooklyn Nets", "Nets", "Brooklyn"},
	{1610612752, "NYK", "New York Knicks", "Knicks", "New York"},
	{1610612753, "ORL", "Orlando Magic", "Magic", "Orlando"},
	{1610612754, "IND", "Indiana Pacers", "Pacers", "Indiana"},
	{1610612755, "PHI", "Philadelphia 76ers", "76ers", "Philadelphia"},
	{1610612756, "PHX", "Phoenix Suns", "Suns", "Phoenix"},
	{1610612757, "POR", "Portland Trail Blazers", "Trail Blazers", "Portland"},
	{1610612758, "SAC", "Sacramento Kings", "Kings", "Sacramento"},
	{1610612759, "SAS", "San Antonio Spurs", "Spurs", "San Antonio"},
	{1610612760, "OKC", "Oklahoma City Thunder", "Thunder", "Oklahoma City"},
	{1610612761, "TOR", "Toronto Raptors", "Raptors", "Toronto"},
	{1610612762, "UTA", "Utah Jazz", "Jazz", "Utah"},
	{1610612763, "MEM", "Memphis Grizzlies", "Grizzlies", "Memphis"},
	{1610612764, "WAS", "Washington Wizards", "Wizards", "Washington"},
	{1610612765, "DET", "Detroit Pistons", "Pistons", "Detroit"},
	{1610612766, "CHA", "Charlotte Hornets", "Hornets", "Charlotte"},
}

// Directory resolves free-text team names to their stats-service identity.
// It is built once and read-only afterwards, so concurrent lookups need no
// locking.
type Directory struct {
	byAlias map[string]models.TeamRef
}

// NewDirectory builds the alias table: full name, nickname, and
// "city nickname" for every team.
func NewDirectory() *Directory {
	byAlias := make(map[string]models.TeamRef, len(nbaTeams)*3)

	for _, t := range nbaTeams {
		ref := models.TeamRef{ID: t.id, Abbr: t.abbr}
		byAlias[normalize(t.fullName)] = ref
		byAlias[normalize(t.nickname)] = ref
		byAlias[normalize(t.city+" "+t.nickname)] = ref
	}

	return &Directory{byAlias: byAlias}
}

// Resolve matches a team name against the alias table. Matching is exact
// after normalization; there is no fuzzy or partial matching. A miss is a
// hard failure for the caller, never "any team".
func (d *Directory) Resolve(name string) (models.TeamRef, bool) {
	if name == "" {
		return models.TeamRef{}, false
	}
	ref, ok := d.byAlias[normalize(name)]
	return ref, ok
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "the ")
	return strings.TrimSpace(n)
}

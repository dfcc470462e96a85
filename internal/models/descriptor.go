package models

// Descriptor is the structured interpretation of a free-text highlight query.
// All fields come back from the interpreter as-is and may be empty.
type Descriptor struct {
	Player     string `json:"player"`
	PlayerTeam string `json:"player_team"`
	Opponent   string `json:"opponent"`
	EventType  string `json:"event_type"`
	GameDate   string `json:"game_date"` // YYYY-MM-DD
}

// Complete reports whether the descriptor carries enough information to
// search for a specific game. Event type and date are optional; player and
// both teams are not.
func (d Descriptor) Complete() bool {
	return d.Player != "" && d.PlayerTeam != "" && d.Opponent != ""
}

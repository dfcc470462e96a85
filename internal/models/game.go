package models

// TeamRef identifies a team in the stats service.
type TeamRef struct {
	ID   int    `json:"id"`
	Abbr string `json:"abbr"` // e.g. "LAL"
}

// CandidateGame is a game that plausibly matches a query's teams and date.
type CandidateGame struct {
	GameID   string `json:"game_id"`
	GameDate string `json:"game_date"` // YYYY-MM-DD
	Matchup  string `json:"matchup"`   // e.g. "BOS vs. MIA"
}

// EventRecord is one row of a game's chronological play-by-play log.
type EventRecord struct {
	EventNum           int    `json:"event_num"`
	Period             int    `json:"period"`
	TimeRemaining      string `json:"time_remaining"` // clock text, e.g. "0:03"
	HomeDescription    string `json:"home_description"`
	VisitorDescription string `json:"visitor_description"`
	MadeShot           bool   `json:"made_shot"`
	PlayerName         string `json:"player_name"`
}

package models

// Video sources reported in resolved clips.
const (
	SourceNBA     = "nba"     // primary per-event video asset lookup
	SourceYouTube = "youtube" // generic search fallback
)

// VideoResult is one resolved video from either the primary asset lookup or
// the fallback search.
type VideoResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	Source       string `json:"source"`
}

// Clip is the final user-facing output unit of one resolution.
type Clip struct {
	Title         string `json:"title"`
	GameDate      string `json:"game_date,omitempty"`
	Matchup       string `json:"matchup,omitempty"`
	Period        int    `json:"period,omitempty"`
	TimeRemaining string `json:"time_remaining,omitempty"`
	VideoURL      string `json:"video_url"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	Source        string `json:"source"`
}

// ResolutionResult is what a query resolves to. It is well-formed on every
// path: failures set Success=false and Error, never panic upward. The clips
// slice holds at most one entry today; the shape leaves room for more.
type ResolutionResult struct {
	Success bool   `json:"success"`
	Clips   []Clip `json:"clips"`
	Error   string `json:"error,omitempty"`
}

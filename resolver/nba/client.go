package nba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clipfinder/internal/models"
	"clipfinder/shared/config"
)

// Retry policy for the video asset lookup. Only that call retries; the stats
// endpoints are attempt-once.
const (
	videoAssetRetries = 2
	backoffInitial    = 750 * time.Millisecond
)

// Client talks to the stats.nba.com JSON endpoints. The service rejects
// requests without browser-like headers, and its tabular payloads arrive as
// parallel header/row arrays rather than keyed objects.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg *config.NBAConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// resultTable is one tabular result set: column names plus untyped rows.
type resultTable struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (t *resultTable) columnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

func stringAt(row []any, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return ""
}

func intAt(row []any, idx int) int {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// FindGames returns every logged game for a team, in the service's native
// order. Callers filter by date and opponent.
func (c *Client) FindGames(ctx context.Context, teamID int) ([]models.CandidateGame, error) {
	params := url.Values{
		"TeamID":       {strconv.Itoa(teamID)},
		"PlayerOrTeam": {"T"},
		"LeagueID":     {""},
	}

	var payload struct {
		ResultSets []resultTable `json:"resultSets"`
	}
	if err := c.getJSON(ctx, "/stats/leaguegamefinder", params, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch game log: %w", err)
	}
	if len(payload.ResultSets) == 0 {
		return nil, fmt.Errorf("game log response contained no result sets")
	}

	table := payload.ResultSets[0]
	gameIDIdx := table.columnIndex("GAME_ID")
	dateIdx := table.columnIndex("GAME_DATE")
	matchupIdx := table.columnIndex("MATCHUP")
	if gameIDIdx < 0 || dateIdx < 0 || matchupIdx < 0 {
		return nil, fmt.Errorf("game log response missing expected columns: %v", table.Headers)
	}

	games := make([]models.CandidateGame, 0, len(table.RowSet))
	for _, row := range table.RowSet {
		games = append(games, models.CandidateGame{
			GameID:   stringAt(row, gameIDIdx),
			GameDate: stringAt(row, dateIdx),
			Matchup:  stringAt(row, matchupIdx),
		})
	}
	return games, nil
}

// PlayByPlay fetches a game's full chronological event log.
func (c *Client) PlayByPlay(ctx context.Context, gameID string) ([]models.EventRecord, error) {
	params := url.Values{
		"GameID":      {gameID},
		"StartPeriod": {"0"},
		"EndPeriod":   {"10"},
	}

	var payload struct {
		ResultSets []resultTable `json:"resultSets"`
	}
	if err := c.getJSON(ctx, "/stats/playbyplayv2", params, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch play-by-play for game %s: %w", gameID, err)
	}
	if len(payload.ResultSets) == 0 {
		return nil, fmt.Errorf("play-by-play response contained no result sets")
	}

	table := payload.ResultSets[0]
	eventNumIdx := table.columnIndex("EVENTNUM")
	msgTypeIdx := table.columnIndex("EVENTMSGTYPE")
	periodIdx := table.columnIndex("PERIOD")
	clockIdx := table.columnIndex("PCTIMESTRING")
	homeIdx := table.columnIndex("HOMEDESCRIPTION")
	visitorIdx := table.columnIndex("VISITORDESCRIPTION")
	playerIdx := table.columnIndex("PLAYER1_NAME")
	if eventNumIdx < 0 || msgTypeIdx < 0 || periodIdx < 0 {
		return nil, fmt.Errorf("play-by-play response missing expected columns: %v", table.Headers)
	}

	events := make([]models.EventRecord, 0, len(table.RowSet))
	for _, row := range table.RowSet {
		events = append(events, models.EventRecord{
			EventNum:           intAt(row, eventNumIdx),
			Period:             intAt(row, periodIdx),
			TimeRemaining:      stringAt(row, clockIdx),
			HomeDescription:    stringAt(row, homeIdx),
			VisitorDescription: stringAt(row, visitorIdx),
			MadeShot:           intAt(row, msgTypeIdx) == 1, // EVENTMSGTYPE 1 = made field goal
			PlayerName:         stringAt(row, playerIdx),
		})
	}
	return events, nil
}

// VideoAsset looks up the clip for one event. Transient failures (transport
// errors, 5xx) are retried with exponential backoff; a well-formed response
// without a video URL is terminal.
func (c *Client) VideoAsset(ctx context.Context, gameID string, eventNum int) (models.VideoResult, error) {
	params := url.Values{
		"GameID":      {gameID},
		"GameEventID": {strconv.Itoa(eventNum)},
	}

	var payload struct {
		ResultSets struct {
			Meta struct {
				VideoUrls []struct {
					LargeURL   string `json:"lurl"`
					LargeThumb string `json:"lth"`
				} `json:"videoUrls"`
			} `json:"Meta"`
		} `json:"resultSets"`
	}

	var lastErr error
	backoff := backoffInitial
	for attempt := 0; attempt <= videoAssetRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return models.VideoResult{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := c.getJSON(ctx, "/stats/videoeventsasset", params, &payload)
		if err == nil {
			urls := payload.ResultSets.Meta.VideoUrls
			if len(urls) == 0 || urls[0].LargeURL == "" {
				return models.VideoResult{}, fmt.Errorf("no video asset for game %s event %d", gameID, eventNum)
			}
			return models.VideoResult{
				URL:          urls[0].LargeURL,
				ThumbnailURL: urls[0].LargeThumb,
				Source:       models.SourceNBA,
			}, nil
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
	}

	return models.VideoResult{}, fmt.Errorf("video asset lookup failed for game %s event %d: %w", gameID, eventNum, lastErr)
}

// statusError marks responses whose HTTP status precludes decoding.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("stats API returned status %d", e.code)
}

// transientError marks transport-level failures (timeouts, resets) worth
// retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return "request failed: " + e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	var te *transientError
	return errors.As(err, &te)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// stats.nba.com drops requests that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://stats.nba.com/")

	resp, err := c.client.Do(req)
	if err != nil {
		return &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

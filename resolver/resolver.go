// Package resolver turns free-text highlight queries into playable clips.
// It is a best-effort pipeline over unreliable upstreams: every failure
// branch degrades toward the generic search fallback instead of erroring,
// and only total failure produces an unsuccessful result.
package resolver

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"clipfinder/internal/models"
	"clipfinder/resolver/match"
	"clipfinder/resolver/teams"
	"clipfinder/shared/config"
)

// Interpreter produces a structured descriptor from a raw query.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (models.Descriptor, error)
}

// StatsClient is the game-log, event-log and video-asset upstream.
type StatsClient interface {
	FindGames(ctx context.Context, teamID int) ([]models.CandidateGame, error)
	PlayByPlay(ctx context.Context, gameID string) ([]models.EventRecord, error)
	VideoAsset(ctx context.Context, gameID string, eventNum int) (models.VideoResult, error)
}

// Searcher is the generic video-search fallback.
type Searcher interface {
	Search(ctx context.Context, query string) (models.VideoResult, error)
}

// Cache stores final resolution results keyed by normalized query text.
type Cache interface {
	Get(query string) (models.ResolutionResult, bool)
	Put(query string, result models.ResolutionResult) error
}

// Resolver coordinates the full pipeline. Safe for concurrent use across
// queries; the directory is read-only and every other collaborator manages
// its own synchronization.
type Resolver struct {
	directory   *teams.Directory
	interpreter Interpreter
	stats       StatsClient
	search      Searcher
	cache       Cache

	workers   int
	matchWait time.Duration
}

func New(directory *teams.Directory, interpreter Interpreter, stats StatsClient, search Searcher, cache Cache, cfg *config.ResolverConfig) *Resolver {
	return &Resolver{
		directory:   directory,
		interpreter: interpreter,
		stats:       stats,
		search:      search,
		cache:       cache,
		workers:     cfg.Workers,
		matchWait:   time.Duration(cfg.MatchWaitSeconds) * time.Second,
	}
}

// Resolve runs the pipeline for one query. It always returns a well-formed
// result; unexpected faults are caught at this boundary and reported in it.
func (r *Resolver) Resolve(ctx context.Context, query string) (result models.ResolutionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered from panic resolving %q: %v", query, rec)
			result = models.ResolutionResult{
				Success: false,
				Clips:   []models.Clip{},
				Error:   fmt.Sprintf("internal error: %v", rec),
			}
		}
	}()

	if cached, ok := r.cache.Get(query); ok {
		log.Printf("Cache hit for %q", query)
		return cached
	}

	desc, err := r.interpret(ctx, query)
	if err != nil {
		log.Printf("Query interpretation failed for %q: %v", query, err)
		return r.fallback(ctx, query)
	}
	if !desc.Complete() {
		log.Printf("Descriptor incomplete for %q, going straight to fallback", query)
		return r.fallback(ctx, query)
	}
	if desc.EventType == "" {
		desc.EventType = "highlight"
	}

	games := r.findCandidates(ctx, desc)
	if len(games) == 0 {
		log.Printf("No candidate games for %q (%s vs %s on %s)", query, desc.PlayerTeam, desc.Opponent, desc.GameDate)
		return r.fallback(ctx, fallbackQuery(desc))
	}
	log.Printf("Found %d candidate game(s) for %q", len(games), query)

	if clip, ok := r.raceCandidates(ctx, desc, games); ok {
		result := models.ResolutionResult{
			Success: true,
			Clips:   []models.Clip{clip},
		}
		// Only primary resolutions are cached. Fallback hits stay uncached so
		// an identical later query gets another shot at the real asset.
		if clip.Source == models.SourceNBA {
			if err := r.cache.Put(query, result); err != nil {
				log.Printf("Warning: Failed to cache result for %q: %v", query, err)
			}
		}
		return result
	}

	return r.fallback(ctx, fallbackQuery(desc))
}

func (r *Resolver) interpret(ctx context.Context, query string) (models.Descriptor, error) {
	if r.interpreter == nil {
		return models.Descriptor{}, fmt.Errorf("interpreter is not configured")
	}
	return r.interpreter.Interpret(ctx, query)
}

// findCandidates resolves both team names and filters the team's game log to
// the exact date and the opponent's abbreviation. Every failure collapses to
// an empty slice; candidate discovery never errors out of the pipeline.
func (r *Resolver) findCandidates(ctx context.Context, desc models.Descriptor) []models.CandidateGame {
	team, ok := r.directory.Resolve(desc.PlayerTeam)
	if !ok {
		log.Printf("Unknown team %q", desc.PlayerTeam)
		return nil
	}
	opponent, ok := r.directory.Resolve(desc.Opponent)
	if !ok {
		log.Printf("Unknown team %q", desc.Opponent)
		return nil
	}

	games, err := r.stats.FindGames(ctx, team.ID)
	if err != nil {
		log.Printf("Warning: Game log fetch failed for %s: %v", team.Abbr, err)
		return nil
	}

	var matches []models.CandidateGame
	for _, g := range games {
		if g.GameDate != desc.GameDate {
			continue
		}
		if !strings.Contains(strings.ToUpper(g.Matchup), opponent.Abbr) {
			continue
		}
		matches = append(matches, g)
	}
	return matches
}

// raceCandidates fans the candidate games out over a bounded worker pool and
// returns the first clip any unit produces. Losing units are not cancelled;
// their results land in a buffered channel and are discarded. The feeder
// stops once a winner is picked, so abandoned work is bounded by pool size.
func (r *Resolver) raceCandidates(ctx context.Context, desc models.Descriptor, games []models.CandidateGame) (models.Clip, bool) {
	workers := r.workers
	if workers > len(games) {
		workers = len(games)
	}

	gameCh := make(chan models.CandidateGame)
	clipCh := make(chan models.Clip, len(games))
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(gameCh)
		for _, g := range games {
			select {
			case gameCh <- g:
			case <-done:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range gameCh {
				if clip, ok := r.resolveCandidate(ctx, desc, g); ok {
					clipCh <- clip // buffered to len(games), never blocks
				}
			}
		}()
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	select {
	case clip := <-clipCh:
		return clip, true
	case <-allDone:
		// A worker may have delivered just before finishing.
		select {
		case clip := <-clipCh:
			return clip, true
		default:
			return models.Clip{}, false
		}
	case <-time.After(r.matchWait):
		log.Printf("Candidate matching exceeded %v, falling through", r.matchWait)
		return models.Clip{}, false
	case <-ctx.Done():
		return models.Clip{}, false
	}
}

// resolveCandidate is one unit of parallel work: event log, event match,
// primary video, then the per-unit search fallback.
func (r *Resolver) resolveCandidate(ctx context.Context, desc models.Descriptor, game models.CandidateGame) (models.Clip, bool) {
	events, err := r.stats.PlayByPlay(ctx, game.GameID)
	if err != nil {
		log.Printf("Warning: Play-by-play fetch failed for game %s: %v", game.GameID, err)
		return models.Clip{}, false
	}

	event, ok := match.Find(events, desc.Player, desc.EventType)
	if !ok {
		return models.Clip{}, false
	}

	video, err := r.stats.VideoAsset(ctx, game.GameID, event.EventNum)
	if err == nil {
		return models.Clip{
			Title:         fmt.Sprintf("%s - %s", desc.Player, desc.EventType),
			GameDate:      game.GameDate,
			Matchup:       game.Matchup,
			Period:        event.Period,
			TimeRemaining: event.TimeRemaining,
			VideoURL:      video.URL,
			ThumbnailURL:  video.ThumbnailURL,
			Source:        video.Source,
		}, true
	}
	log.Printf("Primary video lookup failed for game %s event %d: %v", game.GameID, event.EventNum, err)

	found, err := r.search.Search(ctx, fallbackQuery(desc))
	if err != nil {
		log.Printf("Fallback search failed for game %s: %v", game.GameID, err)
		return models.Clip{}, false
	}
	return models.Clip{
		Title:        found.Title,
		GameDate:     game.GameDate,
		Matchup:      game.Matchup,
		VideoURL:     found.URL,
		ThumbnailURL: found.ThumbnailURL,
		Source:       found.Source,
	}, true
}

// fallback is the terminal degradation path: one bare search over whatever
// query text is available. Its results are never cached.
func (r *Resolver) fallback(ctx context.Context, query string) models.ResolutionResult {
	found, err := r.search.Search(ctx, query)
	if err != nil {
		log.Printf("Fallback search failed for %q: %v", query, err)
		return models.ResolutionResult{
			Success: false,
			Clips:   []models.Clip{},
			Error:   "no video found",
		}
	}

	title := found.Title
	if title == "" {
		title = query
	}
	return models.ResolutionResult{
		Success: true,
		Clips: []models.Clip{{
			Title:        title,
			VideoURL:     found.URL,
			ThumbnailURL: found.ThumbnailURL,
			Source:       found.Source,
		}},
	}
}

// fallbackQuery reconstructs a search string from the descriptor.
func fallbackQuery(desc models.Descriptor) string {
	eventType := desc.EventType
	if eventType == "" {
		eventType = "highlight"
	}
	parts := []string{desc.Player, eventType}
	if desc.Opponent != "" {
		parts = append(parts, "vs", desc.Opponent)
	}
	if desc.GameDate != "" {
		parts = append(parts, desc.GameDate)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
